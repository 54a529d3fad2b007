package deres_protocol

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"deres-cli/program"
)

// NewCreateResearcherProfileInstruction builds the instruction that
// registers a researcher profile.
func NewCreateResearcherProfileInstruction(
	name string,
	metadataCommitment [32]byte,
	bump uint8,
	researcher solana.PublicKey,
	profilePDA solana.PublicKey,
) (solana.Instruction, error) {
	if len(name) == 0 || len(name) > program.MaxNameLen {
		return nil, fmt.Errorf("%w: %d bytes", program.ErrInvalidName, len(name))
	}
	data, err := program.EncodeCreateResearcherProfile(program.CreateResearcherProfileArgs{
		Name:               name,
		MetadataCommitment: metadataCommitment,
		Bump:               bump,
	})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		program.ProgramID,
		[]*solana.AccountMeta{
			solana.Meta(researcher).SIGNER().WRITE(),
			solana.Meta(profilePDA).WRITE(),
			solana.Meta(solana.SystemProgramID),
		},
		data,
	), nil
}

// NewCreateResearchPaperInstruction builds the instruction that records
// a paper as an unpublished draft.
func NewCreateResearchPaperInstruction(
	contentHash []byte,
	accessFee uint64,
	metadataCommitment [32]byte,
	bump uint8,
	publisher solana.PublicKey,
	profilePDA solana.PublicKey,
	paperPDA solana.PublicKey,
) (solana.Instruction, error) {
	if len(contentHash) != 32 {
		return nil, fmt.Errorf("%w: got %d bytes", program.ErrInvalidContentHash, len(contentHash))
	}
	var hash [32]byte
	copy(hash[:], contentHash)
	data, err := program.EncodeCreateResearchPaper(program.CreateResearchPaperArgs{
		ContentHash:        hash,
		AccessFee:          accessFee,
		MetadataCommitment: metadataCommitment,
		Bump:               bump,
	})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		program.ProgramID,
		[]*solana.AccountMeta{
			solana.Meta(publisher).SIGNER().WRITE(),
			solana.Meta(profilePDA),
			solana.Meta(paperPDA).WRITE(),
			solana.Meta(solana.SystemProgramID),
		},
		data,
	), nil
}

// NewPublishPaperInstruction builds the instruction that flips a draft
// to published.
func NewPublishPaperInstruction(
	bump uint8,
	publisher solana.PublicKey,
	paperPDA solana.PublicKey,
) (solana.Instruction, error) {
	data, err := program.EncodePublishPaper(program.PublishPaperArgs{Bump: bump})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		program.ProgramID,
		[]*solana.AccountMeta{
			solana.Meta(publisher).SIGNER(),
			solana.Meta(paperPDA).WRITE(),
		},
		data,
	), nil
}

// NewAddPeerReviewInstruction builds the instruction that records a
// reviewer's scores for a published paper.
func NewAddPeerReviewInstruction(
	qualityOfResearch uint8,
	potentialForRealWorldUseCase uint8,
	practicalityOfResultObtained uint8,
	domainKnowledge uint8,
	metadataCommitment [32]byte,
	bump uint8,
	reviewer solana.PublicKey,
	reviewerProfilePDA solana.PublicKey,
	paperPDA solana.PublicKey,
	reviewPDA solana.PublicKey,
) (solana.Instruction, error) {
	data, err := program.EncodeAddPeerReview(program.AddPeerReviewArgs{
		QualityOfResearch:            qualityOfResearch,
		PotentialForRealWorldUseCase: potentialForRealWorldUseCase,
		PracticalityOfResultObtained: practicalityOfResultObtained,
		DomainKnowledge:              domainKnowledge,
		MetadataCommitment:           metadataCommitment,
		Bump:                         bump,
	})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		program.ProgramID,
		[]*solana.AccountMeta{
			solana.Meta(reviewer).SIGNER().WRITE(),
			solana.Meta(reviewerProfilePDA),
			solana.Meta(paperPDA),
			solana.Meta(reviewPDA).WRITE(),
			solana.Meta(solana.SystemProgramID),
		},
		data,
	), nil
}

// NewMintResearchPaperInstruction builds the instruction through which
// a reader pays the access fee and receives an access token.
func NewMintResearchPaperInstruction(
	mintCollectionBump uint8,
	readerWhitelistBump uint8,
	tokenAccountBump uint8,
	reader solana.PublicKey,
	paperPDA solana.PublicKey,
	feeReceiver solana.PublicKey,
	mintCollectionPDA solana.PublicKey,
	readerWhitelistPDA solana.PublicKey,
	tokenAccountPDA solana.PublicKey,
) (solana.Instruction, error) {
	data, err := program.EncodeMintResearchPaper(program.MintResearchPaperArgs{
		MintCollectionBump:  mintCollectionBump,
		ReaderWhitelistBump: readerWhitelistBump,
		TokenAccountBump:    tokenAccountBump,
	})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		program.ProgramID,
		[]*solana.AccountMeta{
			solana.Meta(reader).SIGNER().WRITE(),
			solana.Meta(paperPDA),
			solana.Meta(feeReceiver).WRITE(),
			solana.Meta(mintCollectionPDA).WRITE(),
			solana.Meta(readerWhitelistPDA).WRITE(),
			solana.Meta(tokenAccountPDA).WRITE(),
			solana.Meta(solana.SystemProgramID),
		},
		data,
	), nil
}

// NewCheckAndAssignReputationInstruction builds the instruction through
// which an authorized checker sets a researcher's reputation.
func NewCheckAndAssignReputationInstruction(
	reputation uint8,
	checker solana.PublicKey,
	profilePDA solana.PublicKey,
) (solana.Instruction, error) {
	data, err := program.EncodeCheckAndAssignReputation(program.CheckAndAssignReputationArgs{
		Reputation: reputation,
	})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		program.ProgramID,
		[]*solana.AccountMeta{
			solana.Meta(checker).SIGNER(),
			solana.Meta(profilePDA).WRITE(),
		},
		data,
	), nil
}
