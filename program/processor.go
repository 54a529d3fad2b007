package program

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Processor validates and applies instructions. Every handler follows
// the same shape: check signers, check derived addresses, check state
// preconditions, then mutate. The first failed check aborts the whole
// instruction.
type Processor struct {
	cfg Config
}

// NewProcessor builds a processor executing under cfg.
func NewProcessor(cfg Config) *Processor {
	return &Processor{cfg: cfg}
}

// Process dispatches on the leading discriminator byte.
func (p *Processor) Process(ctx *txnContext, ins Instruction) error {
	if len(ins.Data) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidInstructionData)
	}
	payload := ins.Data[1:]
	switch ins.Data[0] {
	case InstructionCreateResearcherProfile:
		return p.createResearcherProfile(ctx, ins, payload)
	case InstructionCreateResearchPaper:
		return p.createResearchPaper(ctx, ins, payload)
	case InstructionPublishPaper:
		return p.publishPaper(ctx, ins, payload)
	case InstructionAddPeerReview:
		return p.addPeerReview(ctx, ins, payload)
	case InstructionMintResearchPaper:
		return p.mintResearchPaper(ctx, ins, payload)
	case InstructionCheckAndAssignReputation:
		return p.checkAndAssignReputation(ctx, ins, payload)
	default:
		return fmt.Errorf("%w: unknown discriminator %d", ErrInvalidInstructionData, ins.Data[0])
	}
}

func requireAccounts(ins Instruction, n int) error {
	if len(ins.Accounts) < n {
		return fmt.Errorf("%w: got %d, need %d", ErrNotEnoughAccounts, len(ins.Accounts), n)
	}
	return nil
}

func requireSigner(ctx *txnContext, key solana.PublicKey) error {
	if !ctx.isSigner(key) {
		return fmt.Errorf("%w: %s", ErrMissingSigner, key)
	}
	return nil
}

func requireAddress(supplied, derived solana.PublicKey, suppliedBump, derivedBump uint8) error {
	if !supplied.Equals(derived) || suppliedBump != derivedBump {
		return fmt.Errorf("%w: supplied %s, derived %s", ErrAddressMismatch, supplied, derived)
	}
	return nil
}

func requireDerived(supplied, derived solana.PublicKey) error {
	if !supplied.Equals(derived) {
		return fmt.Errorf("%w: supplied %s, derived %s", ErrAddressMismatch, supplied, derived)
	}
	return nil
}

func storeAccount(acc *Account, m interface{ MarshalBinary() ([]byte, error) }) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize account: %w", err)
	}
	copy(acc.Data, data)
	return nil
}

// createResearcherProfile handles instruction 0.
//
// Accounts: 0 researcher (signer, writable), 1 profile (writable).
func (p *Processor) createResearcherProfile(ctx *txnContext, ins Instruction, payload []byte) error {
	var args CreateResearcherProfileArgs
	if err := decodeInstructionArgs(payload, &args); err != nil {
		return err
	}
	if err := requireAccounts(ins, 2); err != nil {
		return err
	}
	researcher := ins.Accounts[0].Key
	profileKey := ins.Accounts[1].Key

	if err := requireSigner(ctx, researcher); err != nil {
		return err
	}
	if len(args.Name) == 0 || len(args.Name) > MaxNameLen {
		return fmt.Errorf("%w: %d bytes", ErrInvalidName, len(args.Name))
	}

	derived, bump, err := DeriveResearcherProfilePDA(researcher)
	if err != nil {
		return err
	}
	if err := requireAddress(profileKey, derived, args.Bump, bump); err != nil {
		return err
	}

	acc, err := ctx.createAccount(profileKey, researcher, ResearcherProfileSize)
	if err != nil {
		return err
	}
	profile := &ResearcherProfile{
		Owner:              researcher,
		Reputation:         0,
		MetadataCommitment: args.MetadataCommitment,
		Bump:               bump,
	}
	copy(profile.Name[:], args.Name)
	return storeAccount(acc, profile)
}

// createResearchPaper handles instruction 1. The publisher must already
// hold a profile; the paper address binds the content hash so the same
// content cannot be registered twice by one publisher.
//
// Accounts: 0 publisher (signer, writable), 1 profile, 2 paper (writable).
func (p *Processor) createResearchPaper(ctx *txnContext, ins Instruction, payload []byte) error {
	var args CreateResearchPaperArgs
	if err := decodeInstructionArgs(payload, &args); err != nil {
		return err
	}
	if err := requireAccounts(ins, 3); err != nil {
		return err
	}
	publisher := ins.Accounts[0].Key
	profileKey := ins.Accounts[1].Key
	paperKey := ins.Accounts[2].Key

	if err := requireSigner(ctx, publisher); err != nil {
		return err
	}

	derivedProfile, _, err := DeriveResearcherProfilePDA(publisher)
	if err != nil {
		return err
	}
	if err := requireDerived(profileKey, derivedProfile); err != nil {
		return err
	}
	profileAcc := ctx.account(profileKey)
	if profileAcc == nil || len(profileAcc.Data) == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, publisher)
	}
	if _, err := ParseResearcherProfile(profileAcc.Data); err != nil {
		return err
	}

	derivedPaper, paperBump, err := DeriveResearchPaperPDA(args.ContentHash, publisher)
	if err != nil {
		return err
	}
	if err := requireAddress(paperKey, derivedPaper, args.Bump, paperBump); err != nil {
		return err
	}

	acc, err := ctx.createAccount(paperKey, publisher, ResearchPaperSize)
	if err != nil {
		if errors.Is(err, ErrAccountAlreadyInitialized) {
			return fmt.Errorf("%w: %s", ErrDuplicatePaper, paperKey)
		}
		return err
	}
	return storeAccount(acc, &ResearchPaper{
		Publisher:          publisher,
		ContentHash:        args.ContentHash,
		AccessFee:          args.AccessFee,
		MetadataCommitment: args.MetadataCommitment,
		Published:          false,
		Bump:               paperBump,
	})
}

// publishPaper handles instruction 2. Re-deriving the paper address from
// the stored content hash and the signing publisher proves the signer is
// the paper's publisher.
//
// Accounts: 0 publisher (signer), 1 paper (writable).
func (p *Processor) publishPaper(ctx *txnContext, ins Instruction, payload []byte) error {
	var args PublishPaperArgs
	if err := decodeInstructionArgs(payload, &args); err != nil {
		return err
	}
	if err := requireAccounts(ins, 2); err != nil {
		return err
	}
	publisher := ins.Accounts[0].Key
	paperKey := ins.Accounts[1].Key

	if err := requireSigner(ctx, publisher); err != nil {
		return err
	}
	paperAcc := ctx.account(paperKey)
	if paperAcc == nil || len(paperAcc.Data) == 0 {
		return fmt.Errorf("%w: %s", ErrPaperNotFound, paperKey)
	}
	paper, err := ParseResearchPaper(paperAcc.Data)
	if err != nil {
		return err
	}
	if !paper.Publisher.Equals(publisher) {
		return fmt.Errorf("%w: %s is not the publisher", ErrUnauthorized, publisher)
	}

	derived, bump, err := DeriveResearchPaperPDA(paper.ContentHash, publisher)
	if err != nil {
		return err
	}
	if err := requireAddress(paperKey, derived, args.Bump, bump); err != nil {
		return err
	}
	if paper.Published {
		return fmt.Errorf("%w: %s", ErrAlreadyPublished, paperKey)
	}

	paper.Published = true
	return storeAccount(paperAcc, paper)
}

// addPeerReview handles instruction 3. Reviews are accepted for drafts
// as well as published papers, so peer review can precede publication;
// the reviewer must not be the publisher and must clear the configured
// reputation floor.
//
// Accounts: 0 reviewer (signer, writable), 1 reviewer profile, 2 paper,
// 3 review (writable).
func (p *Processor) addPeerReview(ctx *txnContext, ins Instruction, payload []byte) error {
	var args AddPeerReviewArgs
	if err := decodeInstructionArgs(payload, &args); err != nil {
		return err
	}
	if err := requireAccounts(ins, 4); err != nil {
		return err
	}
	reviewer := ins.Accounts[0].Key
	profileKey := ins.Accounts[1].Key
	paperKey := ins.Accounts[2].Key
	reviewKey := ins.Accounts[3].Key

	if err := requireSigner(ctx, reviewer); err != nil {
		return err
	}
	for _, score := range []uint8{
		args.QualityOfResearch,
		args.PotentialForRealWorldUseCase,
		args.PracticalityOfResultObtained,
		args.DomainKnowledge,
	} {
		if score > MaxScore {
			return fmt.Errorf("%w: %d", ErrScoreOutOfRange, score)
		}
	}

	paperAcc := ctx.account(paperKey)
	if paperAcc == nil || len(paperAcc.Data) == 0 {
		return fmt.Errorf("%w: %s", ErrPaperNotFound, paperKey)
	}
	paper, err := ParseResearchPaper(paperAcc.Data)
	if err != nil {
		return err
	}
	if paper.Publisher.Equals(reviewer) {
		return ErrSelfReviewForbidden
	}

	derivedProfile, _, err := DeriveResearcherProfilePDA(reviewer)
	if err != nil {
		return err
	}
	if err := requireDerived(profileKey, derivedProfile); err != nil {
		return err
	}
	profileAcc := ctx.account(profileKey)
	if profileAcc == nil || len(profileAcc.Data) == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, reviewer)
	}
	profile, err := ParseResearcherProfile(profileAcc.Data)
	if err != nil {
		return err
	}
	if profile.Reputation < p.cfg.MinReviewReputation {
		return fmt.Errorf("%w: %d < %d", ErrInsufficientReputation, profile.Reputation, p.cfg.MinReviewReputation)
	}

	derivedReview, reviewBump, err := DerivePeerReviewPDA(paperKey, reviewer)
	if err != nil {
		return err
	}
	if err := requireAddress(reviewKey, derivedReview, args.Bump, reviewBump); err != nil {
		return err
	}

	acc, err := ctx.createAccount(reviewKey, reviewer, PeerReviewSize)
	if err != nil {
		if errors.Is(err, ErrAccountAlreadyInitialized) {
			return fmt.Errorf("%w: %s", ErrDuplicateReview, reviewKey)
		}
		return err
	}
	return storeAccount(acc, &PeerReview{
		Reviewer:                     reviewer,
		Paper:                        paperKey,
		QualityOfResearch:            args.QualityOfResearch,
		PotentialForRealWorldUseCase: args.PotentialForRealWorldUseCase,
		PracticalityOfResultObtained: args.PracticalityOfResultObtained,
		DomainKnowledge:              args.DomainKnowledge,
		MetadataCommitment:           args.MetadataCommitment,
		Bump:                         reviewBump,
	})
}

// mintResearchPaper handles instruction 4. The access fee goes straight
// to the paper's publisher; the reader's whitelist membership and mint
// collection are created lazily on first mint.
//
// Accounts: 0 reader (signer, writable), 1 paper, 2 fee receiver
// (writable), 3 mint collection (writable), 4 whitelist (writable),
// 5 token account (writable).
func (p *Processor) mintResearchPaper(ctx *txnContext, ins Instruction, payload []byte) error {
	var args MintResearchPaperArgs
	if err := decodeInstructionArgs(payload, &args); err != nil {
		return err
	}
	if err := requireAccounts(ins, 6); err != nil {
		return err
	}
	reader := ins.Accounts[0].Key
	paperKey := ins.Accounts[1].Key
	feeReceiver := ins.Accounts[2].Key
	collectionKey := ins.Accounts[3].Key
	whitelistKey := ins.Accounts[4].Key
	tokenKey := ins.Accounts[5].Key

	if err := requireSigner(ctx, reader); err != nil {
		return err
	}
	paperAcc := ctx.account(paperKey)
	if paperAcc == nil || len(paperAcc.Data) == 0 {
		return fmt.Errorf("%w: %s", ErrPaperNotFound, paperKey)
	}
	paper, err := ParseResearchPaper(paperAcc.Data)
	if err != nil {
		return err
	}
	if !paper.Published {
		return fmt.Errorf("%w: %s", ErrPaperNotPublished, paperKey)
	}
	if !feeReceiver.Equals(paper.Publisher) {
		return fmt.Errorf("%w: %s", ErrInvalidFeeReceiver, feeReceiver)
	}

	derivedCollection, collectionBump, err := DeriveMintCollectionPDA(reader)
	if err != nil {
		return err
	}
	if err := requireAddress(collectionKey, derivedCollection, args.MintCollectionBump, collectionBump); err != nil {
		return err
	}
	derivedWhitelist, whitelistBump, err := DeriveReaderWhitelistPDA(reader)
	if err != nil {
		return err
	}
	if err := requireAddress(whitelistKey, derivedWhitelist, args.ReaderWhitelistBump, whitelistBump); err != nil {
		return err
	}
	derivedToken, tokenBump, err := DeriveResearchTokenPDA(paperKey, reader)
	if err != nil {
		return err
	}
	if err := requireAddress(tokenKey, derivedToken, args.TokenAccountBump, tokenBump); err != nil {
		return err
	}

	tokenAcc := ctx.account(tokenKey)
	alreadyMinted := tokenAcc != nil && len(tokenAcc.Data) > 0
	if alreadyMinted && !p.cfg.AllowRemint {
		return fmt.Errorf("%w: %s", ErrAlreadyMinted, tokenKey)
	}

	// Fee first: a reader who cannot pay gets no state created.
	if err := ctx.transfer(reader, feeReceiver, paper.AccessFee); err != nil {
		return err
	}

	whitelistAcc := ctx.account(whitelistKey)
	if whitelistAcc == nil || len(whitelistAcc.Data) == 0 {
		acc, err := ctx.createAccount(whitelistKey, reader, ReaderWhitelistSize)
		if err != nil {
			return err
		}
		if err := storeAccount(acc, &ReaderWhitelist{Reader: reader, Bump: whitelistBump}); err != nil {
			return err
		}
	}

	collectionAcc := ctx.account(collectionKey)
	collection := &ResearchMintCollection{Reader: reader, Bump: collectionBump}
	if collectionAcc == nil || len(collectionAcc.Data) == 0 {
		if collectionAcc, err = ctx.createAccount(collectionKey, reader, ResearchMintCollectionSize); err != nil {
			return err
		}
	} else {
		if collection, err = ParseResearchMintCollection(collectionAcc.Data); err != nil {
			return err
		}
	}
	collection.MintCount++
	if err := storeAccount(collectionAcc, collection); err != nil {
		return err
	}

	if alreadyMinted {
		// Remint re-pays the fee and bumps the counter; the token
		// account itself is already in place.
		return nil
	}
	acc, err := ctx.createAccount(tokenKey, reader, ResearchTokenAccountSize)
	if err != nil {
		return err
	}
	return storeAccount(acc, &ResearchTokenAccount{Reader: reader, Paper: paperKey, Bump: tokenBump})
}

// checkAndAssignReputation handles instruction 5. Only configured
// checker keys may call it; the new value replaces the old outright, so
// downgrades are allowed.
//
// Accounts: 0 checker (signer), 1 profile (writable).
func (p *Processor) checkAndAssignReputation(ctx *txnContext, ins Instruction, payload []byte) error {
	var args CheckAndAssignReputationArgs
	if err := decodeInstructionArgs(payload, &args); err != nil {
		return err
	}
	if err := requireAccounts(ins, 2); err != nil {
		return err
	}
	checker := ins.Accounts[0].Key
	profileKey := ins.Accounts[1].Key

	if err := requireSigner(ctx, checker); err != nil {
		return err
	}
	if !p.cfg.IsReputationChecker(checker) {
		return fmt.Errorf("%w: %s is not a reputation checker", ErrUnauthorized, checker)
	}
	if args.Reputation > MaxReputation {
		return fmt.Errorf("%w: %d", ErrReputationOutOfRange, args.Reputation)
	}

	profileAcc := ctx.account(profileKey)
	if profileAcc == nil || len(profileAcc.Data) == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, profileKey)
	}
	profile, err := ParseResearcherProfile(profileAcc.Data)
	if err != nil {
		return err
	}

	profile.Reputation = args.Reputation
	return storeAccount(profileAcc, profile)
}
