package program

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// Instruction discriminators. A single byte selects the handler; the
// borsh-encoded argument struct follows.
const (
	InstructionCreateResearcherProfile uint8 = iota
	InstructionCreateResearchPaper
	InstructionPublishPaper
	InstructionAddPeerReview
	InstructionMintResearchPaper
	InstructionCheckAndAssignReputation
)

// CreateResearcherProfileArgs carries the payload of instruction 0.
type CreateResearcherProfileArgs struct {
	Name               string
	MetadataCommitment [32]byte
	Bump               uint8
}

// CreateResearchPaperArgs carries the payload of instruction 1.
type CreateResearchPaperArgs struct {
	ContentHash        [32]byte
	AccessFee          uint64
	MetadataCommitment [32]byte
	Bump               uint8
}

// PublishPaperArgs carries the payload of instruction 2.
type PublishPaperArgs struct {
	Bump uint8
}

// AddPeerReviewArgs carries the payload of instruction 3. Each score is
// on the 0..=MaxScore scale.
type AddPeerReviewArgs struct {
	QualityOfResearch            uint8
	PotentialForRealWorldUseCase uint8
	PracticalityOfResultObtained uint8
	DomainKnowledge              uint8
	MetadataCommitment           [32]byte
	Bump                         uint8
}

// MintResearchPaperArgs carries the payload of instruction 4. The bumps
// cover the three reader-side accounts the handler may create.
type MintResearchPaperArgs struct {
	MintCollectionBump  uint8
	ReaderWhitelistBump uint8
	TokenAccountBump    uint8
}

// CheckAndAssignReputationArgs carries the payload of instruction 5.
type CheckAndAssignReputationArgs struct {
	Reputation uint8
}

// encodeInstructionData prepends the discriminator byte to the
// borsh-encoded argument struct.
func encodeInstructionData(discriminator uint8, args interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteByte(discriminator); err != nil {
		return nil, err
	}
	if err := enc.Encode(args); err != nil {
		return nil, fmt.Errorf("failed to encode instruction args: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeInstructionArgs(data []byte, out interface{}) error {
	dec := bin.NewBorshDecoder(data)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInstructionData, err)
	}
	if dec.HasRemaining() {
		return fmt.Errorf("%w: trailing bytes after args", ErrInvalidInstructionData)
	}
	return nil
}

// EncodeCreateResearcherProfile serializes instruction 0's data.
func EncodeCreateResearcherProfile(args CreateResearcherProfileArgs) ([]byte, error) {
	return encodeInstructionData(InstructionCreateResearcherProfile, &args)
}

// EncodeCreateResearchPaper serializes instruction 1's data.
func EncodeCreateResearchPaper(args CreateResearchPaperArgs) ([]byte, error) {
	return encodeInstructionData(InstructionCreateResearchPaper, &args)
}

// EncodePublishPaper serializes instruction 2's data.
func EncodePublishPaper(args PublishPaperArgs) ([]byte, error) {
	return encodeInstructionData(InstructionPublishPaper, &args)
}

// EncodeAddPeerReview serializes instruction 3's data.
func EncodeAddPeerReview(args AddPeerReviewArgs) ([]byte, error) {
	return encodeInstructionData(InstructionAddPeerReview, &args)
}

// EncodeMintResearchPaper serializes instruction 4's data.
func EncodeMintResearchPaper(args MintResearchPaperArgs) ([]byte, error) {
	return encodeInstructionData(InstructionMintResearchPaper, &args)
}

// EncodeCheckAndAssignReputation serializes instruction 5's data.
func EncodeCheckAndAssignReputation(args CheckAndAssignReputationArgs) ([]byte, error) {
	return encodeInstructionData(InstructionCheckAndAssignReputation, &args)
}
