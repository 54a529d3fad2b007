package program

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Account discriminators, sha256("account:<Name>")[0:8]. Written as the
// first 8 bytes of every account so clients can filter GetProgramAccounts
// scans with a memcmp on offset 0.
var (
	Account_ResearcherProfile      = [8]byte{23, 124, 179, 26, 47, 98, 66, 219}
	Account_ResearchPaper          = [8]byte{103, 125, 147, 192, 213, 248, 70, 245}
	Account_PeerReview             = [8]byte{13, 168, 128, 102, 214, 123, 208, 229}
	Account_ResearchMintCollection = [8]byte{9, 223, 209, 211, 71, 36, 12, 213}
	Account_ReaderWhitelist        = [8]byte{235, 110, 169, 4, 92, 137, 234, 227}
	Account_ResearchTokenAccount   = [8]byte{37, 24, 135, 117, 181, 71, 15, 163}
)

// Fixed serialized sizes, discriminator included. Rent is funded for
// exactly these sizes at creation.
const (
	ResearcherProfileSize      = 8 + 32 + MaxNameLen + 1 + 32 + 1
	ResearchPaperSize          = 8 + 32 + 32 + 8 + 32 + 1 + 1
	PeerReviewSize             = 8 + 32 + 32 + 4 + 32 + 1
	ResearchMintCollectionSize = 8 + 32 + 8 + 1
	ReaderWhitelistSize        = 8 + 32 + 1
	ResearchTokenAccountSize   = 8 + 32 + 32 + 1
)

// ResearcherProfile is the identity record for a researcher. Exactly one
// exists per identity key; reputation is mutated only through
// CheckAndAssignReputation.
type ResearcherProfile struct {
	Owner              solana.PublicKey
	Name               [MaxNameLen]byte
	Reputation         uint8
	MetadataCommitment [32]byte
	Bump               uint8
}

// DisplayName returns the stored name with zero padding stripped.
func (p *ResearcherProfile) DisplayName() string {
	return string(bytes.TrimRight(p.Name[:], "\x00"))
}

func (p *ResearcherProfile) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(Account_ResearcherProfile[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(p.Owner[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(p.Name[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteByte(p.Reputation); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(p.MetadataCommitment[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteByte(p.Bump); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseResearcherProfile decodes a profile account, validating the
// discriminator.
func ParseResearcherProfile(data []byte) (*ResearcherProfile, error) {
	dec, err := accountDecoder(data, Account_ResearcherProfile, "ResearcherProfile")
	if err != nil {
		return nil, err
	}
	p := new(ResearcherProfile)
	if err := readPublicKey(dec, &p.Owner); err != nil {
		return nil, err
	}
	name, err := dec.ReadNBytes(MaxNameLen)
	if err != nil {
		return nil, err
	}
	copy(p.Name[:], name)
	if p.Reputation, err = dec.ReadByte(); err != nil {
		return nil, err
	}
	if err := readHash(dec, &p.MetadataCommitment); err != nil {
		return nil, err
	}
	if p.Bump, err = dec.ReadByte(); err != nil {
		return nil, err
	}
	return p, nil
}

// ResearchPaper is the content-addressed record of a paper. The address
// binds (publisher, content hash), so the same content can be published
// at most once per publisher. Published is a one-way flag.
type ResearchPaper struct {
	Publisher          solana.PublicKey
	ContentHash        [32]byte
	AccessFee          uint64
	MetadataCommitment [32]byte
	Published          bool
	Bump               uint8
}

func (p *ResearchPaper) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(Account_ResearchPaper[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(p.Publisher[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(p.ContentHash[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(p.AccessFee, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(p.MetadataCommitment[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(p.Published); err != nil {
		return nil, err
	}
	if err := enc.WriteByte(p.Bump); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseResearchPaper decodes a paper account, validating the discriminator.
func ParseResearchPaper(data []byte) (*ResearchPaper, error) {
	dec, err := accountDecoder(data, Account_ResearchPaper, "ResearchPaper")
	if err != nil {
		return nil, err
	}
	p := new(ResearchPaper)
	if err := readPublicKey(dec, &p.Publisher); err != nil {
		return nil, err
	}
	if err := readHash(dec, &p.ContentHash); err != nil {
		return nil, err
	}
	if p.AccessFee, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if err := readHash(dec, &p.MetadataCommitment); err != nil {
		return nil, err
	}
	if p.Published, err = dec.ReadBool(); err != nil {
		return nil, err
	}
	if p.Bump, err = dec.ReadByte(); err != nil {
		return nil, err
	}
	return p, nil
}

// PeerReview is one reviewer's immutable assessment of one paper. The
// address binds (paper, reviewer), so a reviewer can review a paper at
// most once.
type PeerReview struct {
	Reviewer                     solana.PublicKey
	Paper                        solana.PublicKey
	QualityOfResearch            uint8
	PotentialForRealWorldUseCase uint8
	PracticalityOfResultObtained uint8
	DomainKnowledge              uint8
	MetadataCommitment           [32]byte
	Bump                         uint8
}

func (r *PeerReview) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(Account_PeerReview[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(r.Reviewer[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(r.Paper[:], false); err != nil {
		return nil, err
	}
	for _, score := range []uint8{
		r.QualityOfResearch,
		r.PotentialForRealWorldUseCase,
		r.PracticalityOfResultObtained,
		r.DomainKnowledge,
	} {
		if err := enc.WriteByte(score); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteBytes(r.MetadataCommitment[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteByte(r.Bump); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParsePeerReview decodes a review account, validating the discriminator.
func ParsePeerReview(data []byte) (*PeerReview, error) {
	dec, err := accountDecoder(data, Account_PeerReview, "PeerReview")
	if err != nil {
		return nil, err
	}
	r := new(PeerReview)
	if err := readPublicKey(dec, &r.Reviewer); err != nil {
		return nil, err
	}
	if err := readPublicKey(dec, &r.Paper); err != nil {
		return nil, err
	}
	for _, score := range []*uint8{
		&r.QualityOfResearch,
		&r.PotentialForRealWorldUseCase,
		&r.PracticalityOfResultObtained,
		&r.DomainKnowledge,
	} {
		if *score, err = dec.ReadByte(); err != nil {
			return nil, err
		}
	}
	if err := readHash(dec, &r.MetadataCommitment); err != nil {
		return nil, err
	}
	if r.Bump, err = dec.ReadByte(); err != nil {
		return nil, err
	}
	return r, nil
}

// AverageScore is the read-time aggregation over the four dimensions.
func (r *PeerReview) AverageScore() uint8 {
	sum := uint16(r.QualityOfResearch) +
		uint16(r.PotentialForRealWorldUseCase) +
		uint16(r.PracticalityOfResultObtained) +
		uint16(r.DomainKnowledge)
	return uint8(sum / 4)
}

// ResearchMintCollection tracks how many papers a reader has minted,
// shared across all papers. The counter never decreases.
type ResearchMintCollection struct {
	Reader    solana.PublicKey
	MintCount uint64
	Bump      uint8
}

func (c *ResearchMintCollection) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(Account_ResearchMintCollection[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(c.Reader[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(c.MintCount, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteByte(c.Bump); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseResearchMintCollection decodes a mint collection account.
func ParseResearchMintCollection(data []byte) (*ResearchMintCollection, error) {
	dec, err := accountDecoder(data, Account_ResearchMintCollection, "ResearchMintCollection")
	if err != nil {
		return nil, err
	}
	c := new(ResearchMintCollection)
	if err := readPublicKey(dec, &c.Reader); err != nil {
		return nil, err
	}
	if c.MintCount, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if c.Bump, err = dec.ReadByte(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReaderWhitelist marks a reader as permitted to access gated content.
// Membership is append-only; the instruction set never removes it.
type ReaderWhitelist struct {
	Reader solana.PublicKey
	Bump   uint8
}

func (w *ReaderWhitelist) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(Account_ReaderWhitelist[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(w.Reader[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteByte(w.Bump); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseReaderWhitelist decodes a whitelist account.
func ParseReaderWhitelist(data []byte) (*ReaderWhitelist, error) {
	dec, err := accountDecoder(data, Account_ReaderWhitelist, "ReaderWhitelist")
	if err != nil {
		return nil, err
	}
	w := new(ReaderWhitelist)
	if err := readPublicKey(dec, &w.Reader); err != nil {
		return nil, err
	}
	if w.Bump, err = dec.ReadByte(); err != nil {
		return nil, err
	}
	return w, nil
}

// ResearchTokenAccount records a reader's paid access right to one
// paper. Created on mint, read-checked on access, never decremented.
type ResearchTokenAccount struct {
	Reader solana.PublicKey
	Paper  solana.PublicKey
	Bump   uint8
}

func (t *ResearchTokenAccount) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(Account_ResearchTokenAccount[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(t.Reader[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(t.Paper[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteByte(t.Bump); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseResearchTokenAccount decodes a token account.
func ParseResearchTokenAccount(data []byte) (*ResearchTokenAccount, error) {
	dec, err := accountDecoder(data, Account_ResearchTokenAccount, "ResearchTokenAccount")
	if err != nil {
		return nil, err
	}
	t := new(ResearchTokenAccount)
	if err := readPublicKey(dec, &t.Reader); err != nil {
		return nil, err
	}
	if err := readPublicKey(dec, &t.Paper); err != nil {
		return nil, err
	}
	if t.Bump, err = dec.ReadByte(); err != nil {
		return nil, err
	}
	return t, nil
}

func accountDecoder(data []byte, disc [8]byte, kind string) (*bin.Decoder, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: %s account too short", ErrInvalidAccountData, kind)
	}
	if !bytes.Equal(data[:8], disc[:]) {
		return nil, fmt.Errorf("%w: wrong discriminator for %s", ErrInvalidAccountData, kind)
	}
	return bin.NewBorshDecoder(data[8:]), nil
}

func readPublicKey(dec *bin.Decoder, out *solana.PublicKey) error {
	raw, err := dec.ReadNBytes(32)
	if err != nil {
		return err
	}
	copy(out[:], raw)
	return nil
}

func readHash(dec *bin.Decoder, out *[32]byte) error {
	raw, err := dec.ReadNBytes(32)
	if err != nil {
		return err
	}
	copy(out[:], raw)
	return nil
}
