package program

import "github.com/gagliardetto/solana-go"

// Domain tags prefixing every derived address. These are part of the
// protocol's wire surface and must match bit for bit across the client
// and the deployed program.
var (
	seedResearcherProfile = []byte("researcher_profile")
	seedResearchPaper     = []byte("research_paper")
	seedPeerReview        = []byte("peer_review")
	seedMintCollection    = []byte("mint_collection")
	seedReaderWhitelist   = []byte("reader_whitelist")
	seedResearchToken     = []byte("research_token")
)

// findProgramAddress searches bump seeds descending from 255 and returns
// the first candidate that is off the ed25519 curve. The search space is
// expected to never exhaust in practice.
func findProgramAddress(seeds [][]byte) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return solana.PublicKey{}, 0, ErrDerivationExhausted
	}
	return addr, bump, nil
}

// DeriveResearcherProfilePDA returns the profile address for a researcher
// identity. One profile per identity follows from this derivation being
// deterministic.
func DeriveResearcherProfilePDA(researcher solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress([][]byte{seedResearcherProfile, researcher.Bytes()})
}

// DeriveResearchPaperPDA returns the paper address for a (content hash,
// publisher) pair.
func DeriveResearchPaperPDA(contentHash [32]byte, publisher solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress([][]byte{seedResearchPaper, contentHash[:], publisher.Bytes()})
}

// DerivePeerReviewPDA returns the review address for a (paper, reviewer)
// pair.
func DerivePeerReviewPDA(paper, reviewer solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress([][]byte{seedPeerReview, paper.Bytes(), reviewer.Bytes()})
}

// DeriveMintCollectionPDA returns a reader's mint collection address,
// shared across every paper that reader mints.
func DeriveMintCollectionPDA(reader solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress([][]byte{seedMintCollection, reader.Bytes()})
}

// DeriveReaderWhitelistPDA returns a reader's whitelist membership address.
func DeriveReaderWhitelistPDA(reader solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress([][]byte{seedReaderWhitelist, reader.Bytes()})
}

// DeriveResearchTokenPDA returns the access-token address binding a
// reader to a paper.
func DeriveResearchTokenPDA(paper, reader solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress([][]byte{seedResearchToken, paper.Bytes(), reader.Bytes()})
}
