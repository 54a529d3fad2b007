package program

import (
	"crypto/sha256"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestDerivationIsDeterministic(t *testing.T) {
	researcher := solana.NewWallet().PublicKey()

	a1, b1, err := DeriveResearcherProfilePDA(researcher)
	require.NoError(t, err)
	a2, b2, err := DeriveResearcherProfilePDA(researcher)
	require.NoError(t, err)
	require.Equal(t, a1, a2)
	require.Equal(t, b1, b2)

	// Derived addresses must be off the ed25519 curve.
	require.False(t, a1.IsOnCurve())
}

func TestDerivationSeparatesDomains(t *testing.T) {
	key := solana.NewWallet().PublicKey()

	profile, _, err := DeriveResearcherProfilePDA(key)
	require.NoError(t, err)
	collection, _, err := DeriveMintCollectionPDA(key)
	require.NoError(t, err)
	whitelist, _, err := DeriveReaderWhitelistPDA(key)
	require.NoError(t, err)

	// Same input key, different seed tags, distinct addresses.
	require.NotEqual(t, profile, collection)
	require.NotEqual(t, profile, whitelist)
	require.NotEqual(t, collection, whitelist)
}

func TestDerivationSeparatesInputs(t *testing.T) {
	publisherA := solana.NewWallet().PublicKey()
	publisherB := solana.NewWallet().PublicKey()
	contentHash := sha256.Sum256([]byte("content"))
	otherHash := sha256.Sum256([]byte("other content"))

	paperA, _, err := DeriveResearchPaperPDA(contentHash, publisherA)
	require.NoError(t, err)
	paperB, _, err := DeriveResearchPaperPDA(contentHash, publisherB)
	require.NoError(t, err)
	paperC, _, err := DeriveResearchPaperPDA(otherHash, publisherA)
	require.NoError(t, err)

	require.NotEqual(t, paperA, paperB)
	require.NotEqual(t, paperA, paperC)
}

func TestReviewAndTokenBindBothParties(t *testing.T) {
	paper := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	reviewAlice, _, err := DerivePeerReviewPDA(paper, alice)
	require.NoError(t, err)
	reviewBob, _, err := DerivePeerReviewPDA(paper, bob)
	require.NoError(t, err)
	require.NotEqual(t, reviewAlice, reviewBob)

	tokenAlice, _, err := DeriveResearchTokenPDA(paper, alice)
	require.NoError(t, err)
	require.NotEqual(t, reviewAlice, tokenAlice)
}
