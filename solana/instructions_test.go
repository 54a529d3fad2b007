package deres_protocol

import (
	"crypto/sha256"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"deres-cli/program"
)

func TestNewCreateResearcherProfileInstruction(t *testing.T) {
	researcher := solana.NewWallet().PublicKey()
	profilePDA, bump, err := program.DeriveResearcherProfilePDA(researcher)
	require.NoError(t, err)

	ins, err := NewCreateResearcherProfileInstruction("Ada", [32]byte{}, bump, researcher, profilePDA)
	require.NoError(t, err)
	require.Equal(t, program.ProgramID, ins.ProgramID())

	accounts := ins.Accounts()
	require.Len(t, accounts, 3)
	require.Equal(t, researcher, accounts[0].PublicKey)
	require.True(t, accounts[0].IsSigner)
	require.True(t, accounts[0].IsWritable)
	require.Equal(t, profilePDA, accounts[1].PublicKey)
	require.False(t, accounts[1].IsSigner)
	require.True(t, accounts[1].IsWritable)
	require.Equal(t, solana.SystemProgramID, accounts[2].PublicKey)

	data, err := ins.Data()
	require.NoError(t, err)
	require.Equal(t, program.InstructionCreateResearcherProfile, data[0])
}

func TestNewCreateResearcherProfileInstructionRejectsBadName(t *testing.T) {
	researcher := solana.NewWallet().PublicKey()
	profilePDA, bump, err := program.DeriveResearcherProfilePDA(researcher)
	require.NoError(t, err)

	_, err = NewCreateResearcherProfileInstruction("", [32]byte{}, bump, researcher, profilePDA)
	require.ErrorIs(t, err, program.ErrInvalidName)

	long := make([]byte, program.MaxNameLen+1)
	_, err = NewCreateResearcherProfileInstruction(string(long), [32]byte{}, bump, researcher, profilePDA)
	require.ErrorIs(t, err, program.ErrInvalidName)
}

func TestNewCreateResearchPaperInstruction(t *testing.T) {
	publisher := solana.NewWallet().PublicKey()
	profilePDA, _, err := program.DeriveResearcherProfilePDA(publisher)
	require.NoError(t, err)
	contentHash := sha256.Sum256([]byte("paper"))
	paperPDA, bump, err := program.DeriveResearchPaperPDA(contentHash, publisher)
	require.NoError(t, err)

	ins, err := NewCreateResearchPaperInstruction(contentHash[:], 1000, [32]byte{}, bump, publisher, profilePDA, paperPDA)
	require.NoError(t, err)

	accounts := ins.Accounts()
	require.Len(t, accounts, 4)
	require.True(t, accounts[0].IsSigner)
	require.False(t, accounts[1].IsWritable)
	require.True(t, accounts[2].IsWritable)

	data, err := ins.Data()
	require.NoError(t, err)
	require.Equal(t, program.InstructionCreateResearchPaper, data[0])
}

func TestNewCreateResearchPaperInstructionRejectsBadHash(t *testing.T) {
	publisher := solana.NewWallet().PublicKey()
	_, err := NewCreateResearchPaperInstruction([]byte("too short"), 0, [32]byte{}, 0, publisher, publisher, publisher)
	require.ErrorIs(t, err, program.ErrInvalidContentHash)
}

func TestNewMintResearchPaperInstruction(t *testing.T) {
	reader := solana.NewWallet().PublicKey()
	paperPDA := solana.NewWallet().PublicKey()
	feeReceiver := solana.NewWallet().PublicKey()
	collectionPDA, collectionBump, err := program.DeriveMintCollectionPDA(reader)
	require.NoError(t, err)
	whitelistPDA, whitelistBump, err := program.DeriveReaderWhitelistPDA(reader)
	require.NoError(t, err)
	tokenPDA, tokenBump, err := program.DeriveResearchTokenPDA(paperPDA, reader)
	require.NoError(t, err)

	ins, err := NewMintResearchPaperInstruction(
		collectionBump, whitelistBump, tokenBump,
		reader, paperPDA, feeReceiver, collectionPDA, whitelistPDA, tokenPDA,
	)
	require.NoError(t, err)

	accounts := ins.Accounts()
	require.Len(t, accounts, 7)
	require.Equal(t, reader, accounts[0].PublicKey)
	require.True(t, accounts[0].IsSigner)
	require.Equal(t, feeReceiver, accounts[2].PublicKey)
	require.True(t, accounts[2].IsWritable)
	require.Equal(t, tokenPDA, accounts[5].PublicKey)

	data, err := ins.Data()
	require.NoError(t, err)
	require.Equal(t, program.InstructionMintResearchPaper, data[0])
	// Discriminator plus the three bumps.
	require.Len(t, data, 4)
}

func TestNewCheckAndAssignReputationInstruction(t *testing.T) {
	checker := solana.NewWallet().PublicKey()
	profilePDA := solana.NewWallet().PublicKey()

	ins, err := NewCheckAndAssignReputationInstruction(77, checker, profilePDA)
	require.NoError(t, err)

	accounts := ins.Accounts()
	require.Len(t, accounts, 2)
	require.True(t, accounts[0].IsSigner)
	require.False(t, accounts[0].IsWritable)
	require.True(t, accounts[1].IsWritable)

	data, err := ins.Data()
	require.NoError(t, err)
	require.Equal(t, []byte{program.InstructionCheckAndAssignReputation, 77}, data)
}
