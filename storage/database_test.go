package storage

import (
	"os"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from a temp directory so the wallet file does
// not leak into the repository.
func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestWalletStorageRoundTrip(t *testing.T) {
	chdirTemp(t)

	db, err := NewWalletStorage()
	require.NoError(t, err)
	defer db.Close()

	wallet := solana.NewWallet()
	require.NoError(t, db.SaveWallet("researcher", wallet.PrivateKey))

	got, err := db.GetWallet("researcher")
	require.NoError(t, err)
	require.Equal(t, wallet.PrivateKey, got)
	require.Equal(t, wallet.PublicKey(), got.PublicKey())
}

func TestWalletStorageGetMissing(t *testing.T) {
	chdirTemp(t)

	db, err := NewWalletStorage()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.GetWallet("nonexistent")
	require.Error(t, err)
}

func TestWalletStorageSaveEmptyName(t *testing.T) {
	chdirTemp(t)

	db, err := NewWalletStorage()
	require.NoError(t, err)
	defer db.Close()

	require.Error(t, db.SaveWallet("", solana.NewWallet().PrivateKey))
}

func TestWalletStorageOverwrite(t *testing.T) {
	chdirTemp(t)

	db, err := NewWalletStorage()
	require.NoError(t, err)
	defer db.Close()

	first := solana.NewWallet()
	second := solana.NewWallet()
	require.NoError(t, db.SaveWallet("reader", first.PrivateKey))
	require.NoError(t, db.SaveWallet("reader", second.PrivateKey))

	got, err := db.GetWallet("reader")
	require.NoError(t, err)
	require.Equal(t, second.PrivateKey, got)
}

func TestWalletStorageListNames(t *testing.T) {
	chdirTemp(t)

	db, err := NewWalletStorage()
	require.NoError(t, err)
	defer db.Close()

	names, err := db.GetAllWalletNames()
	require.NoError(t, err)
	require.Empty(t, names)

	require.NoError(t, db.SaveWallet("researcher", solana.NewWallet().PrivateKey))
	require.NoError(t, db.SaveWallet("checker", solana.NewWallet().PrivateKey))
	require.NoError(t, db.SaveWallet("reader", solana.NewWallet().PrivateKey))

	names, err = db.GetAllWalletNames()
	require.NoError(t, err)
	require.Equal(t, []string{"checker", "reader", "researcher"}, names)
}

// Reopening the storage sees wallets written by a previous handle.
func TestWalletStoragePersistence(t *testing.T) {
	chdirTemp(t)

	db, err := NewWalletStorage()
	require.NoError(t, err)
	wallet := solana.NewWallet()
	require.NoError(t, db.SaveWallet("researcher", wallet.PrivateKey))
	require.NoError(t, db.Close())

	reopened, err := NewWalletStorage()
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetWallet("researcher")
	require.NoError(t, err)
	require.Equal(t, wallet.PrivateKey, got)
}
