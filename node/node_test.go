package node

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaperStoreRoundTrip(t *testing.T) {
	store, err := NewPaperStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("an important result")
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	path, err := store.Put(hash, content)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	got, err := store.Get(hash)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestPaperStorePutRejectsWrongHash(t *testing.T) {
	store, err := NewPaperStore(t.TempDir())
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("expected content"))
	hash := hex.EncodeToString(sum[:])

	_, err = store.Put(hash, []byte("different content"))
	require.Error(t, err)

	// Nothing was written for the bad hash.
	got, err := store.Get(hash)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPaperStoreGetMissing(t *testing.T) {
	store, err := NewPaperStore(t.TempDir())
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("never stored"))
	got, err := store.Get(hex.EncodeToString(sum[:]))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPaperStoreList(t *testing.T) {
	store, err := NewPaperStore(t.TempDir())
	require.NoError(t, err)

	hashes, err := store.List()
	require.NoError(t, err)
	require.Empty(t, hashes)

	var stored []string
	for _, content := range [][]byte{[]byte("one"), []byte("two"), []byte("three")} {
		sum := sha256.Sum256(content)
		hash := hex.EncodeToString(sum[:])
		_, err := store.Put(hash, content)
		require.NoError(t, err)
		stored = append(stored, hash)
	}

	hashes, err = store.List()
	require.NoError(t, err)
	require.Len(t, hashes, 3)
	for _, hash := range stored {
		require.Contains(t, hashes, hash)
	}
}
