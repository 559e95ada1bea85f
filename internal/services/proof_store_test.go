package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProofStore_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalProofStore(dir)
	ctx := context.Background()

	location, err := store.Save(ctx, "payment_7_1.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png")
	require.NoError(t, err)

	info, err := os.Stat(filepath.FromSlash(location))
	require.NoError(t, err)
	assert.Equal(t, int64(len(pngHeader)), info.Size())
	assert.Zero(t, info.Mode().Perm()&0o007, "proof must not be world accessible")

	dirInfo, err := os.Stat(filepath.Join(dir, "pembayaran"))
	require.NoError(t, err)
	assert.Zero(t, dirInfo.Mode().Perm()&0o007, "upload dir must not be world accessible")

	_, err = store.Save(ctx, "payment_7_1.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png")
	assert.Error(t, err, "existing proofs are never overwritten")

	require.NoError(t, store.Remove(ctx, location))
	require.NoError(t, store.Remove(ctx, location))
	_, err = os.Stat(filepath.FromSlash(location))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalProofStore_StripsDirectoryFromName(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalProofStore(dir)

	location, err := store.Save(context.Background(), "../../evil.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "pembayaran", "evil.png"), filepath.FromSlash(location))
}
