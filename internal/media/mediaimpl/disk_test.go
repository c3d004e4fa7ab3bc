package mediaimpl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
	"github.com/sadaqat12/snapconnect/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestDeleteBlob(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "snaps"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "snaps", "a.jpg"), []byte("jpeg"), 0o644))

	store := NewDiskStore(root, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, store.DeleteBlob(ctx, "snaps/a.jpg"))
	_, err := os.Stat(filepath.Join(root, "snaps", "a.jpg"))
	require.True(t, os.IsNotExist(err))

	// second delete is a no-op
	require.NoError(t, store.DeleteBlob(ctx, "snaps/a.jpg"))
}

func TestDeleteBlobRejectsEscapes(t *testing.T) {
	store := NewDiskStore(t.TempDir(), logger.NewNop())

	for _, path := range []string{"", "../etc/passwd", "/etc/passwd", "snaps/../../x", "."} {
		err := store.DeleteBlob(context.Background(), path)
		require.ErrorIs(t, err, ErrOutsideRoot, path)
		require.True(t, apperrors.IsInvalidInput(err), path)
	}
}
