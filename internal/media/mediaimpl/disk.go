package mediaimpl

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sadaqat12/snapconnect/internal/media"
	"github.com/sadaqat12/snapconnect/pkg/config"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
	"github.com/sadaqat12/snapconnect/pkg/logger"
	"go.uber.org/fx"
)

var ErrOutsideRoot = apperrors.WrapWithCode(apperrors.ErrInvalidInput, "media_outside_root", "media path escapes the media root")

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// DiskStore keeps blobs as files below a root directory. Paths stored on
// content items are relative to that root.
type DiskStore struct {
	root   string
	logger logger.Logger
}

func New(opts Opts) *DiskStore {
	return NewDiskStore(opts.Config.Media.Root, opts.Logger)
}

func NewDiskStore(root string, log logger.Logger) *DiskStore {
	return &DiskStore{
		root:   filepath.Clean(root),
		logger: log.WithComponent("MediaStore"),
	}
}

var _ media.Store = (*DiskStore)(nil)

func (s *DiskStore) DeleteBlob(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("Blob already gone", "path", path)
			return nil
		}
		return apperrors.Transient(err, "delete blob")
	}

	s.logger.Info("Blob deleted", "path", path)
	return nil
}

func (s *DiskStore) resolve(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return "", ErrOutsideRoot
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}
