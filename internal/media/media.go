package media

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=media.go -destination=mocks/mock.go

// Store is the blob storage behind snap and message media.
type Store interface {
	// DeleteBlob removes the blob at path. A missing blob is not an error.
	DeleteBlob(ctx context.Context, path string) error
}
