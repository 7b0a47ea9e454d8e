package storage

import (
	"context"
	"io"
)

// Store persists uploaded binary payloads under server-generated names.
// Implementations must be safe for concurrent use; name uniqueness is
// guaranteed by the random token generator, so concurrent saves need no
// coordination.
type Store interface {
	// Save validates the payload, writes it under a fresh generated name
	// (random token + original extension) and returns that name once the
	// write is fully complete.
	Save(ctx context.Context, src io.Reader, sizeBytes int64, ext string) (string, error)

	// Load opens the stored file for reading and returns its size.
	// The caller owns closing the stream. Returns ErrFileNotFound when the
	// name has no stored file.
	Load(ctx context.Context, name string) (io.ReadCloser, int64, error)

	// Delete removes the stored file. It reports false, with no error, when
	// the name has no stored file.
	Delete(ctx context.Context, name string) (bool, error)

	// Purge removes every stored file.
	Purge(ctx context.Context) error
}
