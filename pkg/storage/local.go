package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore implements Store on the local filesystem. All operations are
// confined to baseDir; Load and Delete accept generated names only, never
// paths. Writes go through a temporary file and an atomic rename so
// concurrent readers never observe a partially written file.
type LocalStore struct {
	baseDir   string // Absolute path - all files live directly in this directory
	validator *Validator
	log       *slog.Logger
}

// LocalOption configures LocalStore.
type LocalOption func(*LocalStore)

// WithLocalLogger supplies a logger. Defaults to slog.Default().
func WithLocalLogger(log *slog.Logger) LocalOption {
	return func(s *LocalStore) {
		if log != nil {
			s.log = log
		}
	}
}

// NewLocalStore creates a local filesystem store from the intake policy.
// The upload directory is resolved to an absolute path and created if it
// does not exist.
func NewLocalStore(cfg Config, opts ...LocalOption) (*LocalStore, error) {
	if cfg.UploadDir == "" || cfg.MaxFileSize <= 0 {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := os.MkdirAll(absBaseDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	s := &LocalStore{
		baseDir:   absBaseDir,
		validator: NewValidator(cfg.MaxFileSize, cfg.AllowedExtensions),
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Save validates, then streams the payload to a temporary file and renames
// it into place. The generated name is a fresh UUID plus the original
// extension, so concurrent saves never collide.
func (s *LocalStore) Save(ctx context.Context, src io.Reader, sizeBytes int64, ext string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	// Validation happens before any byte touches disk.
	if err := s.validator.Validate(sizeBytes, ext); err != nil {
		return "", err
	}

	// The directory should exist since construction, but recreate it in
	// case an operator removed it while the service was running.
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	name := uuid.NewString() + strings.ToLower(ext)

	tmp, err := os.CreateTemp(s.baseDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	// Cap the copy one byte past the limit so undeclared oversize streams
	// are caught even when the announced size lied.
	written, err := copyWithContext(ctx, tmp, io.LimitReader(src, s.validator.MaxFileSize()+1))
	if err != nil {
		cleanup()
		return "", err
	}
	if written > s.validator.MaxFileSize() {
		cleanup()
		return "", fmt.Errorf("%w: stream exceeded %d bytes", ErrFileTooLarge, s.validator.MaxFileSize())
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}

	// Atomic visibility: readers see either nothing or the whole file.
	finalPath := filepath.Join(s.baseDir, name)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}

	s.log.InfoContext(ctx, "file saved",
		slog.String("name", name),
		slog.Int64("size", written))

	return name, nil
}

// Load opens the stored file read-only. A Load racing a Delete on the same
// name may return ErrFileNotFound; that is accepted behavior.
func (s *LocalStore) Load(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	default:
	}

	path, err := s.resolveName(name)
	if err != nil {
		return nil, 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}

	return f, info.Size(), nil
}

// Delete removes a stored file. An absent name is not an error.
func (s *LocalStore) Delete(ctx context.Context, name string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	path, err := s.resolveName(name)
	if err != nil {
		return false, err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrFailedToDeleteFile, err)
	}

	s.log.InfoContext(ctx, "file deleted", slog.String("name", name))
	return true, nil
}

// Purge removes every stored file, including stale temporaries.
// The directory itself is kept.
func (s *LocalStore) Purge(ctx context.Context) error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToPurge, err)
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToPurge, err)
		}
	}

	s.log.InfoContext(ctx, "upload directory purged", slog.String("dir", s.baseDir))
	return nil
}

// resolveName maps a generated name to its absolute path. Names carrying
// separators or dot segments are rejected outright; clients only ever hold
// names this store generated.
func (s *LocalStore) resolveName(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.baseDir, name), nil
}

// copyWithContext copies src to dst checking for cancellation between
// chunks, so large uploads can be abandoned early.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var written int64
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			nw, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return written, fmt.Errorf("%w: %v", ErrFailedToWriteFile, writeErr)
			}
			written += int64(nw)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("%w: %v", ErrFailedToWriteFile, readErr)
		}
	}
}
