package storage

import "errors"

var (
	// Validation errors - rejected before any byte is written
	ErrFileTooLarge        = errors.New("file size exceeds maximum allowed size")
	ErrExtensionNotAllowed = errors.New("file extension is not allowed")

	// ErrInvalidName rejects names with path separators or dot segments.
	// Stored names are always server-generated, so anything else is hostile.
	ErrInvalidName = errors.New("invalid file name")

	ErrFileNotFound = errors.New("file not found")

	// I/O operation errors - wrapped with context for debugging
	ErrFailedToCreateDirectory = errors.New("failed to create upload directory")
	ErrFailedToWriteFile       = errors.New("failed to write file")
	ErrFailedToOpenFile        = errors.New("failed to open file")
	ErrFailedToDeleteFile      = errors.New("failed to delete file")
	ErrFailedToStatPath        = errors.New("failed to stat path")
	ErrFailedToPurge           = errors.New("failed to purge upload directory")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid storage configuration")
)
