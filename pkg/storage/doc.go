// Package storage is the file intake engine behind the upload endpoints.
// It validates incoming binary payloads against a size and extension
// policy, persists them under server-generated collision-free names, and
// serves retrieval and deletion by that generated name only.
//
// Two backends implement the Store interface: LocalStore writes to a
// directory on local disk (the default), S3Store targets Amazon S3 or an
// S3-compatible service. Both validate before a single byte is written
// and never derive a stored name from client input.
//
// Basic usage:
//
//	store, err := storage.NewLocalStore(cfg)
//	name, err := store.Save(ctx, src, header.Size, filepath.Ext(header.Filename))
//	rc, size, err := store.Load(ctx, name)
//	defer rc.Close()
//
// Operational failures surface as sentinel errors (ErrFileTooLarge,
// ErrExtensionNotAllowed, ErrFileNotFound) so callers can map them to
// distinct client-facing outcomes with errors.Is.
package storage
