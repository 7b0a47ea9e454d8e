package storage

import (
	"fmt"
	"strings"
)

// Validator enforces the size and extension policy before any write.
// It performs no content sniffing and no filename checks beyond the
// extension; stored names are server-generated anyway.
type Validator struct {
	maxFileSize int64
	allowed     map[string]struct{}
}

// NewValidator builds a validator from the configured cap and extension
// allowlist. Extensions are matched case-insensitively with the leading
// dot included.
func NewValidator(maxFileSize int64, allowedExtensions []string) *Validator {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimSpace(ext))] = struct{}{}
	}
	return &Validator{
		maxFileSize: maxFileSize,
		allowed:     allowed,
	}
}

// Validate rejects payloads that exceed the size cap or carry an extension
// outside the allowlist. A nil error means the payload may be written.
func (v *Validator) Validate(sizeBytes int64, ext string) error {
	if sizeBytes > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d bytes limit", ErrFileTooLarge, sizeBytes, v.maxFileSize)
	}
	if _, ok := v.allowed[strings.ToLower(ext)]; !ok {
		return fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
	}
	return nil
}

// MaxFileSize returns the configured size cap in bytes.
func (v *Validator) MaxFileSize() int64 {
	return v.maxFileSize
}
