package catalog

import "errors"

var (
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidID    = errors.New("invalid book id")
)
