package store

import "errors"

var (
	ErrNotFound          = errors.New("document not found")
	ErrUnreachable       = errors.New("database unreachable")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
