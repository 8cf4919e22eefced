package editor

import "errors"

var (
	ErrReadOnly        = errors.New("page is read-only")
	ErrLastPage        = errors.New("Document must have at least one page.")
	ErrNoContent       = errors.New("Please add content to at least one page.")
	ErrPageOutOfRange  = errors.New("page out of range")
	ErrBlockOutOfRange = errors.New("block out of range")
	ErrUnknownMark     = errors.New("unknown mark")
)
