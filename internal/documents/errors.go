package documents

import "errors"

var (
	ErrDuplicate    = errors.New("document already exists")
	ErrInvalidInput = errors.New("invalid input")
)
