package errors

import "errors"

var (
	ErrInvalidTransaction = errors.New("invalid transaction payload")
	ErrInvalidIdentity    = errors.New("identity is required")
)
