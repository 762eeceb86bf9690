package errors

import "errors"

var (
	ErrUnauthorized    = errors.New("caller is not the registry owner")
	ErrInvalidIdentity = errors.New("identity is required")
)
