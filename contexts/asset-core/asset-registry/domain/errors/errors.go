package errors

import "errors"

var (
	ErrAssetAlreadyRegistered = errors.New("external id is already registered")
	ErrAssetNotFound          = errors.New("asset not found")
	ErrNotOwner               = errors.New("caller does not own this asset")
	ErrInvalidRoyaltyRate     = errors.New("royalty rate exceeds 10000 bps")
	ErrInvalidAsset           = errors.New("invalid asset registration")
)
