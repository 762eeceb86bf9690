package errors

import "errors"

var (
	ErrLedgerNotFound         = errors.New("ledger not found")
	ErrDeploymentUnauthorized = errors.New("provisioner is not an authorized deployer")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInsufficientAllowance  = errors.New("insufficient allowance")
	ErrNotController          = errors.New("caller does not control this ledger")
	ErrInvalidIdentity        = errors.New("identity is required")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrSupplyOverflow         = errors.New("total supply overflow")
	ErrLedgerAttached         = errors.New("ledger is attached to an asset")
)
