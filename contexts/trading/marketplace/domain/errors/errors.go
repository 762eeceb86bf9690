package errors

import "errors"

var (
	ErrListingNotFound            = errors.New("listing not found")
	ErrListingNotActive           = errors.New("listing is not active")
	ErrListingAlreadyActive       = errors.New("asset already has an active listing")
	ErrNotDatasetOwner            = errors.New("caller does not own the listed asset")
	ErrNotSeller                  = errors.New("caller is not the listing seller")
	ErrAssetNotTradable           = errors.New("asset is not tradable")
	ErrPriceTooLow                = errors.New("price per unit is below the marketplace minimum")
	ErrInvalidListing             = errors.New("invalid listing input")
	ErrInvalidPurchase            = errors.New("invalid purchase input")
	ErrInsufficientAvailableUnits = errors.New("listing has fewer available units than requested")
	ErrIncorrectPayment           = errors.New("payment does not match the quoted total")
	ErrPurchaseOverflow           = errors.New("purchase total overflows")
	ErrInsufficientFunds          = errors.New("buyer funds are insufficient for the purchase")
)
