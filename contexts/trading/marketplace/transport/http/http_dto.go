package httptransport

type CreateListingRequest struct {
	AssetHandle  uint64 `json:"asset_handle"`
	PricePerUnit uint64 `json:"price_per_unit"`
	UnitCount    uint64 `json:"unit_count"`
}

type ListingResponse struct {
	ListingID      string `json:"listing_id"`
	AssetHandle    uint64 `json:"asset_handle"`
	Seller         string `json:"seller"`
	PricePerUnit   uint64 `json:"price_per_unit"`
	AvailableUnits uint64 `json:"available_units"`
	TotalSold      uint64 `json:"total_sold"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at"`
}

type ListListingsResponse struct {
	Items []ListingResponse `json:"items"`
	Total int               `json:"total"`
}

type UpdateListingRequest struct {
	NewPricePerUnit uint64 `json:"new_price_per_unit"`
	AdditionalUnits uint64 `json:"additional_units,omitempty"`
}

type PurchaseRequest struct {
	UnitCount     uint64 `json:"unit_count"`
	PaymentAmount uint64 `json:"payment_amount"`
}

type QuoteResponse struct {
	ListingID       string `json:"listing_id"`
	UnitCount       uint64 `json:"unit_count"`
	TotalPrice      uint64 `json:"total_price"`
	PlatformFee     uint64 `json:"platform_fee"`
	RoyaltyAmount   uint64 `json:"royalty_amount"`
	RoyaltyReceiver string `json:"royalty_receiver"`
	SellerProceeds  uint64 `json:"seller_proceeds"`
}

type PurchaseResponse struct {
	Quote   QuoteResponse   `json:"quote"`
	Listing ListingResponse `json:"listing"`
}

type AcceptedResponse struct {
	ListingID string `json:"listing_id"`
	Applied   bool   `json:"applied"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
