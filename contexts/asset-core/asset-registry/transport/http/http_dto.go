package httptransport

// RegisterAssetRequest registers a dataset and provisions its access ledger.
type RegisterAssetRequest struct {
	ExternalID      string `json:"external_id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	MetadataRef     string `json:"metadata_ref"`
	InitialUnits    uint64 `json:"initial_units"`
	AccessThreshold uint64 `json:"access_threshold,omitempty"`
	BurnOnConsume   bool   `json:"burn_on_consume,omitempty"`
}

type AssetResponse struct {
	Handle          uint64 `json:"handle"`
	ExternalID      string `json:"external_id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	MetadataRef     string `json:"metadata_ref"`
	Creator         string `json:"creator"`
	Owner           string `json:"owner"`
	LedgerID        string `json:"ledger_id"`
	RoyaltyReceiver string `json:"royalty_receiver"`
	RoyaltyRateBps  uint32 `json:"royalty_rate_bps"`
	Active          bool   `json:"active"`
	CreatedAt       string `json:"created_at"`
}

type ListAssetsResponse struct {
	Items []AssetResponse `json:"items"`
	Total int             `json:"total"`
}

// MintUnitsRequest mints additional supply in base units.
type MintUnitsRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type SetRoyaltyRequest struct {
	Receiver string `json:"receiver"`
	RateBps  uint32 `json:"rate_bps"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

type RoyaltyQuoteResponse struct {
	Handle    uint64 `json:"handle"`
	SalePrice uint64 `json:"sale_price"`
	Receiver  string `json:"receiver"`
	Amount    uint64 `json:"amount"`
}

type AccessCheckResponse struct {
	Handle    uint64 `json:"handle"`
	Identity  string `json:"identity"`
	HasAccess bool   `json:"has_access"`
}

type AcceptedResponse struct {
	Handle  uint64 `json:"handle"`
	Applied bool   `json:"applied"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
