package httptransport

type SummaryResponse struct {
	Identity        string `json:"identity"`
	SalesCount      uint64 `json:"sales_count"`
	PurchasesCount  uint64 `json:"purchases_count"`
	UnitsSold       uint64 `json:"units_sold"`
	UnitsBought     uint64 `json:"units_bought"`
	GrossSales      string `json:"gross_sales"`
	ProceedsEarned  string `json:"proceeds_earned"`
	RoyaltiesEarned string `json:"royalties_earned"`
	TotalEarned     string `json:"total_earned"`
	AmountSpent     string `json:"amount_spent"`
}

type TransactionResponse struct {
	EventID         string `json:"event_id"`
	ListingID       string `json:"listing_id"`
	AssetHandle     uint64 `json:"asset_handle"`
	Buyer           string `json:"buyer"`
	Seller          string `json:"seller"`
	UnitCount       uint64 `json:"unit_count"`
	TotalPrice      string `json:"total_price"`
	PlatformFee     string `json:"platform_fee"`
	RoyaltyAmount   string `json:"royalty_amount"`
	RoyaltyReceiver string `json:"royalty_receiver"`
	SellerProceeds  string `json:"seller_proceeds"`
	OccurredAt      string `json:"occurred_at"`
}

type ListTransactionsResponse struct {
	Items []TransactionResponse `json:"items"`
	Total int                   `json:"total"`
}

type AssetEarningsResponse struct {
	Rank            int    `json:"rank"`
	AssetHandle     uint64 `json:"asset_handle"`
	SalesCount      uint64 `json:"sales_count"`
	UnitsSold       uint64 `json:"units_sold"`
	GrossSales      string `json:"gross_sales"`
	ProceedsEarned  string `json:"proceeds_earned"`
	RoyaltiesEarned string `json:"royalties_earned"`
	TotalEarned     string `json:"total_earned"`
}

type TopAssetsResponse struct {
	Items []AssetEarningsResponse `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
