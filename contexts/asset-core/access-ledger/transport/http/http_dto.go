package httptransport

type LedgerResponse struct {
	LedgerID        string `json:"ledger_id"`
	Controller      string `json:"controller"`
	TotalSupply     uint64 `json:"total_supply"`
	AccessThreshold uint64 `json:"access_threshold"`
	BurnOnConsume   bool   `json:"burn_on_consume"`
	CreatedAt       string `json:"created_at"`
}

type BalanceResponse struct {
	LedgerID    string `json:"ledger_id"`
	Identity    string `json:"identity"`
	Balance     uint64 `json:"balance"`
	AccessUnits uint64 `json:"access_units"`
	Consumed    uint64 `json:"consumed"`
	HasAccess   bool   `json:"has_access"`
}

type TransferRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type ApproveRequest struct {
	Spender string `json:"spender"`
	Amount  uint64 `json:"amount"`
}

type BurnRequest struct {
	Amount uint64 `json:"amount"`
}

type ConsumeRequest struct {
	Amount uint64 `json:"amount"`
}

type AcceptedResponse struct {
	LedgerID string `json:"ledger_id"`
	Applied  bool   `json:"applied"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
