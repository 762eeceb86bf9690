package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "inflectiv/contexts/asset-core/access-ledger/application"
	httptransport "inflectiv/contexts/asset-core/access-ledger/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// GetLedgerHandler godoc
// @Summary Get ledger details
// @Tags access-ledger
// @Produce json
// @Param ledger_id path string true "Ledger id"
// @Success 200 {object} httptransport.LedgerResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/ledgers/{ledger_id} [get]
func (h Handler) GetLedgerHandler(ctx context.Context, ledgerID string) (httptransport.LedgerResponse, error) {
	ledger, err := h.Service.GetLedger(ctx, ledgerID)
	if err != nil {
		return httptransport.LedgerResponse{}, err
	}
	return httptransport.LedgerResponse{
		LedgerID:        ledger.LedgerID,
		Controller:      ledger.Controller,
		TotalSupply:     ledger.TotalSupply,
		AccessThreshold: ledger.AccessThreshold,
		BurnOnConsume:   ledger.BurnOnConsume,
		CreatedAt:       ledger.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// GetBalanceHandler godoc
// @Summary Get one identity's access-rights balance
// @Tags access-ledger
// @Produce json
// @Param ledger_id path string true "Ledger id"
// @Param identity path string true "Holder identity"
// @Success 200 {object} httptransport.BalanceResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/ledgers/{ledger_id}/balances/{identity} [get]
func (h Handler) GetBalanceHandler(ctx context.Context, ledgerID string, identity string) (httptransport.BalanceResponse, error) {
	ledger, err := h.Service.GetLedger(ctx, ledgerID)
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	normalized := application.NormalizeIdentity(identity)
	return httptransport.BalanceResponse{
		LedgerID:    ledger.LedgerID,
		Identity:    normalized,
		Balance:     ledger.BalanceOf(normalized),
		AccessUnits: ledger.AccessUnits(normalized),
		Consumed:    ledger.ConsumedOf(normalized),
		HasAccess:   ledger.HasAccess(normalized),
	}, nil
}

// TransferHandler godoc
// @Summary Transfer access-rights balance
// @Tags access-ledger
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (sender)"
// @Param ledger_id path string true "Ledger id"
// @Param request body httptransport.TransferRequest true "Transfer"
// @Success 200 {object} httptransport.AcceptedResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /v1/ledgers/{ledger_id}/transfer [post]
func (h Handler) TransferHandler(ctx context.Context, caller string, ledgerID string, req httptransport.TransferRequest) (httptransport.AcceptedResponse, error) {
	if err := h.Service.Transfer(ctx, ledgerID, caller, req.To, req.Amount); err != nil {
		return httptransport.AcceptedResponse{}, err
	}
	return httptransport.AcceptedResponse{LedgerID: ledgerID, Applied: true}, nil
}

// ApproveHandler godoc
// @Summary Approve a spender
// @Tags access-ledger
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity (owner)"
// @Param ledger_id path string true "Ledger id"
// @Param request body httptransport.ApproveRequest true "Approval"
// @Success 200 {object} httptransport.AcceptedResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/ledgers/{ledger_id}/approve [post]
func (h Handler) ApproveHandler(ctx context.Context, caller string, ledgerID string, req httptransport.ApproveRequest) (httptransport.AcceptedResponse, error) {
	if err := h.Service.Approve(ctx, ledgerID, caller, req.Spender, req.Amount); err != nil {
		return httptransport.AcceptedResponse{}, err
	}
	return httptransport.AcceptedResponse{LedgerID: ledgerID, Applied: true}, nil
}

// BurnHandler godoc
// @Summary Burn own balance
// @Tags access-ledger
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity"
// @Param ledger_id path string true "Ledger id"
// @Param request body httptransport.BurnRequest true "Burn"
// @Success 200 {object} httptransport.AcceptedResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /v1/ledgers/{ledger_id}/burn [post]
func (h Handler) BurnHandler(ctx context.Context, caller string, ledgerID string, req httptransport.BurnRequest) (httptransport.AcceptedResponse, error) {
	if err := h.Service.Burn(ctx, ledgerID, caller, req.Amount); err != nil {
		return httptransport.AcceptedResponse{}, err
	}
	return httptransport.AcceptedResponse{LedgerID: ledgerID, Applied: true}, nil
}

// ConsumeHandler godoc
// @Summary Consume access
// @Description Decrements the caller's consumable allotment; burns supply when the ledger is burn-on-consume.
// @Tags access-ledger
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity"
// @Param ledger_id path string true "Ledger id"
// @Param request body httptransport.ConsumeRequest true "Consumption"
// @Success 200 {object} httptransport.AcceptedResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /v1/ledgers/{ledger_id}/consume [post]
func (h Handler) ConsumeHandler(ctx context.Context, caller string, ledgerID string, req httptransport.ConsumeRequest) (httptransport.AcceptedResponse, error) {
	if err := h.Service.ConsumeAccess(ctx, ledgerID, caller, req.Amount); err != nil {
		return httptransport.AcceptedResponse{}, err
	}
	return httptransport.AcceptedResponse{LedgerID: ledgerID, Applied: true}, nil
}
