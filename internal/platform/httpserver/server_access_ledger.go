package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	ledgererrors "inflectiv/contexts/asset-core/access-ledger/domain/errors"
	ledgerhttp "inflectiv/contexts/asset-core/access-ledger/transport/http"
)

func (s *Server) registerLedgerRoutes() {
	s.mux.HandleFunc("GET /v1/ledgers/{ledger_id}", s.handleGetLedger)
	s.mux.HandleFunc("GET /v1/ledgers/{ledger_id}/balances/{identity}", s.handleGetLedgerBalance)
	s.mux.HandleFunc("POST /v1/ledgers/{ledger_id}/transfer", s.handleLedgerTransfer)
	s.mux.HandleFunc("POST /v1/ledgers/{ledger_id}/approve", s.handleLedgerApprove)
	s.mux.HandleFunc("POST /v1/ledgers/{ledger_id}/burn", s.handleLedgerBurn)
	s.mux.HandleFunc("POST /v1/ledgers/{ledger_id}/consume", s.handleLedgerConsume)
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{Code: code, Message: message})
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrLedgerNotFound):
		writeLedgerError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidIdentity),
		errors.Is(err, ledgererrors.ErrInvalidAmount):
		writeLedgerError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ledgererrors.ErrNotController),
		errors.Is(err, ledgererrors.ErrDeploymentUnauthorized):
		writeLedgerError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ledgererrors.ErrLedgerAttached):
		writeLedgerError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientBalance),
		errors.Is(err, ledgererrors.ErrInsufficientAllowance),
		errors.Is(err, ledgererrors.ErrSupplyOverflow):
		writeLedgerError(w, http.StatusUnprocessableEntity, "insufficient_units", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireLedgerCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := callerIdentity(r)
	if caller == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_wallet", "X-Wallet-Address header is required")
		return "", false
	}
	return caller, true
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	response, err := s.ledgers.Handler.GetLedgerHandler(r.Context(), r.PathValue("ledger_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetLedgerBalance(w http.ResponseWriter, r *http.Request) {
	response, err := s.ledgers.Handler.GetBalanceHandler(r.Context(), r.PathValue("ledger_id"), r.PathValue("identity"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleLedgerTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireLedgerCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.ledgers.Handler.TransferHandler(r.Context(), caller, r.PathValue("ledger_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleLedgerApprove(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireLedgerCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.ledgers.Handler.ApproveHandler(r.Context(), caller, r.PathValue("ledger_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleLedgerBurn(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireLedgerCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.BurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.ledgers.Handler.BurnHandler(r.Context(), caller, r.PathValue("ledger_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleLedgerConsume(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireLedgerCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.ConsumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.ledgers.Handler.ConsumeHandler(r.Context(), caller, r.PathValue("ledger_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
