package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	earningserrors "inflectiv/contexts/trading/earnings-service/domain/errors"
	earningshttp "inflectiv/contexts/trading/earnings-service/transport/http"
)

func (s *Server) registerEarningsRoutes() {
	s.mux.HandleFunc("GET /v1/earnings/{identity}", s.handleEarningsSummary)
	s.mux.HandleFunc("GET /v1/earnings/{identity}/transactions", s.handleEarningsTransactions)
	s.mux.HandleFunc("GET /v1/earnings/{identity}/top-assets", s.handleEarningsTopAssets)
}

func writeEarningsError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, earningshttp.ErrorResponse{Code: code, Message: message})
}

func writeEarningsDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, earningserrors.ErrInvalidIdentity),
		errors.Is(err, earningserrors.ErrInvalidTransaction):
		writeEarningsError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeEarningsError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleEarningsSummary(w http.ResponseWriter, r *http.Request) {
	response, err := s.earnings.Handler.SummaryHandler(r.Context(), r.PathValue("identity"))
	if err != nil {
		writeEarningsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleEarningsTopAssets(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeEarningsError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	response, err := s.earnings.Handler.TopAssetsHandler(r.Context(), r.PathValue("identity"), limit)
	if err != nil {
		writeEarningsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleEarningsTransactions(w http.ResponseWriter, r *http.Request) {
	response, err := s.earnings.Handler.ListTransactionsHandler(r.Context(), r.PathValue("identity"))
	if err != nil {
		writeEarningsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
