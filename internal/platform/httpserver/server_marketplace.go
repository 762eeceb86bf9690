package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	ledgererrors "inflectiv/contexts/asset-core/access-ledger/domain/errors"
	marketerrors "inflectiv/contexts/trading/marketplace/domain/errors"
	markethttp "inflectiv/contexts/trading/marketplace/transport/http"
)

func (s *Server) registerMarketplaceRoutes() {
	s.mux.HandleFunc("POST /v1/listings", s.handleCreateListing)
	s.mux.HandleFunc("GET /v1/listings", s.handleListListings)
	s.mux.HandleFunc("GET /v1/listings/{listing_id}", s.handleGetListing)
	s.mux.HandleFunc("PUT /v1/listings/{listing_id}", s.handleUpdateListing)
	s.mux.HandleFunc("DELETE /v1/listings/{listing_id}", s.handleCancelListing)
	s.mux.HandleFunc("GET /v1/listings/{listing_id}/quote", s.handlePurchaseQuote)
	s.mux.HandleFunc("POST /v1/listings/{listing_id}/purchase", s.handlePurchase)
	s.mux.HandleFunc("GET /v1/assets/{handle}/listing", s.handleActiveListingForAsset)
}

func writeMarketplaceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, markethttp.ErrorResponse{Code: code, Message: message})
}

func writeMarketplaceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, marketerrors.ErrListingNotFound):
		writeMarketplaceError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, marketerrors.ErrInvalidListing),
		errors.Is(err, marketerrors.ErrInvalidPurchase):
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, marketerrors.ErrNotDatasetOwner),
		errors.Is(err, marketerrors.ErrNotSeller):
		writeMarketplaceError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, marketerrors.ErrListingAlreadyActive):
		writeMarketplaceError(w, http.StatusConflict, "already_listed", err.Error())
	case errors.Is(err, marketerrors.ErrListingNotActive),
		errors.Is(err, marketerrors.ErrAssetNotTradable):
		writeMarketplaceError(w, http.StatusConflict, "not_tradable", err.Error())
	case errors.Is(err, marketerrors.ErrPriceTooLow),
		errors.Is(err, marketerrors.ErrIncorrectPayment),
		errors.Is(err, marketerrors.ErrPurchaseOverflow):
		writeMarketplaceError(w, http.StatusUnprocessableEntity, "payment_rejected", err.Error())
	case errors.Is(err, marketerrors.ErrInsufficientAvailableUnits),
		errors.Is(err, marketerrors.ErrInsufficientFunds),
		errors.Is(err, ledgererrors.ErrInsufficientBalance),
		errors.Is(err, ledgererrors.ErrInsufficientAllowance):
		writeMarketplaceError(w, http.StatusUnprocessableEntity, "insufficient_units", err.Error())
	default:
		writeMarketplaceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireMarketplaceCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := callerIdentity(r)
	if caller == "" {
		writeMarketplaceError(w, http.StatusUnauthorized, "missing_wallet", "X-Wallet-Address header is required")
		return "", false
	}
	return caller, true
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMarketplaceCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.market.Handler.CreateListingHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, response)
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	response, err := s.market.Handler.ListListingsHandler(r.Context(), activeOnly)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	response, err := s.market.Handler.GetListingHandler(r.Context(), r.PathValue("listing_id"))
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleActiveListingForAsset(w http.ResponseWriter, r *http.Request) {
	handle, err := strconv.ParseUint(r.PathValue("handle"), 10, 64)
	if err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_handle", "asset handle must be a positive integer")
		return
	}
	response, err := s.market.Handler.ActiveListingForAssetHandler(r.Context(), handle)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMarketplaceCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.market.Handler.UpdateListingHandler(r.Context(), caller, r.PathValue("listing_id"), req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMarketplaceCaller(w, r)
	if !ok {
		return
	}
	response, err := s.market.Handler.CancelListingHandler(r.Context(), caller, r.PathValue("listing_id"))
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handlePurchaseQuote(w http.ResponseWriter, r *http.Request) {
	unitCount, err := strconv.ParseUint(r.URL.Query().Get("unit_count"), 10, 64)
	if err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_unit_count", "unit_count query parameter must be a positive integer")
		return
	}
	response, err := s.market.Handler.CalculatePurchaseHandler(r.Context(), r.PathValue("listing_id"), unitCount)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMarketplaceCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.market.Handler.PurchaseHandler(r.Context(), caller, r.PathValue("listing_id"), req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
