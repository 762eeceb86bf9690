package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	ledgererrors "inflectiv/contexts/asset-core/access-ledger/domain/errors"
	registryerrors "inflectiv/contexts/asset-core/asset-registry/domain/errors"
	registryhttp "inflectiv/contexts/asset-core/asset-registry/transport/http"
)

func (s *Server) registerAssetRoutes() {
	s.mux.HandleFunc("POST /v1/assets", s.handleRegisterAsset)
	s.mux.HandleFunc("GET /v1/assets", s.handleListAssets)
	s.mux.HandleFunc("GET /v1/assets/lookup", s.handleLookupAsset)
	s.mux.HandleFunc("GET /v1/assets/{handle}", s.handleGetAsset)
	s.mux.HandleFunc("POST /v1/assets/{handle}/mint", s.handleMintAssetUnits)
	s.mux.HandleFunc("PUT /v1/assets/{handle}/royalty", s.handleSetAssetRoyalty)
	s.mux.HandleFunc("GET /v1/assets/{handle}/royalty", s.handleAssetRoyaltyQuote)
	s.mux.HandleFunc("PUT /v1/assets/{handle}/status", s.handleSetAssetStatus)
	s.mux.HandleFunc("POST /v1/assets/{handle}/transfer", s.handleTransferAssetOwnership)
	s.mux.HandleFunc("GET /v1/assets/{handle}/access/{identity}", s.handleCheckAssetAccess)
}

func writeAssetError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{Code: code, Message: message})
}

func writeAssetDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrAssetNotFound),
		errors.Is(err, ledgererrors.ErrLedgerNotFound):
		writeAssetError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidAsset),
		errors.Is(err, registryerrors.ErrInvalidRoyaltyRate),
		errors.Is(err, ledgererrors.ErrInvalidIdentity),
		errors.Is(err, ledgererrors.ErrInvalidAmount):
		writeAssetError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, registryerrors.ErrNotOwner),
		errors.Is(err, ledgererrors.ErrNotController),
		errors.Is(err, ledgererrors.ErrDeploymentUnauthorized):
		writeAssetError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, registryerrors.ErrAssetAlreadyRegistered):
		writeAssetError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, ledgererrors.ErrSupplyOverflow):
		writeAssetError(w, http.StatusUnprocessableEntity, "supply_overflow", err.Error())
	default:
		writeAssetError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireAssetCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := callerIdentity(r)
	if caller == "" {
		writeAssetError(w, http.StatusUnauthorized, "missing_wallet", "X-Wallet-Address header is required")
		return "", false
	}
	return caller, true
}

func assetHandle(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	handle, err := strconv.ParseUint(r.PathValue("handle"), 10, 64)
	if err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_handle", "asset handle must be a positive integer")
		return 0, false
	}
	return handle, true
}

func (s *Server) handleRegisterAsset(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAssetCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.RegisterAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.assets.Handler.RegisterAssetHandler(r.Context(), caller, req)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, response)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	response, err := s.assets.Handler.ListAssetsHandler(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleLookupAsset(w http.ResponseWriter, r *http.Request) {
	externalID := r.URL.Query().Get("external_id")
	if externalID == "" {
		writeAssetError(w, http.StatusBadRequest, "missing_external_id", "external_id query parameter is required")
		return
	}
	response, err := s.assets.Handler.GetAssetByExternalIDHandler(r.Context(), externalID)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	handle, ok := assetHandle(w, r)
	if !ok {
		return
	}
	response, err := s.assets.Handler.GetAssetHandler(r.Context(), handle)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleMintAssetUnits(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAssetCaller(w, r)
	if !ok {
		return
	}
	handle, ok := assetHandle(w, r)
	if !ok {
		return
	}
	var req registryhttp.MintUnitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.assets.Handler.MintUnitsHandler(r.Context(), caller, handle, req)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleSetAssetRoyalty(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAssetCaller(w, r)
	if !ok {
		return
	}
	handle, ok := assetHandle(w, r)
	if !ok {
		return
	}
	var req registryhttp.SetRoyaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.assets.Handler.SetRoyaltyHandler(r.Context(), caller, handle, req)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleAssetRoyaltyQuote(w http.ResponseWriter, r *http.Request) {
	handle, ok := assetHandle(w, r)
	if !ok {
		return
	}
	salePrice, err := strconv.ParseUint(r.URL.Query().Get("sale_price"), 10, 64)
	if err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_sale_price", "sale_price query parameter must be a positive integer")
		return
	}
	response, err := s.assets.Handler.RoyaltyInfoHandler(r.Context(), handle, salePrice)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleSetAssetStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAssetCaller(w, r)
	if !ok {
		return
	}
	handle, ok := assetHandle(w, r)
	if !ok {
		return
	}
	var req registryhttp.SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.assets.Handler.SetActiveHandler(r.Context(), caller, handle, req)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleTransferAssetOwnership(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAssetCaller(w, r)
	if !ok {
		return
	}
	handle, ok := assetHandle(w, r)
	if !ok {
		return
	}
	var req registryhttp.TransferOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.assets.Handler.TransferOwnershipHandler(r.Context(), caller, handle, req)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleCheckAssetAccess(w http.ResponseWriter, r *http.Request) {
	handle, ok := assetHandle(w, r)
	if !ok {
		return
	}
	response, err := s.assets.Handler.CheckAccessHandler(r.Context(), handle, r.PathValue("identity"))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
