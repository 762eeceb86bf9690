package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	deployererrors "inflectiv/contexts/asset-core/deployer-registry/domain/errors"
	deployerhttp "inflectiv/contexts/asset-core/deployer-registry/transport/http"
)

func (s *Server) registerDeployerRoutes() {
	s.mux.HandleFunc("GET /v1/deployers", s.handleListAuthorizedDeployers)
	s.mux.HandleFunc("GET /v1/deployers/{identity}", s.handleGetDeployerAuthorization)
	s.mux.HandleFunc("PUT /v1/deployers/{identity}", s.handleSetDeployerAuthorization)
}

func writeDeployerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, deployerhttp.ErrorResponse{Code: code, Message: message})
}

func writeDeployerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deployererrors.ErrInvalidIdentity):
		writeDeployerError(w, http.StatusBadRequest, "invalid_identity", err.Error())
	case errors.Is(err, deployererrors.ErrUnauthorized):
		writeDeployerError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeDeployerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireDeployerCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := callerIdentity(r)
	if caller == "" {
		writeDeployerError(w, http.StatusUnauthorized, "missing_wallet", "X-Wallet-Address header is required")
		return "", false
	}
	return caller, true
}

func (s *Server) handleListAuthorizedDeployers(w http.ResponseWriter, r *http.Request) {
	response, err := s.deployers.Handler.ListAuthorizedHandler(r.Context())
	if err != nil {
		writeDeployerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetDeployerAuthorization(w http.ResponseWriter, r *http.Request) {
	response, err := s.deployers.Handler.GetAuthorizationHandler(r.Context(), r.PathValue("identity"))
	if err != nil {
		writeDeployerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleSetDeployerAuthorization(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireDeployerCaller(w, r)
	if !ok {
		return
	}
	var req deployerhttp.SetAuthorizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDeployerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	response, err := s.deployers.Handler.SetAuthorizationHandler(r.Context(), caller, r.PathValue("identity"), req)
	if err != nil {
		writeDeployerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
