package httpadapter

import (
	"context"
	"log/slog"

	application "inflectiv/contexts/asset-core/deployer-registry/application"
	httptransport "inflectiv/contexts/asset-core/deployer-registry/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// SetAuthorizationHandler godoc
// @Summary Set deployer authorization
// @Description Flips one deployer authorization entry. Registry owner only.
// @Tags deployer-registry
// @Accept json
// @Produce json
// @Param X-Wallet-Address header string true "Caller identity"
// @Param identity path string true "Deployer identity"
// @Param request body httptransport.SetAuthorizationRequest true "Authorization flag"
// @Success 200 {object} httptransport.AuthorizationResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /v1/deployers/{identity} [put]
func (h Handler) SetAuthorizationHandler(
	ctx context.Context,
	caller string,
	identity string,
	req httptransport.SetAuthorizationRequest,
) (httptransport.AuthorizationResponse, error) {
	if err := h.Service.SetAuthorization(ctx, caller, identity, req.Authorized); err != nil {
		return httptransport.AuthorizationResponse{}, err
	}
	return httptransport.AuthorizationResponse{
		Identity:   application.NormalizeIdentity(identity),
		Authorized: req.Authorized,
	}, nil
}

// GetAuthorizationHandler godoc
// @Summary Get deployer authorization
// @Description Returns whether one identity may provision access ledgers.
// @Tags deployer-registry
// @Produce json
// @Param identity path string true "Deployer identity"
// @Success 200 {object} httptransport.AuthorizationResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/deployers/{identity} [get]
func (h Handler) GetAuthorizationHandler(ctx context.Context, identity string) (httptransport.AuthorizationResponse, error) {
	authorized, err := h.Service.IsAuthorized(ctx, identity)
	if err != nil {
		return httptransport.AuthorizationResponse{}, err
	}
	return httptransport.AuthorizationResponse{
		Identity:   application.NormalizeIdentity(identity),
		Authorized: authorized,
	}, nil
}

// ListAuthorizedHandler godoc
// @Summary List authorized deployers
// @Tags deployer-registry
// @Produce json
// @Success 200 {object} httptransport.ListAuthorizedResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/deployers [get]
func (h Handler) ListAuthorizedHandler(ctx context.Context) (httptransport.ListAuthorizedResponse, error) {
	items, err := h.Service.ListAuthorized(ctx)
	if err != nil {
		return httptransport.ListAuthorizedResponse{}, err
	}
	response := httptransport.ListAuthorizedResponse{
		Items: make([]httptransport.AuthorizationResponse, 0, len(items)),
	}
	for _, item := range items {
		response.Items = append(response.Items, httptransport.AuthorizationResponse{
			Identity:   item.Identity,
			Authorized: item.Authorized,
		})
	}
	return response, nil
}
