package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "inflectiv/contexts/asset-core/deployer-registry/domain/errors"
	"inflectiv/contexts/asset-core/deployer-registry/ports"
)

// Service is the deployer authorization gate. Only AdminOwner may flip
// entries; reads are open to any caller.
type Service struct {
	AdminOwner string
	Repo       ports.Repository
	Logger     *slog.Logger
}

func (s Service) IsAuthorized(ctx context.Context, identity string) (bool, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return false, domainerrors.ErrInvalidIdentity
	}
	return s.Repo.GetAuthorization(ctx, identity)
}

func (s Service) SetAuthorization(ctx context.Context, caller string, identity string, authorized bool) error {
	logger := ResolveLogger(s.Logger)
	caller = NormalizeIdentity(caller)
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return domainerrors.ErrInvalidIdentity
	}
	if caller == "" || caller != NormalizeIdentity(s.AdminOwner) {
		logger.Warn("deployer authorization change rejected",
			"event", "deployer_authorization_rejected",
			"module", "asset-core/deployer-registry",
			"layer", "application",
			"caller", caller,
			"identity", identity,
		)
		return domainerrors.ErrUnauthorized
	}

	if err := s.Repo.PutAuthorization(ctx, identity, authorized); err != nil {
		return err
	}

	logger.Info("deployer authorization updated",
		"event", "deployer_authorization_updated",
		"module", "asset-core/deployer-registry",
		"layer", "application",
		"identity", identity,
		"authorized", authorized,
	)
	return nil
}

func (s Service) ListAuthorized(ctx context.Context) ([]ports.Authorization, error) {
	return s.Repo.ListAuthorized(ctx)
}

// NormalizeIdentity canonicalizes wallet-style identities so lookups are
// case-insensitive across the whole platform.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
