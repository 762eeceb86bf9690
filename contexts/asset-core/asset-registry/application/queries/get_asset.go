package queries

import (
	"context"
	"log/slog"
	"strings"

	"inflectiv/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "inflectiv/contexts/asset-core/asset-registry/domain/errors"
	"inflectiv/contexts/asset-core/asset-registry/ports"
)

type GetAssetUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (u GetAssetUseCase) Execute(ctx context.Context, handle uint64) (entities.AssetRecord, error) {
	return u.Repo.GetAsset(ctx, handle)
}

func (u GetAssetUseCase) ByExternalID(ctx context.Context, externalID string) (entities.AssetRecord, error) {
	asset, found, err := u.Repo.GetAssetByExternalID(ctx, strings.TrimSpace(externalID))
	if err != nil {
		return entities.AssetRecord{}, err
	}
	if !found {
		return entities.AssetRecord{}, domainerrors.ErrAssetNotFound
	}
	return asset, nil
}

type ListAssetsByOwnerUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (u ListAssetsByOwnerUseCase) Execute(ctx context.Context, owner string) ([]entities.AssetRecord, error) {
	return u.Repo.ListAssetsByOwner(ctx, strings.ToLower(strings.TrimSpace(owner)))
}
