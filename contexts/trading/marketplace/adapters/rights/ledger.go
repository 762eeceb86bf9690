package rightsadapter

import (
	"context"
	"math"

	ledgerapp "inflectiv/contexts/asset-core/access-ledger/application"
	ledgerentities "inflectiv/contexts/asset-core/access-ledger/domain/entities"
	domainerrors "inflectiv/contexts/trading/marketplace/domain/errors"
)

// LedgerRights adapts the access-ledger module to the marketplace's
// AccessRights port, scaling whole access units to ledger base units.
type LedgerRights struct {
	Ledgers ledgerapp.Service
}

func (l LedgerRights) TransferUnits(ctx context.Context, ledgerID string, spender string, from string, to string, unitCount uint64) error {
	if unitCount > math.MaxUint64/ledgerentities.AccessUnitSize {
		return domainerrors.ErrPurchaseOverflow
	}
	return l.Ledgers.TransferFrom(ctx, ledgerID, spender, from, to, unitCount*ledgerentities.AccessUnitSize)
}

func (l LedgerRights) ReturnUnits(ctx context.Context, ledgerID string, from string, to string, unitCount uint64) error {
	if unitCount > math.MaxUint64/ledgerentities.AccessUnitSize {
		return domainerrors.ErrPurchaseOverflow
	}
	return l.Ledgers.Transfer(ctx, ledgerID, from, to, unitCount*ledgerentities.AccessUnitSize)
}

func (l LedgerRights) UnitBalance(ctx context.Context, ledgerID string, identity string) (uint64, error) {
	balance, err := l.Ledgers.BalanceOf(ctx, ledgerID, identity)
	if err != nil {
		return 0, err
	}
	return balance / ledgerentities.AccessUnitSize, nil
}
