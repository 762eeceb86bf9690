package entities

import (
	"math"
	"time"

	domainerrors "inflectiv/contexts/asset-core/access-ledger/domain/errors"
)

// AccessUnitSize is the number of base units in one user-facing access unit.
// All balances, supplies and transfer amounts are base units.
const AccessUnitSize uint64 = 1_000_000

// DefaultAccessThreshold grants access for any positive balance.
const DefaultAccessThreshold uint64 = 1

// Ledger is the per-asset fungible access-rights aggregate.
//
// Invariant: the sum of Balances equals TotalSupply after every mutation.
// Consumed never exceeds the identity's current balance at consumption time
// and is advisory when BurnOnConsume is false.
type Ledger struct {
	LedgerID        string
	Controller      string
	TotalSupply     uint64
	AccessThreshold uint64
	BurnOnConsume   bool
	Attached        bool
	CreatedAt       time.Time
	Balances        map[string]uint64
	Allowances      map[string]map[string]uint64
	Consumed        map[string]uint64
}

// NewLedger mints initialSupply to the controller. accessThreshold of zero
// falls back to DefaultAccessThreshold.
func NewLedger(
	ledgerID string,
	controller string,
	initialSupply uint64,
	accessThreshold uint64,
	burnOnConsume bool,
	createdAt time.Time,
) (Ledger, error) {
	if ledgerID == "" || controller == "" {
		return Ledger{}, domainerrors.ErrInvalidIdentity
	}
	if accessThreshold == 0 {
		accessThreshold = DefaultAccessThreshold
	}
	ledger := Ledger{
		LedgerID:        ledgerID,
		Controller:      controller,
		TotalSupply:     initialSupply,
		AccessThreshold: accessThreshold,
		BurnOnConsume:   burnOnConsume,
		CreatedAt:       createdAt.UTC(),
		Balances:        make(map[string]uint64),
		Allowances:      make(map[string]map[string]uint64),
		Consumed:        make(map[string]uint64),
	}
	if initialSupply > 0 {
		ledger.Balances[controller] = initialSupply
	}
	return ledger, nil
}

func (l *Ledger) BalanceOf(identity string) uint64 {
	return l.Balances[identity]
}

func (l *Ledger) HasAccess(identity string) bool {
	return l.Balances[identity] >= l.AccessThreshold
}

// AccessUnits is the balance expressed in whole consumable units.
func (l *Ledger) AccessUnits(identity string) uint64 {
	return l.Balances[identity] / AccessUnitSize
}

func (l *Ledger) ConsumedOf(identity string) uint64 {
	return l.Consumed[identity]
}

func (l *Ledger) Allowance(owner string, spender string) uint64 {
	return l.Allowances[owner][spender]
}

func (l *Ledger) Transfer(from string, to string, amount uint64) error {
	if from == "" || to == "" {
		return domainerrors.ErrInvalidIdentity
	}
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}
	if l.Balances[from] < amount {
		return domainerrors.ErrInsufficientBalance
	}
	l.debit(from, amount)
	l.Balances[to] += amount
	return nil
}

func (l *Ledger) Approve(owner string, spender string, amount uint64) error {
	if owner == "" || spender == "" {
		return domainerrors.ErrInvalidIdentity
	}
	grants := l.Allowances[owner]
	if grants == nil {
		grants = make(map[string]uint64)
		l.Allowances[owner] = grants
	}
	grants[spender] = amount
	return nil
}

// TransferFrom spends the spender's allowance from the owner's balance. The
// allowance is decremented by exactly the transferred amount.
func (l *Ledger) TransferFrom(spender string, from string, to string, amount uint64) error {
	if spender == "" {
		return domainerrors.ErrInvalidIdentity
	}
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}
	allowance := l.Allowances[from][spender]
	if allowance < amount {
		return domainerrors.ErrInsufficientAllowance
	}
	if err := l.Transfer(from, to, amount); err != nil {
		return err
	}
	l.Allowances[from][spender] = allowance - amount
	return nil
}

func (l *Ledger) Burn(caller string, amount uint64) error {
	if caller == "" {
		return domainerrors.ErrInvalidIdentity
	}
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}
	if l.Balances[caller] < amount {
		return domainerrors.ErrInsufficientBalance
	}
	l.debit(caller, amount)
	l.TotalSupply -= amount
	return nil
}

func (l *Ledger) Mint(to string, amount uint64) error {
	if to == "" {
		return domainerrors.ErrInvalidIdentity
	}
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}
	if l.TotalSupply > math.MaxUint64-amount {
		return domainerrors.ErrSupplyOverflow
	}
	l.TotalSupply += amount
	l.Balances[to] += amount
	return nil
}

// Consume decrements the caller's consumable allotment. With BurnOnConsume
// the amount is burned from balance and supply; otherwise balance and supply
// stay untouched and a per-identity consumed meter advances, bounded by the
// current balance.
func (l *Ledger) Consume(caller string, amount uint64) error {
	if caller == "" {
		return domainerrors.ErrInvalidIdentity
	}
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}
	if l.BurnOnConsume {
		return l.Burn(caller, amount)
	}
	balance := l.Balances[caller]
	consumed := l.Consumed[caller]
	if balance < consumed || balance-consumed < amount {
		return domainerrors.ErrInsufficientBalance
	}
	l.Consumed[caller] = consumed + amount
	return nil
}

// Clone returns a deep copy so repository snapshots never alias live state.
func (l Ledger) Clone() Ledger {
	clone := l
	clone.Balances = make(map[string]uint64, len(l.Balances))
	for identity, balance := range l.Balances {
		clone.Balances[identity] = balance
	}
	clone.Consumed = make(map[string]uint64, len(l.Consumed))
	for identity, consumed := range l.Consumed {
		clone.Consumed[identity] = consumed
	}
	clone.Allowances = make(map[string]map[string]uint64, len(l.Allowances))
	for owner, grants := range l.Allowances {
		copied := make(map[string]uint64, len(grants))
		for spender, amount := range grants {
			copied[spender] = amount
		}
		clone.Allowances[owner] = copied
	}
	return clone
}

func (l *Ledger) debit(identity string, amount uint64) {
	remaining := l.Balances[identity] - amount
	if remaining == 0 {
		delete(l.Balances, identity)
		return
	}
	l.Balances[identity] = remaining
}
