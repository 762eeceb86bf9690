// Package payments provides an in-process settlement rail used for
// development and tests. Production deployments swap in an adapter for the
// real payment provider behind the same port.
package payments

import (
	"context"
	"sync"

	domainerrors "inflectiv/contexts/trading/marketplace/domain/errors"
	"inflectiv/contexts/trading/marketplace/ports"
)

// Rail is an account-balance ledger with atomic multi-recipient transfer.
// Applied splits are retained by payment id so a later compensation can
// reverse them exactly.
type Rail struct {
	mu       sync.Mutex
	balances map[string]uint64
	applied  map[string]ports.SplitPayment
}

func NewRail() *Rail {
	return &Rail{
		balances: make(map[string]uint64),
		applied:  make(map[string]ports.SplitPayment),
	}
}

// Deposit funds an account; bootstrap and tests use it to seed buyers.
func (r *Rail) Deposit(identity string, amount uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[identity] += amount
}

func (r *Rail) Balance(identity string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[identity]
}

func (r *Rail) Split(_ context.Context, payment ports.SplitPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total uint64
	for _, leg := range payment.Legs {
		updated := total + leg.Amount
		if updated < total {
			return domainerrors.ErrPurchaseOverflow
		}
		total = updated
	}
	if r.balances[payment.Payer] < total {
		return domainerrors.ErrInsufficientFunds
	}

	r.balances[payment.Payer] -= total
	for _, leg := range payment.Legs {
		r.balances[leg.To] += leg.Amount
	}
	r.applied[payment.PaymentID] = payment
	return nil
}

func (r *Rail) Reverse(_ context.Context, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, exists := r.applied[paymentID]
	if !exists {
		return nil
	}
	// A recipient may have spent part of a leg already. Check every leg
	// before touching balances so a reversal applies all-or-nothing.
	for _, leg := range payment.Legs {
		if r.balances[leg.To] < leg.Amount {
			return domainerrors.ErrInsufficientFunds
		}
	}
	for _, leg := range payment.Legs {
		r.balances[leg.To] -= leg.Amount
		r.balances[payment.Payer] += leg.Amount
	}
	delete(r.applied, paymentID)
	return nil
}
