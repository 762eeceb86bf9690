// Package accessledger contains the Inflectiv access-rights ledger: one
// fungible balance ledger per registered data asset, plus the factory that
// provisions ledgers behind the deployer authorization gate.
//
// Balances are tracked in base units (AccessUnitSize base units per
// user-facing access unit) and all arithmetic stays in the integer domain.
package accessledger
