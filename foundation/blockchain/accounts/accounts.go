// Package accounts maintains the mining rewards credited to each account.
// Balances only ever grow; transfers between accounts are not applied.
package accounts

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// Accounts manages the reward sheet of the accounts that mined blocks.
type Accounts struct {
	info map[wallet.Address]uint64
	mu   sync.RWMutex
}

// New constructs an empty reward sheet.
func New() *Accounts {
	return &Accounts{
		info: make(map[wallet.Address]uint64),
	}
}

// Credit adds the amount to the balance of the account.
func (act *Accounts) Credit(addr wallet.Address, amount uint64) {
	act.mu.Lock()
	defer act.mu.Unlock()

	act.info[addr] += amount
}

// Balance returns the balance of the account, zero when it was never
// credited.
func (act *Accounts) Balance(addr wallet.Address) uint64 {
	act.mu.RLock()
	defer act.mu.RUnlock()

	return act.info[addr]
}

// Copy makes a copy of the current balance of all accounts.
func (act *Accounts) Copy() map[wallet.Address]uint64 {
	act.mu.RLock()
	defer act.mu.RUnlock()

	accounts := make(map[wallet.Address]uint64, len(act.info))
	for addr, balance := range act.info {
		accounts[addr] = balance
	}
	return accounts
}
