package finboard

import "github.com/rs/zerolog"

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

var testLog = zerolog.Nop()

// newTestLedger builds a ledger over a fresh ephemeral store seeded with the
// given accounts.
func newTestLedger(accounts ...Account) (*Ledger, *MemoryStore) {
	store := NewMemoryStore()
	ledger := NewLedger(store, testLog)
	for _, a := range accounts {
		a.Balance = a.OpeningBalance
		store.accounts[a.ID] = a
	}
	return ledger, store
}
