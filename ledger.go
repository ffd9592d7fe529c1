package finboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Ledger applies and reverts signed transactions against account balances,
// writing both through the backing store.
//
// Per transaction the state machine is apply -> revert, revert being
// terminal: a transaction exists in the store exactly while it is applied.
// There is no update operation; edits are modeled as revert then apply.
//
// Apply and Revert hold a per-account lock so concurrent calls touching the
// same account cannot interleave their balance read and write.
type Ledger struct {
	store Store
	log   zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // keyed by account id
}

// NewLedger creates a ledger operating through the given store.
func NewLedger(store Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) accountLock(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}

// Apply validates tx, mutates the target account's balance by its signed
// effect, and persists the transaction record. It returns the transaction as
// stored (with its id and date filled in when absent).
//
// A precondition failure is a *ValidationError and nothing is mutated. If the
// transaction record write fails after the balance write succeeded, the
// ledger is left inconsistent: the hazard is logged with the account id and
// the attempted delta, and surfaced as a *ConsistencyError.
func (l *Ledger) Apply(ctx context.Context, tx Transaction) (Transaction, error) {
	if !tx.Amount.IsPositive() {
		return tx, validationf("transaction amount must be positive, got %s", tx.Amount)
	}
	if tx.Category == "" {
		return tx, validationf("transaction category is missing")
	}

	lock := l.accountLock(tx.AccountID)
	lock.Lock()
	defer lock.Unlock()

	account, ok, err := l.store.Account(ctx, tx.AccountID)
	if err != nil {
		return tx, fmt.Errorf("could not read account %q: %w", tx.AccountID, err)
	}
	if !ok {
		return tx, validationf("account %q does not exist", tx.AccountID)
	}
	if c := tx.Amount.Currency(); c != "" && c != account.Currency {
		return tx, validationf("transaction currency %q does not match account currency %q", c, account.Currency)
	}

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	if _, applied, err := l.store.Transaction(ctx, tx.ID); err != nil {
		return tx, fmt.Errorf("could not read transaction %q: %w", tx.ID, err)
	} else if applied {
		return tx, validationf("transaction %q is already applied", tx.ID)
	}

	delta := tx.Signed()
	account.Balance = account.Balance.Add(delta)
	if err := l.store.PutAccount(ctx, account); err != nil {
		// First write failed, nothing is mutated.
		return tx, fmt.Errorf("could not update balance of account %q: %w", account.ID, err)
	}
	if err := l.store.PutTransaction(ctx, tx); err != nil {
		l.hazard(account.ID, delta.SignedString(), err)
		return tx, &ConsistencyError{Entity: account.ID, Delta: delta.SignedString(), Err: err}
	}

	l.log.Debug().
		Str("tx", tx.ID).
		Str("account", account.ID).
		Str("delta", delta.SignedString()).
		Msg("transaction applied")
	return tx, nil
}

// Revert undoes a previously applied transaction: it applies the exact
// inverse balance delta and deletes the transaction record. Reverting a
// transaction that is not currently applied (never applied, or already
// reverted) fails with *InvalidStateError.
//
// Revert(Apply(tx)) restores the account balance to its pre-apply value
// exactly, whatever the transaction type.
func (l *Ledger) Revert(ctx context.Context, txID string) error {
	tx, ok, err := l.store.Transaction(ctx, txID)
	if err != nil {
		return fmt.Errorf("could not read transaction %q: %w", txID, err)
	}
	if !ok {
		return &InvalidStateError{TxID: txID}
	}

	lock := l.accountLock(tx.AccountID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock, the record may have been reverted meanwhile.
	tx, ok, err = l.store.Transaction(ctx, txID)
	if err != nil {
		return fmt.Errorf("could not read transaction %q: %w", txID, err)
	}
	if !ok {
		return &InvalidStateError{TxID: txID}
	}

	account, ok, err := l.store.Account(ctx, tx.AccountID)
	if err != nil {
		return fmt.Errorf("could not read account %q: %w", tx.AccountID, err)
	}
	if !ok {
		return fmt.Errorf("account %q referenced by transaction %q does not exist", tx.AccountID, txID)
	}

	delta := tx.Signed().Neg()
	account.Balance = account.Balance.Add(delta)
	if err := l.store.PutAccount(ctx, account); err != nil {
		return fmt.Errorf("could not update balance of account %q: %w", account.ID, err)
	}
	if err := l.store.DeleteTransaction(ctx, txID); err != nil {
		l.hazard(account.ID, delta.SignedString(), err)
		return &ConsistencyError{Entity: account.ID, Delta: delta.SignedString(), Err: err}
	}

	l.log.Debug().
		Str("tx", txID).
		Str("account", account.ID).
		Str("delta", delta.SignedString()).
		Msg("transaction reverted")
	return nil
}

// CreateAccount stores a new account with its balance set to the opening
// balance, assigning an id when the caller supplied none.
func (l *Ledger) CreateAccount(ctx context.Context, a Account) (Account, error) {
	if a.Name == "" {
		return a, validationf("account name is missing")
	}
	if a.Currency == "" {
		return a, validationf("account currency is missing")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.OpeningBalance = a.OpeningBalance.in(a.Currency)
	a.Balance = a.OpeningBalance
	if err := l.store.PutAccount(ctx, a); err != nil {
		return a, fmt.Errorf("could not store account %q: %w", a.ID, err)
	}
	return a, nil
}

// DeleteAccount removes an account. Deletion is forbidden while transactions
// still reference the account; revert them first.
func (l *Ledger) DeleteAccount(ctx context.Context, id string) error {
	lock := l.accountLock(id)
	lock.Lock()
	defer lock.Unlock()

	_, ok, err := l.store.Account(ctx, id)
	if err != nil {
		return fmt.Errorf("could not read account %q: %w", id, err)
	}
	if !ok {
		return validationf("account %q does not exist", id)
	}

	txs, err := l.store.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("could not list transactions: %w", err)
	}
	for _, tx := range txs {
		if tx.AccountID == id {
			return validationf("account %q still has transactions, revert them first", id)
		}
	}
	return l.store.DeleteAccount(ctx, id)
}

// CheckIntegrity recomputes every account balance from its opening balance
// and the signed effects of the transactions referencing it, and reports the
// first drift found. It is the reconciliation path after a consistency
// hazard: the store is the source of truth, not in-memory deltas.
func (l *Ledger) CheckIntegrity(ctx context.Context) error {
	accounts, err := l.store.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("could not list accounts: %w", err)
	}
	txs, err := l.store.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("could not list transactions: %w", err)
	}

	sums := make(map[string]Money, len(accounts))
	for _, tx := range txs {
		sums[tx.AccountID] = sums[tx.AccountID].Add(tx.Signed())
	}

	for _, a := range accounts {
		want := a.OpeningBalance.Add(sums[a.ID])
		if !a.Balance.Equal(want) {
			l.hazard(a.ID, want.Sub(a.Balance).SignedString(), nil)
			return fmt.Errorf("account %q balance is %s, expected %s", a.ID, a.Balance, want)
		}
	}
	return nil
}

// hazard logs a consistency hazard with enough detail to support manual
// reconciliation.
func (l *Ledger) hazard(entity, delta string, cause error) {
	l.log.Error().
		Str("entity", entity).
		Str("delta", delta).
		AnErr("cause", cause).
		Msg("ledger consistency hazard")
}
