package finboard

import "context"

// Store is the single contract the core operates through, regardless of
// which backing store is active. Two backends implement it: MemoryStore
// (ephemeral, in-process) and docstore.Store (persisted documents). The
// backend is selected once at startup and injected; callers never branch on
// which one they got.
//
// Guarantees required from every implementation:
//   - a Put completed without error is visible to the next read;
//   - a Delete removes the entity from all subsequent reads;
//   - subscriptions deliver the current full collection after each change,
//     with no delta semantics. Notifications are not guaranteed to be
//     strictly ordered with locally-issued writes: for a persisted backend a
//     read through a subscription may lag a just-completed write until the
//     next notification arrives.
type Store interface {
	Accounts(ctx context.Context) ([]Account, error)
	Account(ctx context.Context, id string) (Account, bool, error)
	PutAccount(ctx context.Context, a Account) error
	DeleteAccount(ctx context.Context, id string) error
	SubscribeAccounts(fn func([]Account)) (cancel func())

	Transactions(ctx context.Context) ([]Transaction, error)
	Transaction(ctx context.Context, id string) (Transaction, bool, error)
	PutTransaction(ctx context.Context, t Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	SubscribeTransactions(fn func([]Transaction)) (cancel func())

	Holdings(ctx context.Context) ([]Holding, error)
	Holding(ctx context.Context, symbol string) (Holding, bool, error)
	PutHolding(ctx context.Context, h Holding) error
	DeleteHolding(ctx context.Context, symbol string) error
	SubscribeHoldings(fn func([]Holding)) (cancel func())
}
