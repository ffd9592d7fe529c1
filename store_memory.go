package finboard

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryStore is the ephemeral backend: all state lives in process memory,
// is mutated synchronously, and does not survive a restart. Subscribers are
// notified inline, so for this backend a read after a completed write is
// always current.
type MemoryStore struct {
	mu           sync.RWMutex
	accounts     map[string]Account
	transactions map[string]Transaction
	holdings     map[string]Holding

	subMu    sync.Mutex
	nextSub  int
	accSubs  map[int]func([]Account)
	txSubs   map[int]func([]Transaction)
	holdSubs map[int]func([]Holding)
}

// NewMemoryStore creates an empty ephemeral store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[string]Account),
		transactions: make(map[string]Transaction),
		holdings:     make(map[string]Holding),
		accSubs:      make(map[int]func([]Account)),
		txSubs:       make(map[int]func([]Transaction)),
		holdSubs:     make(map[int]func([]Holding)),
	}
}

func (s *MemoryStore) Accounts(context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountList(), nil
}

func (s *MemoryStore) Account(_ context.Context, id string) (Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	return a, ok, nil
}

func (s *MemoryStore) PutAccount(_ context.Context, a Account) error {
	s.mu.Lock()
	s.accounts[a.ID] = a
	list := s.accountList()
	s.mu.Unlock()
	s.notifyAccounts(list)
	return nil
}

func (s *MemoryStore) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.accounts, id)
	list := s.accountList()
	s.mu.Unlock()
	s.notifyAccounts(list)
	return nil
}

func (s *MemoryStore) SubscribeAccounts(fn func([]Account)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.accSubs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.accSubs, id)
	}
}

func (s *MemoryStore) Transactions(context.Context) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactionList(), nil
}

func (s *MemoryStore) Transaction(_ context.Context, id string) (Transaction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	return t, ok, nil
}

func (s *MemoryStore) PutTransaction(_ context.Context, t Transaction) error {
	s.mu.Lock()
	s.transactions[t.ID] = t
	list := s.transactionList()
	s.mu.Unlock()
	s.notifyTransactions(list)
	return nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.transactions, id)
	list := s.transactionList()
	s.mu.Unlock()
	s.notifyTransactions(list)
	return nil
}

func (s *MemoryStore) SubscribeTransactions(fn func([]Transaction)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.txSubs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.txSubs, id)
	}
}

func (s *MemoryStore) Holdings(context.Context) ([]Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.holdingList(), nil
}

func (s *MemoryStore) Holding(_ context.Context, symbol string) (Holding, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.holdings[symbol]
	return h, ok, nil
}

func (s *MemoryStore) PutHolding(_ context.Context, h Holding) error {
	s.mu.Lock()
	s.holdings[h.Symbol] = h
	list := s.holdingList()
	s.mu.Unlock()
	s.notifyHoldings(list)
	return nil
}

func (s *MemoryStore) DeleteHolding(_ context.Context, symbol string) error {
	s.mu.Lock()
	delete(s.holdings, symbol)
	list := s.holdingList()
	s.mu.Unlock()
	s.notifyHoldings(list)
	return nil
}

func (s *MemoryStore) SubscribeHoldings(fn func([]Holding)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.holdSubs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.holdSubs, id)
	}
}

// collection snapshots, sorted by natural key for stable iteration.

func (s *MemoryStore) accountList() []Account {
	ids := slices.Sorted(maps.Keys(s.accounts))
	list := make([]Account, 0, len(ids))
	for _, id := range ids {
		list = append(list, s.accounts[id])
	}
	return list
}

func (s *MemoryStore) transactionList() []Transaction {
	ids := slices.Sorted(maps.Keys(s.transactions))
	list := make([]Transaction, 0, len(ids))
	for _, id := range ids {
		list = append(list, s.transactions[id])
	}
	slices.SortStableFunc(list, func(a, b Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return list
}

func (s *MemoryStore) holdingList() []Holding {
	symbols := slices.Sorted(maps.Keys(s.holdings))
	list := make([]Holding, 0, len(symbols))
	for _, symbol := range symbols {
		list = append(list, s.holdings[symbol])
	}
	return list
}

func (s *MemoryStore) notifyAccounts(list []Account) {
	s.subMu.Lock()
	subs := slices.Collect(maps.Values(s.accSubs))
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(list)
	}
}

func (s *MemoryStore) notifyTransactions(list []Transaction) {
	s.subMu.Lock()
	subs := slices.Collect(maps.Values(s.txSubs))
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(list)
	}
}

func (s *MemoryStore) notifyHoldings(list []Holding) {
	s.subMu.Lock()
	subs := slices.Collect(maps.Values(s.holdSubs))
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(list)
	}
}
