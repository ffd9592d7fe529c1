package finboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// stubLookup answers every call with a canned response or error.
type stubLookup struct {
	resp    *LookupResponse
	err     error
	calls   int
	entered chan struct{} // when set, signals each call
	block   chan struct{} // when set, LookupPrices waits on it
}

func (s *stubLookup) LookupPrices(ctx context.Context, symbols []string) (*LookupResponse, error) {
	s.calls++
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func seedHoldings(store *MemoryStore, symbols ...string) {
	for _, s := range symbols {
		store.holdings[s] = Holding{Symbol: s, Name: s, Quantity: Q(1)}
	}
}

func TestSyncer_Sync(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedHoldings(store, "AAPL", "2330.TW", "NVDA")

	lookup := &stubLookup{resp: &LookupResponse{
		Text: "```json\n[{\"symbol\":\"aapl\",\"price\":225.3},{\"symbol\":\"2330\",\"price\":980.5}]\n```",
		Citations: []Source{
			{Title: "Yahoo Finance", URL: "https://finance.yahoo.com"},
			{Title: "", URL: "https://example.com"}, // dropped, no title
			{Title: "Untitled", URL: ""},            // dropped, no url
		},
	}}

	syncer := NewSyncer(store, lookup, testLog)
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)
	syncer.now = func() time.Time { return now }

	result, err := syncer.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if result.Updated != 2 {
		t.Errorf("Updated = %d, want 2", result.Updated)
	}
	if len(result.Sources) != 1 || result.Sources[0].Title != "Yahoo Finance" {
		t.Errorf("Sources = %v, want the single complete citation", result.Sources)
	}

	aapl, _, _ := store.Holding(ctx, "AAPL")
	if aapl.CurrentPrice != 225.3 {
		t.Errorf("AAPL price = %v, want 225.3", aapl.CurrentPrice)
	}
	if !aapl.LastUpdated.Equal(now) {
		t.Errorf("AAPL lastUpdated = %v, want %v", aapl.LastUpdated, now)
	}

	tw, _, _ := store.Holding(ctx, "2330.TW")
	if tw.CurrentPrice != 980.5 {
		t.Errorf("2330.TW price = %v, want 980.5", tw.CurrentPrice)
	}

	// Unmatched holding left untouched.
	nvda, _, _ := store.Holding(ctx, "NVDA")
	if nvda.CurrentPrice != 0 || !nvda.LastUpdated.IsZero() {
		t.Errorf("NVDA = %+v, want untouched", nvda)
	}
}

func TestSyncer_SyncLookupError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedHoldings(store, "AAPL")

	syncer := NewSyncer(store, &stubLookup{err: errors.New("boom")}, testLog)
	_, err := syncer.Sync(ctx)
	var lerr *LookupError
	if !errors.As(err, &lerr) {
		t.Fatalf("Sync() error = %v, want *LookupError", err)
	}

	// No state mutated.
	h, _, _ := store.Holding(ctx, "AAPL")
	if h.CurrentPrice != 0 {
		t.Errorf("AAPL price = %v, want untouched", h.CurrentPrice)
	}
}

func TestSyncer_SyncParseDegradation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedHoldings(store, "AAPL")

	syncer := NewSyncer(store, &stubLookup{resp: &LookupResponse{Text: "no structured data here"}}, testLog)
	result, err := syncer.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v, want degradation to zero updates", err)
	}
	if result.Updated != 0 {
		t.Errorf("Updated = %d, want 0", result.Updated)
	}
}

func TestSyncer_SyncNoHoldings(t *testing.T) {
	lookup := &stubLookup{}
	syncer := NewSyncer(NewMemoryStore(), lookup, testLog)

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if result.Updated != 0 {
		t.Errorf("Updated = %d, want 0", result.Updated)
	}
	if lookup.calls != 0 {
		t.Errorf("lookup called %d times for an empty portfolio, want 0", lookup.calls)
	}
}

func TestSyncer_SyncInFlightGuard(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedHoldings(store, "AAPL")

	block := make(chan struct{})
	lookup := &stubLookup{
		resp:    &LookupResponse{Text: "[]"},
		entered: make(chan struct{}, 2),
		block:   block,
	}
	syncer := NewSyncer(store, lookup, testLog)

	finished := make(chan error, 1)
	go func() {
		_, err := syncer.Sync(ctx)
		finished <- err
	}()

	// Wait for the first sync to take the guard and block in the lookup.
	<-lookup.entered

	if _, err := syncer.Sync(ctx); !errors.Is(err, ErrSyncInFlight) {
		t.Errorf("overlapping Sync() error = %v, want ErrSyncInFlight", err)
	}

	close(block)
	if err := <-finished; err != nil {
		t.Errorf("first Sync() error = %v", err)
	}

	// Guard released, a new sync is accepted.
	if _, err := syncer.Sync(ctx); err != nil {
		t.Errorf("Sync() after release error = %v", err)
	}
}

// failingStore wraps a store and fails holding writes for one symbol.
type failingStore struct {
	Store
	failSymbol string
}

func (s *failingStore) PutHolding(ctx context.Context, h Holding) error {
	if h.Symbol == s.failSymbol {
		return fmt.Errorf("disk full")
	}
	return s.Store.PutHolding(ctx, h)
}

func TestSyncer_ApplyQuotesPartialFailure(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedHoldings(store, "AAPL", "GOOG", "MSFT")

	failing := &failingStore{Store: store, failSymbol: "GOOG"}
	syncer := NewSyncer(failing, nil, testLog)

	result, err := syncer.ApplyQuotes(ctx, []Quote{
		{Symbol: "AAPL", Price: 1},
		{Symbol: "GOOG", Price: 2},
		{Symbol: "MSFT", Price: 3},
	})

	// The failed write is flagged, the rest of the batch still lands.
	var cerr *ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("ApplyQuotes() error = %v, want *ConsistencyError", err)
	}
	if cerr.Entity != "GOOG" {
		t.Errorf("ConsistencyError entity = %q, want GOOG", cerr.Entity)
	}
	if result.Updated != 2 {
		t.Errorf("Updated = %d, want 2", result.Updated)
	}

	msft, _, _ := store.Holding(ctx, "MSFT")
	if msft.CurrentPrice != 3 {
		t.Errorf("MSFT price = %v, want 3 (batch continued past the failure)", msft.CurrentPrice)
	}
}
