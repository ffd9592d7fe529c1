package finboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PriceLookup is the external "find me this price" service. The response is
// free-form text expected to contain a JSON array of quotes, plus whatever
// citations the service grounded its answer on. No schema is enforced by the
// service; ParseQuotes defines how the core tolerates that.
type PriceLookup interface {
	LookupPrices(ctx context.Context, symbols []string) (*LookupResponse, error)
}

// LookupResponse is the raw answer of a price lookup call.
type LookupResponse struct {
	Text      string
	Citations []Source // as returned, possibly missing titles or URLs
}

// Adviser is the external advice service: a short financial summary in,
// free-form text out, returned verbatim to the caller.
type Adviser interface {
	Advise(ctx context.Context, summary string) (string, error)
}

// SyncResult is the outcome of one price sync.
type SyncResult struct {
	Holdings []Holding `json:"holdings"` // full holding list, possibly partially updated
	Sources  []Source  `json:"sources"`
	Updated  int       `json:"updated"`
}

// Syncer orchestrates one price refresh: gather held symbols, call the
// lookup service once, parse its answer, match quotes to holdings, and write
// matched updates through the store.
//
// A failed lookup call is propagated as *LookupError with no state mutated.
// Parser and matcher failures are not errors: they degrade to "no update"
// for the affected holdings. Holding writes happen one at a time and are not
// atomic as a batch; a write that fails partway through is logged as a
// consistency hazard and joined into the returned error, while the remaining
// holdings are still attempted.
type Syncer struct {
	store  Store
	lookup PriceLookup
	log    zerolog.Logger
	mu     sync.Mutex       // in-flight guard
	now    func() time.Time // stubbed in tests
}

// NewSyncer creates a price sync coordinator over the given store and
// lookup service.
func NewSyncer(store Store, lookup PriceLookup, log zerolog.Logger) *Syncer {
	return &Syncer{store: store, lookup: lookup, log: log, now: time.Now}
}

// Sync runs one price refresh over all held positions. A second Sync while
// one is in flight is rejected with ErrSyncInFlight.
func (s *Syncer) Sync(ctx context.Context) (*SyncResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInFlight
	}
	defer s.mu.Unlock()

	holdings, err := s.store.Holdings(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list holdings: %w", err)
	}
	if len(holdings) == 0 {
		return &SyncResult{}, nil
	}

	symbols := distinctSymbols(holdings)
	resp, err := s.lookup.LookupPrices(ctx, symbols)
	if err != nil {
		return nil, &LookupError{Err: err}
	}

	quotes := ParseQuotes(resp.Text)
	if len(quotes) == 0 {
		// Every parse strategy failed. Not fatal: the sync completes with
		// zero updates instead of failing outright.
		s.log.Warn().Int("symbols", len(symbols)).Msg("no quotes parsed from lookup response")
	}

	result, errs := s.applyQuotes(ctx, holdings, quotes)
	result.Sources = collectSources(resp.Citations)
	return result, errs
}

// ApplyQuotes matches quotes against the current holdings and writes matched
// updates through the store, exactly as Sync does for AI-sourced quotes. It
// shares the in-flight guard with Sync.
func (s *Syncer) ApplyQuotes(ctx context.Context, quotes []Quote) (*SyncResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInFlight
	}
	defer s.mu.Unlock()

	holdings, err := s.store.Holdings(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list holdings: %w", err)
	}
	return s.applyQuotes(ctx, holdings, quotes)
}

// applyQuotes runs the match-and-write phase. Callers hold the guard.
func (s *Syncer) applyQuotes(ctx context.Context, holdings []Holding, quotes []Quote) (*SyncResult, error) {
	result := &SyncResult{Holdings: holdings}

	var errs error
	for i := range holdings {
		quote, strategy, ok := MatchQuote(quotes, holdings[i].Symbol)
		if !ok {
			continue
		}
		holdings[i].CurrentPrice = quote.Price
		holdings[i].LastUpdated = s.now()
		if err := s.store.PutHolding(ctx, holdings[i]); err != nil {
			// The batch is not atomic: earlier holdings stay updated. Flag
			// it with enough detail to reconcile by hand, keep going.
			s.log.Error().
				Str("entity", holdings[i].Symbol).
				Float64("price", quote.Price).
				Err(err).
				Msg("holding update hazard")
			errs = errors.Join(errs, &ConsistencyError{
				Entity: holdings[i].Symbol,
				Delta:  fmt.Sprintf("price %v", quote.Price),
				Err:    err,
			})
			continue
		}
		result.Updated++
		s.log.Debug().
			Str("symbol", holdings[i].Symbol).
			Str("quote", quote.Symbol).
			Stringer("strategy", strategy).
			Float64("price", quote.Price).
			Msg("holding price updated")
	}
	return result, errs
}

// distinctSymbols returns the held symbols in holding order, de-duplicated.
func distinctSymbols(holdings []Holding) []string {
	seen := make(map[string]struct{}, len(holdings))
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.Symbol]; ok {
			continue
		}
		seen[h.Symbol] = struct{}{}
		symbols = append(symbols, h.Symbol)
	}
	return symbols
}

// collectSources keeps the citations worth displaying: both a title and a
// URL are required, anything less is dropped.
func collectSources(citations []Source) []Source {
	sources := make([]Source, 0, len(citations))
	for _, c := range citations {
		if c.Title == "" || c.URL == "" {
			continue
		}
		sources = append(sources, c)
	}
	return sources
}
