// Package docstore is the persisted backend of the dashboard: a SQLite
// document store with one table per collection, holding one JSON document
// per entity.
//
// Reads are request/response against the database, so a completed write is
// visible to the next read. Subscription notifications deliver the current
// full collection after every change, asynchronously: callers must not
// assume a read through a subscription is synchronous with a local write.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/ewallis/finboard"
)

const (
	accountsTable     = "accounts"
	transactionsTable = "transactions"
	holdingsTable     = "holdings"
)

// Store implements finboard.Store on a SQLite database file.
type Store struct {
	db  *sql.DB
	log zerolog.Logger

	subMu    sync.Mutex
	nextSub  int
	accSubs  map[int]func([]finboard.Account)
	txSubs   map[int]func([]finboard.Transaction)
	holdSubs map[int]func([]finboard.Holding)
}

var _ finboard.Store = (*Store)(nil)

// Open opens (creating if needed) the document store at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open document store %q: %w", path, err)
	}
	// SQLite serializes writers; a single connection avoids busy errors.
	db.SetMaxOpenConns(1)

	for _, table := range []string{accountsTable, transactionsTable, holdingsTable} {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		);`, table)
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("could not create collection %q: %w", table, err)
		}
	}

	return &Store{
		db:       db,
		log:      log,
		accSubs:  make(map[int]func([]finboard.Account)),
		txSubs:   make(map[int]func([]finboard.Transaction)),
		holdSubs: make(map[int]func([]finboard.Holding)),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// document plumbing, shared by all three collections.

func putDoc(ctx context.Context, db *sql.DB, table, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode document %q: %w", id, err)
	}
	stmt := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`, table)
	if _, err := db.ExecContext(ctx, stmt, id, string(doc)); err != nil {
		return fmt.Errorf("could not write document %q to %s: %w", id, table, err)
	}
	return nil
}

func getDoc[T any](ctx context.Context, db *sql.DB, table, id string) (entity T, ok bool, err error) {
	var doc string
	row := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT doc FROM %s WHERE id = ?`, table), id)
	if err := row.Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return entity, false, nil
		}
		return entity, false, fmt.Errorf("could not read document %q from %s: %w", id, table, err)
	}
	if err := json.Unmarshal([]byte(doc), &entity); err != nil {
		return entity, false, fmt.Errorf("could not decode document %q from %s: %w", id, table, err)
	}
	return entity, true, nil
}

func listDocs[T any](ctx context.Context, db *sql.DB, table string) ([]T, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT doc FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, fmt.Errorf("could not list %s: %w", table, err)
	}
	defer rows.Close()

	var entities []T
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("could not scan %s row: %w", table, err)
		}
		var entity T
		if err := json.Unmarshal([]byte(doc), &entity); err != nil {
			return nil, fmt.Errorf("could not decode %s document: %w", table, err)
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func deleteDoc(ctx context.Context, db *sql.DB, table, id string) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id); err != nil {
		return fmt.Errorf("could not delete document %q from %s: %w", id, table, err)
	}
	return nil
}

// accounts

func (s *Store) Accounts(ctx context.Context) ([]finboard.Account, error) {
	return listDocs[finboard.Account](ctx, s.db, accountsTable)
}

func (s *Store) Account(ctx context.Context, id string) (finboard.Account, bool, error) {
	return getDoc[finboard.Account](ctx, s.db, accountsTable, id)
}

func (s *Store) PutAccount(ctx context.Context, a finboard.Account) error {
	if err := putDoc(ctx, s.db, accountsTable, a.ID, a); err != nil {
		return err
	}
	s.notifyAccounts()
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if err := deleteDoc(ctx, s.db, accountsTable, id); err != nil {
		return err
	}
	s.notifyAccounts()
	return nil
}

func (s *Store) SubscribeAccounts(fn func([]finboard.Account)) (cancel func()) {
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

// transactions

func (s *Store) Transactions(ctx context.Context) ([]finboard.Transaction, error) {
	txs, err := listDocs[finboard.Transaction](ctx, s.db, transactionsTable)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(txs, func(a, b finboard.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return txs, nil
}

func (s *Store) Transaction(ctx context.Context, id string) (finboard.Transaction, bool, error) {
	return getDoc[finboard.Transaction](ctx, s.db, transactionsTable, id)
}

func (s *Store) PutTransaction(ctx context.Context, t finboard.Transaction) error {
	if err := putDoc(ctx, s.db, transactionsTable, t.ID, t); err != nil {
		return err
	}
	s.notifyTransactions()
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := deleteDoc(ctx, s.db, transactionsTable, id); err != nil {
		return err
	}
	s.notifyTransactions()
	return nil
}

func (s *Store) SubscribeTransactions(fn func([]finboard.Transaction)) (cancel func()) {
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

// holdings

func (s *Store) Holdings(ctx context.Context) ([]finboard.Holding, error) {
	return listDocs[finboard.Holding](ctx, s.db, holdingsTable)
}

func (s *Store) Holding(ctx context.Context, symbol string) (finboard.Holding, bool, error) {
	return getDoc[finboard.Holding](ctx, s.db, holdingsTable, symbol)
}

func (s *Store) PutHolding(ctx context.Context, h finboard.Holding) error {
	if err := putDoc(ctx, s.db, holdingsTable, h.Symbol, h); err != nil {
		return err
	}
	s.notifyHoldings()
	return nil
}

func (s *Store) DeleteHolding(ctx context.Context, symbol string) error {
	if err := deleteDoc(ctx, s.db, holdingsTable, symbol); err != nil {
		return err
	}
	s.notifyHoldings()
	return nil
}

func (s *Store) SubscribeHoldings(fn func([]finboard.Holding)) (cancel func()) {
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

// notifications deliver the current full collection, no delta semantics.
// They run on their own goroutine and may lag the write that triggered them.

func (s *Store) notifyAccounts() {
	s.subMu.Lock()
	subs := slices.Collect(maps.Values(s.accSubs))
	s.subMu.Unlock()
	if len(subs) == 0 {
		return
	}
	go func() {
		list, err := s.Accounts(context.Background())
		if err != nil {
			s.log.Error().Err(err).Msg("could not load accounts for notification")
			return
		}
		for _, fn := range subs {
			fn(list)
		}
	}()
}

func (s *Store) notifyTransactions() {
	s.subMu.Lock()
	subs := slices.Collect(maps.Values(s.txSubs))
	s.subMu.Unlock()
	if len(subs) == 0 {
		return
	}
	go func() {
		list, err := s.Transactions(context.Background())
		if err != nil {
			s.log.Error().Err(err).Msg("could not load transactions for notification")
			return
		}
		for _, fn := range subs {
			fn(list)
		}
	}()
}

func (s *Store) notifyHoldings() {
	s.subMu.Lock()
	subs := slices.Collect(maps.Values(s.holdSubs))
	s.subMu.Unlock()
	if len(subs) == 0 {
		return
	}
	go func() {
		list, err := s.Holdings(context.Background())
		if err != nil {
			s.log.Error().Err(err).Msg("could not load holdings for notification")
			return
		}
		for _, fn := range subs {
			fn(list)
		}
	}()
}
