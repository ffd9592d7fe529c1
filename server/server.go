// Package server exposes the dashboard over HTTP. It is a thin boundary:
// handlers decode JSON, call into the domain, and map domain errors to
// status codes.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ewallis/finboard"
)

// Server routes dashboard requests to the ledger, the syncer and the
// adviser.
type Server struct {
	store   finboard.Store
	ledger  *finboard.Ledger
	syncer  *finboard.Syncer
	adviser finboard.Adviser
	log     zerolog.Logger
}

// New creates a Server. The adviser may be nil, in which case the advice
// endpoint answers 503.
func New(store finboard.Store, ledger *finboard.Ledger, syncer *finboard.Syncer, adviser finboard.Adviser, log zerolog.Logger) *Server {
	return &Server{store: store, ledger: ledger, syncer: syncer, adviser: adviser, log: log}
}

// Handler returns the HTTP routing of the dashboard API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.listAccounts)
			r.Post("/", s.createAccount)
			r.Delete("/{id}", s.deleteAccount)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.listTransactions)
			r.Post("/", s.createTransaction)
			r.Delete("/{id}", s.revertTransaction)
		})
		r.Get("/holdings", s.listHoldings)
		r.Post("/sync", s.syncPrices)
		r.Post("/advice", s.advise)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return r
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.Accounts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var a finboard.Account
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		s.writeError(w, &finboard.ValidationError{Reason: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	created, err := s.ledger.CreateAccount(r.Context(), a)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"account": created})
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.store.Transactions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var tx finboard.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		s.writeError(w, &finboard.ValidationError{Reason: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	applied, err := s.ledger.Apply(r.Context(), tx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"transaction": applied})
}

func (s *Server) revertTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Revert(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.store.Holdings(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"holdings": holdings})
}

func (s *Server) syncPrices(w http.ResponseWriter, r *http.Request) {
	result, err := s.syncer.Sync(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type adviceRequest struct {
	Summary string `json:"summary"`
}

func (s *Server) advise(w http.ResponseWriter, r *http.Request) {
	if s.adviser == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "advice is not configured")
		return
	}
	var req adviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &finboard.ValidationError{Reason: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if req.Summary == "" {
		s.writeError(w, &finboard.ValidationError{Reason: "summary is required"})
		return
	}
	advice, err := s.adviser.Advise(r.Context(), req.Summary)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"advice": advice})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encoding response")
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		validation *finboard.ValidationError
		state      *finboard.InvalidStateError
		lookup     *finboard.LookupError
	)
	switch {
	case errors.As(err, &validation):
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &state):
		s.writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, finboard.ErrSyncInFlight):
		s.writeJSONError(w, http.StatusConflict, err.Error())
	case errors.As(err, &lookup):
		s.writeJSONError(w, http.StatusBadGateway, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
