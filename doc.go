// Package finboard provides the core of a personal-finance dashboard:
// account balances kept consistent with a log of signed transactions, a
// stock portfolio with AI-assisted price refresh, and the store contract
// that decouples both from the backing persistence.
//
// The core functionalities include:
//   - Transaction Ledger: applying and reverting income/expense transactions
//     against account balances with decimal-exact round trips, so that
//     reverting a transaction restores the balance bit for bit.
//   - Price Ingestion: turning the semi-structured text answer of an
//     external price-lookup service into validated quotes, matching them
//     against held positions under inexact symbol formatting, and writing
//     the updates through the store.
//   - Store Contract: one read/write/subscribe interface implemented by an
//     ephemeral in-memory backend and a persisted document store, selected
//     once at startup and injected.
//
// This package serves as the foundational logic for the `finboard`
// command-line tool and the HTTP server; both are thin boundaries that call
// into this core.
package finboard
