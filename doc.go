// Package tradebook turns broker trade confirmations into an auditable,
// local-first investment ledger.
//
// The core functionalities include:
//   - Confirmation Validation: Cross-checking the declared totals of a trade
//     confirmation against its line items and allocating the brokerage fees
//     to each operation proportionally to its value.
//   - Ledger Management: Merging every validated confirmation into
//     per-symbol ledgers, plus fee and settlement tables, idempotently: a
//     confirmation processed twice replaces its own rows.
//   - Portfolio Aggregation: Consolidating all ledgers into the current
//     portfolio and the yearly cumulative investment per symbol.
//   - Position History: Rebuilding the position held on every trading day.
//   - Dividend Reconciliation: Attributing each dividend event to the
//     position held just before its record date.
//
// This package serves as the foundational logic for the `tbk` command-line
// tool. Tables are persisted through a [Store], either as JSONL files in a
// folder ([DirStore]) or in a SQLite database (package sqlstore).
package tradebook
