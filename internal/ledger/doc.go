// Package ledger persists the set of item ids that have already been
// delivered. It is the sole source of truth for "already sent": the
// social cursor is best-effort process state, but an id present here is
// never delivered again, across restarts included.
//
// Backends:
//   - "sqlite": single-file database (default)
//   - "file": append-only JSON Lines journal
//
// Record is insert-or-ignore; recording the same id twice is a no-op.
package ledger
