/*
store.go - Persistence interface for calculation results

PURPOSE:
  Defines the interface between the engine and the audit store. Results
  are append-only: a calculation is recorded once and never rewritten.
  Different implementations use SQLite, PostgreSQL, or in-memory storage.

APPEND-ONLY CONTRACT:
  - SaveResult(): Single result write
  - ListResults(): Newest first
  - NO Update() or Delete() methods exist

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Default SQLite store
  - store/postgres/postgres.go: PostgreSQL via pgx
  - store/memory/memory.go: In-memory for testing

SEE ALSO:
  - snapshot.go: CalculationResult
  - labor/engine.go: Records results after each computation
*/
package generic

import "context"

// =============================================================================
// RESULT STORE - Audit persistence (append-only)
// =============================================================================

// ResultStore persists immutable calculation results.
type ResultStore interface {
	// SaveResult persists a result. Returns ErrDuplicateRecord if the ID exists.
	SaveResult(ctx context.Context, result CalculationResult) error

	// ListResults returns the latest results for an entity, newest first.
	// limit <= 0 means no limit.
	ListResults(ctx context.Context, entityID EntityID, limit int) ([]CalculationResult, error)
}
