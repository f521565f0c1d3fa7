// Package adapter is the relational-store adapter contract: the interface
// the table layer (internal/tablelayer) uses to talk to a SQL backend
// without knowing whether it is split across two attached databases (v1)
// or unified into one (v2/v3).
package adapter

import "context"

// Value is anything bindable as a prepared-statement parameter: int64,
// uint64, float64, string, []byte, nil, or time.Time (bound as seconds
// since epoch).
type Value any

// Row is a single result row, indexed by column position.
type Row []Value

// RowFunc is called once per row during iteration. Returning an error
// aborts iteration and propagates the error to the caller of Query.
type RowFunc func(Row) error

// Adapter is the capability set the table layer needs from a relational
// backend. A single Adapter may front one attachment (v2/v3's "main") or
// several (v1's "music" and "perfdata"), addressed by name.
type Adapter interface {
	// Exec runs a statement that returns no rows, binding args
	// positionally. attachment names the logical database the statement
	// targets; SQLAdapter does not route by it.
	Exec(ctx context.Context, attachment, query string, args ...Value) (Result, error)

	// Query runs a statement and invokes fn once per result row.
	// attachment is passed as for Exec.
	Query(ctx context.Context, attachment, query string, fn RowFunc, args ...Value) error

	// Attachments lists the logical database names this adapter exposes,
	// e.g. ["music", "perfdata"] for v1 or ["main"] for v2/v3.
	Attachments() []string

	// Begin opens a nested save-point scoped to this call. Commit via
	// SavePoint.Release, or let it roll back on Close if never released.
	Begin(ctx context.Context) (SavePoint, error)

	// Close releases the underlying connection(s).
	Close() error
}

// Result mirrors database/sql.Result, narrowed to the two things the
// table layer actually needs.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// SavePoint is a nestable sub-transaction named by a monotonic counter,
// per the save-point discipline: begin/release/rollback-to, composing
// correctly when nested.
type SavePoint interface {
	// Release commits this save-point (and, transitively, any that were
	// released beneath it). Idempotent: a second Release is a no-op.
	Release(ctx context.Context) error

	// Close rolls back to this save-point if it was never released. Safe
	// to call unconditionally via defer, mirroring a transaction guard.
	Close(ctx context.Context) error

	// Name returns the save-point's generated name, e.g. "s3".
	Name() string
}
