package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Attachment names one logical database and the file backing it. Path
// ":memory:" opens an in-memory, non-persisted instance.
type Attachment struct {
	Name string
	Path string
}

// SQLAdapter is the concrete Adapter over database/sql, fronted by the
// pure-Go modernc.org/sqlite driver. The first attachment owns the
// connection; any further attachments are ATTACHed onto it under their
// own name, so a single *sql.DB backs both v1's two-file layout and
// v2/v3's single file.
//
// Exec and Query do not route by their attachment argument: every
// statement runs on the one shared connection, so an unqualified table
// name resolves against "main" first and an unqualified CREATE lands in
// the primary database. Statements aimed at an ATTACHed database name it
// explicitly (e.g. "perfdata.Information").
type SQLAdapter struct {
	conn        *sql.DB
	attachments []string
	logger      *slog.Logger
}

// savepointSeq names save-points process-wide, across every adapter.
var savepointSeq atomic.Int64

// Open opens (creating if absent) the given attachments and wires them
// onto a single connection with WAL mode and a busy timeout, matching
// the library's file-per-database layout.
func Open(ctx context.Context, attachments []Attachment, logger *slog.Logger) (*SQLAdapter, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("adapter: at least one attachment is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := attachments[0].Path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("adapter: opening %s: %w", attachments[0].Path, err)
	}
	conn.SetMaxOpenConns(1) // the contract is thread-confined: one connection, one user at a time

	a := &SQLAdapter{
		conn:        conn,
		attachments: []string{attachments[0].Name},
		logger:      logger.With("component", "adapter"),
	}

	for _, att := range attachments[1:] {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("ATTACH DATABASE ? AS %s", quoteIdent(att.Name)), att.Path); err != nil {
			conn.Close()
			return nil, fmt.Errorf("adapter: attaching %s as %s: %w", att.Path, att.Name, err)
		}
		a.attachments = append(a.attachments, att.Name)
	}

	a.logger.Debug("adapter opened", "attachments", a.attachments)
	return a, nil
}

// OpenInMemory opens an adapter whose attachments all live in volatile
// memory, for create_temporary.
func OpenInMemory(ctx context.Context, names []string, logger *slog.Logger) (*SQLAdapter, error) {
	attachments := make([]Attachment, len(names))
	for i, name := range names {
		attachments[i] = Attachment{Name: name, Path: ":memory:"}
	}
	return Open(ctx, attachments, logger)
}

func (a *SQLAdapter) Attachments() []string { return a.attachments }

func (a *SQLAdapter) Close() error { return a.conn.Close() }

func (a *SQLAdapter) Exec(ctx context.Context, attachment, query string, args ...Value) (Result, error) {
	return a.conn.ExecContext(ctx, query, bind(args)...)
}

func (a *SQLAdapter) Query(ctx context.Context, attachment, query string, fn RowFunc, args ...Value) error {
	rows, err := a.conn.QueryContext(ctx, query, bind(args)...)
	if err != nil {
		return fmt.Errorf("adapter: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("adapter: columns: %w", err)
	}

	dest := make([]any, len(cols))
	scan := make([]any, len(cols))
	for i := range dest {
		scan[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return fmt.Errorf("adapter: scan: %w", err)
		}
		row := make(Row, len(dest))
		copy(row, dest)
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Begin opens a save-point named by a monotonically increasing counter,
// mirroring a transaction guard: the caller must Release to commit, and
// an un-Released save-point rolls back on Close.
func (a *SQLAdapter) Begin(ctx context.Context) (SavePoint, error) {
	n := savepointSeq.Add(1)
	name := fmt.Sprintf("s%d", n)
	if _, err := a.conn.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return nil, fmt.Errorf("adapter: savepoint %s: %w", name, err)
	}
	return &sqlSavePoint{adapter: a, name: name}, nil
}

type sqlSavePoint struct {
	adapter  *SQLAdapter
	name     string
	released bool
}

func (s *sqlSavePoint) Name() string { return s.name }

func (s *sqlSavePoint) Release(ctx context.Context) error {
	if s.released {
		return nil
	}
	if _, err := s.adapter.conn.ExecContext(ctx, "RELEASE "+s.name); err != nil {
		return fmt.Errorf("adapter: release %s: %w", s.name, err)
	}
	s.released = true
	return nil
}

func (s *sqlSavePoint) Close(ctx context.Context) error {
	if s.released {
		return nil
	}
	// Swallow rollback errors the way a transaction guard does: SQLite
	// may already have rolled back automatically (e.g. the connection
	// hit a fatal error), making the explicit rollback harmless noise.
	_, _ = s.adapter.conn.ExecContext(ctx, "ROLLBACK TO "+s.name)
	s.released = true
	return nil
}

// bind translates Value (which may carry time.Time for system-instant
// columns) into driver-acceptable args, passing everything else through.
func bind(args []Value) []any {
	out := make([]any, len(args))
	for i, v := range args {
		if t, ok := v.(time.Time); ok {
			out[i] = t.Unix()
			continue
		}
		out[i] = v
	}
	return out
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
