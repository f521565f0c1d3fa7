// Package entity is the unified object model layered over
// internal/tablelayer: thin handles (Database, Crate, Track) that hide
// which on-disk schema generation backs them, plus the invariants they
// guarantee (forest-shaped crate/playlist hierarchy, sibling-name
// uniqueness, idempotent track membership, handle invalidation on
// deletion).
package entity

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kitsune-dj/enginelib/internal/adapter"
	"github.com/kitsune-dj/enginelib/internal/enginerr"
	"github.com/kitsune-dj/enginelib/internal/schema"
	"github.com/kitsune-dj/enginelib/internal/tablelayer"
)

// TrackSnapshot is the unified per-track value type, re-exported here so
// callers never need to reach into internal/tablelayer directly.
type TrackSnapshot = tablelayer.TrackSnapshot

// Database owns an adapter connection (and, transitively, every Crate
// and Track handle obtained from it) exclusively: a single handle must
// not be driven from more than one thread without external exclusion,
// per the library's single-threaded-per-database model.
type Database struct {
	directory string
	uuid      string
	schema    schema.ID
	layer     *tablelayer.Layer
}

// Directory returns the absolute path this database was opened from.
// Empty for create_temporary databases.
func (db *Database) Directory() string {
	if db.directory == "" {
		return ""
	}
	if abs, err := filepath.Abs(db.directory); err == nil {
		return abs
	}
	return db.directory
}

// UUID returns the persisted database identifier, minted at create time.
func (db *Database) UUID() string { return db.uuid }

// Schema returns the on-disk schema this database was created with (or
// matched against, at load).
func (db *Database) Schema() schema.ID { return db.schema }

// Close releases the underlying adapter connection(s).
func (db *Database) Close() error { return db.layer.Adapter.Close() }

func attachmentsFor(directory string, id schema.ID) []adapter.Attachment {
	if id.IsV2Like() {
		return []adapter.Attachment{{Name: "main", Path: filepath.Join(directory, "Database2", "m.db")}}
	}
	return []adapter.Attachment{
		{Name: "music", Path: filepath.Join(directory, "m.db")},
		{Name: "perfdata", Path: filepath.Join(directory, "p.db")},
	}
}

// CreateDatabase creates a fresh Engine library at directory under the
// given schema, writing a new UUID into its Information row(s).
func CreateDatabase(ctx context.Context, directory string, id schema.ID, logger *slog.Logger) (*Database, error) {
	if id.IsV2Like() {
		if err := os.MkdirAll(filepath.Join(directory, "Database2"), 0o755); err != nil {
			return nil, enginerr.New("create_database", enginerr.KindBackendError, err)
		}
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return nil, enginerr.New("create_database", enginerr.KindBackendError, err)
		}
	}

	a, err := adapter.Open(ctx, attachmentsFor(directory, id), logger)
	if err != nil {
		return nil, enginerr.New("create_database", enginerr.KindBackendError, err)
	}

	layer := tablelayer.New(id, a)
	if err := layer.Create(ctx); err != nil {
		a.Close()
		return nil, err
	}

	uid, err := layer.DatabaseUUID(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	return &Database{directory: directory, uuid: uid, schema: id, layer: layer}, nil
}

// LoadDatabase opens an existing Engine library at directory, matching
// its Information row against the registered schemas.
func LoadDatabase(ctx context.Context, directory string, logger *slog.Logger) (*Database, error) {
	if !Exists(directory) {
		return nil, enginerr.New("load_database", enginerr.KindDatabaseNotFound,
			fmt.Errorf("no Engine library found at %s", directory))
	}

	id, err := probeSchema(ctx, directory, logger)
	if err != nil {
		return nil, err
	}

	a, err := adapter.Open(ctx, attachmentsFor(directory, id), logger)
	if err != nil {
		return nil, enginerr.New("load_database", enginerr.KindBackendError, err)
	}

	layer := tablelayer.New(id, a)
	if err := layer.Verify(ctx); err != nil {
		a.Close()
		return nil, err
	}
	uid, err := layer.DatabaseUUID(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	return &Database{directory: directory, uuid: uid, schema: id, layer: layer}, nil
}

// probeSchema opens a throwaway read of the Information row to discover
// which registered schema a directory's files were created under.
func probeSchema(ctx context.Context, directory string, logger *slog.Logger) (schema.ID, error) {
	v2Path := filepath.Join(directory, "Database2", "m.db")

	var attachments []adapter.Attachment
	if fileExists(v2Path) {
		attachments = []adapter.Attachment{{Name: "main", Path: v2Path}}
	} else {
		attachments = []adapter.Attachment{{Name: "music", Path: filepath.Join(directory, "m.db")}}
	}

	a, err := adapter.Open(ctx, attachments, logger)
	if err != nil {
		return schema.ID{}, enginerr.New("load_database", enginerr.KindBackendError, err)
	}
	defer a.Close()

	var major, minor, patch int
	found := false
	err = a.Query(ctx, attachments[0].Name, `SELECT schemaVersionMajor, schemaVersionMinor, schemaVersionPatch FROM Information`,
		func(row adapter.Row) error {
			major = toInt(row[0])
			minor = toInt(row[1])
			patch = toInt(row[2])
			found = true
			return nil
		})
	if err != nil {
		return schema.ID{}, enginerr.New("load_database", enginerr.KindBackendError, err)
	}
	if !found {
		return schema.ID{}, enginerr.New("load_database", enginerr.KindDatabaseInconsistency,
			fmt.Errorf("no Information row at %s", directory))
	}

	id, ok := schema.Lookup(major, minor, patch)
	if !ok {
		return schema.ID{}, enginerr.New("load_database", enginerr.KindUnsupportedDatabase,
			fmt.Errorf("no registered schema matches version %d.%d.%d", major, minor, patch))
	}
	return id, nil
}

func toInt(v adapter.Value) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Exists reports whether directory structurally looks like an Engine
// library: v1 requires m.db and p.db, v2/v3 requires Database2/m.db.
func Exists(directory string) bool {
	if fileExists(filepath.Join(directory, "Database2", "m.db")) {
		return true
	}
	return fileExists(filepath.Join(directory, "m.db")) && fileExists(filepath.Join(directory, "p.db"))
}

// CreateOrLoad loads directory if it already exists, otherwise creates a
// fresh database there under id. The returned bool reports whether a new
// database was created (true) versus an existing one loaded (false).
func CreateOrLoad(ctx context.Context, directory string, id schema.ID, logger *slog.Logger) (*Database, bool, error) {
	if Exists(directory) {
		db, err := LoadDatabase(ctx, directory, logger)
		return db, false, err
	}
	db, err := CreateDatabase(ctx, directory, id, logger)
	return db, true, err
}

// CreateTemporary creates a volatile, never-persisted database under id,
// backed entirely by in-memory attachments.
func CreateTemporary(ctx context.Context, id schema.ID, logger *slog.Logger) (*Database, error) {
	names := []string{"main"}
	if !id.IsV2Like() {
		names = []string{"music", "perfdata"}
	}
	a, err := adapter.OpenInMemory(ctx, names, logger)
	if err != nil {
		return nil, enginerr.New("create_temporary", enginerr.KindBackendError, err)
	}

	layer := tablelayer.New(id, a)
	if err := layer.Create(ctx); err != nil {
		a.Close()
		return nil, err
	}
	uid, err := layer.DatabaseUUID(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	return &Database{uuid: uid, schema: id, layer: layer}, nil
}

// Verify runs the schema's structural check: table set, required
// triggers, and Information row-count invariant.
func (db *Database) Verify(ctx context.Context) error {
	return db.layer.Verify(ctx)
}

// CreateFromScripts hydrates an otherwise-empty database by running
// every "<attachment>.db.sql" file under dir; see
// tablelayer.Layer.CreateFromScripts for how the attachment name is used.
func (db *Database) CreateFromScripts(ctx context.Context, dir string) error {
	return db.layer.CreateFromScripts(ctx, dir)
}
