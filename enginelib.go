package enginelib

import (
	"context"
	"log/slog"

	"github.com/kitsune-dj/enginelib/internal/entity"
	"github.com/kitsune-dj/enginelib/internal/schema"
)

// SchemaID identifies one on-disk schema version, e.g. SchemaLatestV2.
type SchemaID = schema.ID

// Database is a handle over one opened Engine library, owning its backing
// connection(s) exclusively: a single handle (and every Crate/Track handle
// obtained from it) must not be driven from more than one goroutine without
// external exclusion.
type Database = entity.Database

// Crate is a handle over one node of the crate/playlist hierarchy,
// independent of which schema generation backs it.
type Crate = entity.Crate

// Track is a handle over one track row.
type Track = entity.Track

// TrackSnapshot is the unified, detachable value type for a track's
// metadata and analysis data: it may be read from one database and
// replayed into another via Database.CreateTrack.
type TrackSnapshot = entity.TrackSnapshot

// Latest returns the newest schema this library supports overall.
func Latest() SchemaID { return schema.Latest() }

// LatestV1 returns the newest v1 (split m.db/p.db) schema.
func LatestV1() SchemaID { return schema.LatestV1() }

// LatestV2 returns the newest v2 (unified Database2/m.db) schema.
func LatestV2() SchemaID { return schema.LatestV2() }

// LatestV3 returns the newest v3 schema.
func LatestV3() SchemaID { return schema.LatestV3() }

// SupportedSchemas returns every registered schema, oldest first.
func SupportedSchemas() []SchemaID { return schema.All() }

// CreateDatabase creates a fresh Engine library at directory under the
// given schema. logger may be nil, in which case slog.Default() is used.
func CreateDatabase(ctx context.Context, directory string, id SchemaID, logger *slog.Logger) (*Database, error) {
	return entity.CreateDatabase(ctx, directory, id, logger)
}

// LoadDatabase opens an existing Engine library at directory, detecting
// its schema from the persisted Information row.
func LoadDatabase(ctx context.Context, directory string, logger *slog.Logger) (*Database, error) {
	return entity.LoadDatabase(ctx, directory, logger)
}

// Exists reports whether directory structurally looks like an Engine
// library, without opening it: v1 requires m.db and p.db; v2/v3 requires
// Database2/m.db.
func Exists(directory string) bool { return entity.Exists(directory) }

// CreateOrLoad loads directory if Exists reports true, otherwise creates a
// fresh database there under id. created reports whether a new database
// was created (true) versus an existing one loaded (false).
func CreateOrLoad(ctx context.Context, directory string, id SchemaID, logger *slog.Logger) (db *Database, created bool, err error) {
	return entity.CreateOrLoad(ctx, directory, id, logger)
}

// CreateTemporary creates a volatile, never-persisted database under id,
// useful for tests and scratch imports.
func CreateTemporary(ctx context.Context, id SchemaID, logger *slog.Logger) (*Database, error) {
	return entity.CreateTemporary(ctx, id, logger)
}
