// Package tablelayer is the schema-specific table layer: per-schema DDL
// (create/verify) and row-level CRUD translating between native rows and
// the unified snapshot/crate/playlist shapes. It is a single tagged-variant
// layer parameterized by schema.ID rather than one tree per schema version;
// the differing routines (DDL, row mapping, BLOB location) are chosen by
// Layer's methods based on Layer.Schema.IsV2Like.
package tablelayer

import (
	"context"
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/adapter"
	"github.com/kitsune-dj/enginelib/internal/enginerr"
	"github.com/kitsune-dj/enginelib/internal/schema"
)

// Layer is the schema-specific row layer over an open adapter.
type Layer struct {
	Schema  schema.ID
	Adapter adapter.Adapter
}

// New constructs a Layer bound to the given schema and adapter. The
// adapter's attachments must already match what the schema's generation
// expects (music+perfdata for v1, main for v2/v3); callers typically get
// this right by opening the adapter via schema.ID.IsV2Like first.
func New(id schema.ID, a adapter.Adapter) *Layer {
	return &Layer{Schema: id, Adapter: a}
}

// musicAttachment and perfAttachment name the two v1 attachments;
// mainAttachment names the unified v2/v3 attachment. music and main are
// both the connection's primary ("main" schema) database — the one
// opened directly rather than ATTACHed — so table names that exist only
// there never need schema-qualifying. perfdata is always an ATTACHed
// database; anything that could collide with a same-named table in main
// (only Information does) must be qualified "perfdata.Information"
// explicitly, since unqualified CREATE TABLE always targets main and
// unqualified reads of an ambiguous name resolve to main first.
const (
	musicAttachment = "main"
	perfAttachment  = "perfdata"
	mainAttachment  = "main"
)

// Create runs the DDL to populate an empty backend with every table,
// view, trigger, and index the layer's schema requires.
func (l *Layer) Create(ctx context.Context) error {
	if l.Schema.IsV2Like() {
		return l.createV2V3(ctx)
	}
	return l.createV1(ctx)
}

// Verify runs a structural check sufficient to detect schema drift:
// table set, column names, and required triggers.
func (l *Layer) Verify(ctx context.Context) error {
	if l.Schema.IsV2Like() {
		return l.verifyV2V3(ctx)
	}
	return l.verifyV1(ctx)
}

// DatabaseUUID reads the UUID stamped into Information at create time,
// from whichever attachment owns that row for this schema's generation.
func (l *Layer) DatabaseUUID(ctx context.Context) (string, error) {
	if l.Schema.IsV2Like() {
		return l.databaseUUID(ctx, mainAttachment)
	}
	return l.databaseUUID(ctx, musicAttachment)
}

// GroupRow is the shape shared by v1 crates and v2/v3 playlists: a
// backend-assigned id, a name, and an optional parent.
type GroupRow struct {
	ID       int64
	Name     string
	ParentID *int64
}

func wrapBackend(op string, err error) error {
	if err == nil {
		return nil
	}
	return enginerr.New(op, enginerr.KindBackendError, err)
}

func exactlyOneRow(op, table string, count int) error {
	if count != 1 {
		return enginerr.New(op, enginerr.KindDatabaseInconsistency,
			fmt.Errorf("%s has %d rows, expected exactly 1", table, count))
	}
	return nil
}
