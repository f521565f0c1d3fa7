package entity

import (
	"context"
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/enginerr"
	"github.com/kitsune-dj/enginelib/internal/tablelayer"
)

// Crate is a handle over one node of the hierarchy called "crate" in v1
// and "playlist" in v2/v3 — a named, parented collection of
// tracks. Both backings share identical semantics (forest-shaped parent
// relation, sibling-name uniqueness, idempotent track membership), so
// one handle type fronts both; Database.layer picks the right table-layer
// routines by schema generation.
type Crate struct {
	db *Database
	id int64
}

// ID returns the backend-assigned id, stable for the handle's lifetime.
func (c *Crate) ID() int64 { return c.id }

// row re-reads this crate's current row, failing with crate-deleted if
// it no longer exists — the handle-invalidation-by-requery discipline.
func (c *Crate) row(ctx context.Context) (tablelayer.GroupRow, error) {
	var (
		row tablelayer.GroupRow
		ok  bool
		err error
	)
	if c.db.schema.IsV2Like() {
		row, ok, err = c.db.layer.PlaylistByID(ctx, c.id)
	} else {
		row, ok, err = c.db.layer.CrateByID(ctx, c.id)
	}
	if err != nil {
		return tablelayer.GroupRow{}, err
	}
	if !ok {
		return tablelayer.GroupRow{}, enginerr.New("crate", enginerr.KindCrateDeleted,
			fmt.Errorf("crate %d no longer exists", c.id))
	}
	return row, nil
}

// Name returns the crate's current title, requerying the backing row.
func (c *Crate) Name(ctx context.Context) (string, error) {
	row, err := c.row(ctx)
	if err != nil {
		return "", err
	}
	return row.Name, nil
}

// Parent returns the parent crate handle, or nil at the root.
func (c *Crate) Parent(ctx context.Context) (*Crate, error) {
	row, err := c.row(ctx)
	if err != nil {
		return nil, err
	}
	if row.ParentID == nil {
		return nil, nil
	}
	return c.db.CrateByID(ctx, *row.ParentID)
}

// SetName renames the crate, failing with crate-already-exists if a
// sibling already uses name.
func (c *Crate) SetName(ctx context.Context, name string) error {
	if c.db.schema.IsV2Like() {
		return c.db.layer.SetPlaylistName(ctx, c.id, name)
	}
	return c.db.layer.SetCrateName(ctx, c.id, name)
}

// SetParent reparents the crate under newParent (nil for root), failing
// with crate-invalid-parent if that would form a cycle.
func (c *Crate) SetParent(ctx context.Context, newParent *Crate) error {
	var parentID *int64
	if newParent != nil {
		id := newParent.id
		parentID = &id
	}
	if c.db.schema.IsV2Like() {
		return c.db.layer.SetPlaylistParent(ctx, c.id, parentID)
	}
	return c.db.layer.SetCrateParent(ctx, c.id, parentID)
}

// Children returns the crate's direct children in ascending id order, for
// every schema generation; the v2/v3 next_list_id sibling chain is not
// applied to this listing.
func (c *Crate) Children(ctx context.Context) ([]*Crate, error) {
	var all []tablelayer.GroupRow
	var err error
	if c.db.schema.IsV2Like() {
		all, err = c.db.layer.ListPlaylists(ctx)
	} else {
		all, err = c.db.layer.ListCrates(ctx)
	}
	if err != nil {
		return nil, err
	}

	var out []*Crate
	for _, row := range all {
		if row.ParentID != nil && *row.ParentID == c.id {
			out = append(out, c.db.wrapCrate(row))
		}
	}
	return out, nil
}

// AddTrack adds track to the crate, idempotently.
func (c *Crate) AddTrack(ctx context.Context, track *Track) error {
	if c.db.schema.IsV2Like() {
		return c.db.layer.AddTrackToPlaylist(ctx, c.id, track.id, c.db.uuid)
	}
	return c.db.layer.AddTrackToCrate(ctx, c.id, track.id)
}

// RemoveTrack removes track's membership, if present.
func (c *Crate) RemoveTrack(ctx context.Context, track *Track) error {
	if c.db.schema.IsV2Like() {
		return c.db.layer.RemoveTrackFromPlaylist(ctx, c.id, track.id)
	}
	return c.db.layer.RemoveTrackFromCrate(ctx, c.id, track.id)
}

// ClearTracks removes every track membership from the crate.
func (c *Crate) ClearTracks(ctx context.Context) error {
	if c.db.schema.IsV2Like() {
		return c.db.layer.ClearPlaylistTracks(ctx, c.id)
	}
	return c.db.layer.ClearCrateTracks(ctx, c.id)
}

// Tracks returns a handle for every track belonging to this crate: in
// ascending track id order for v1, in membership insertion order for v2/v3.
func (c *Crate) Tracks(ctx context.Context) ([]*Track, error) {
	var ids []int64
	var err error
	if c.db.schema.IsV2Like() {
		ids, err = c.db.layer.PlaylistTracks(ctx, c.id)
	} else {
		ids, err = c.db.layer.CrateTracks(ctx, c.id)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*Track, len(ids))
	for i, id := range ids {
		out[i] = &Track{db: c.db, id: id}
	}
	return out, nil
}

// wrapCrate builds a Crate handle from a GroupRow already read from the
// backing store.
func (db *Database) wrapCrate(row tablelayer.GroupRow) *Crate {
	return &Crate{db: db, id: row.ID}
}

// RootCrates returns every crate/playlist with no parent.
func (db *Database) RootCrates(ctx context.Context) ([]*Crate, error) {
	var rows []tablelayer.GroupRow
	var err error
	if db.schema.IsV2Like() {
		rows, err = db.layer.RootPlaylists(ctx)
	} else {
		rows, err = db.layer.RootCrates(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*Crate, len(rows))
	for i, row := range rows {
		out[i] = db.wrapCrate(row)
	}
	return out, nil
}

// CreateRootCrate creates a new top-level crate/playlist named name.
func (db *Database) CreateRootCrate(ctx context.Context, name string) (*Crate, error) {
	var id int64
	var err error
	if db.schema.IsV2Like() {
		id, err = db.layer.CreateRootPlaylist(ctx, name)
	} else {
		id, err = db.layer.CreateRootCrate(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return &Crate{db: db, id: id}, nil
}

// CreateSubCrate creates a new crate/playlist named name as a child of parent.
func (db *Database) CreateSubCrate(ctx context.Context, parent *Crate, name string) (*Crate, error) {
	var id int64
	var err error
	if db.schema.IsV2Like() {
		id, err = db.layer.CreateSubPlaylist(ctx, parent.id, name)
	} else {
		id, err = db.layer.CreateSubCrate(ctx, parent.id, name)
	}
	if err != nil {
		return nil, err
	}
	return &Crate{db: db, id: id}, nil
}

// CreateRootCrateAfter creates a new top-level crate/playlist named name,
// ordered immediately after the existing root after.
func (db *Database) CreateRootCrateAfter(ctx context.Context, name string, after *Crate) (*Crate, error) {
	var id int64
	var err error
	if db.schema.IsV2Like() {
		id, err = db.layer.CreateRootPlaylistAfter(ctx, name, after.id)
	} else {
		id, err = db.layer.CreateRootCrateAfter(ctx, name, after.id)
	}
	if err != nil {
		return nil, err
	}
	return &Crate{db: db, id: id}, nil
}

// CreateSubCrateAfter creates a new crate/playlist named name as a child
// of parent, ordered immediately after the existing sibling after.
func (db *Database) CreateSubCrateAfter(ctx context.Context, parent *Crate, name string, after *Crate) (*Crate, error) {
	var id int64
	var err error
	if db.schema.IsV2Like() {
		id, err = db.layer.CreateSubPlaylistAfter(ctx, parent.id, name, after.id)
	} else {
		id, err = db.layer.CreateSubCrateAfter(ctx, parent.id, name, after.id)
	}
	if err != nil {
		return nil, err
	}
	return &Crate{db: db, id: id}, nil
}

// CrateByID returns the crate/playlist handle for id, or crate-deleted
// if no such row exists.
func (db *Database) CrateByID(ctx context.Context, id int64) (*Crate, error) {
	c := &Crate{db: db, id: id}
	if _, err := c.row(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// CratesByName returns every crate/playlist whose name matches exactly.
func (db *Database) CratesByName(ctx context.Context, name string) ([]*Crate, error) {
	var rows []tablelayer.GroupRow
	var err error
	if db.schema.IsV2Like() {
		rows, err = db.layer.PlaylistsByName(ctx, name)
	} else {
		rows, err = db.layer.CratesByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*Crate, len(rows))
	for i, row := range rows {
		out[i] = db.wrapCrate(row)
	}
	return out, nil
}
