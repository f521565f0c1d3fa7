package entity

import (
	"context"
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/enginerr"
)

// Track is a shared handle over one track row. Snapshots are detached
// values: they may outlive the database and be replayed into another
// one via Database.CreateTrack.
type Track struct {
	db *Database
	id int64
}

// ID returns the backend-assigned id, stable for the handle's lifetime.
func (t *Track) ID() int64 { return t.id }

// Snapshot materialises the track's current state, decoding every
// analysis BLOB.
func (t *Track) Snapshot(ctx context.Context) (TrackSnapshot, error) {
	snap, ok, err := t.db.layer.TrackByID(ctx, t.id)
	if err != nil {
		return TrackSnapshot{}, err
	}
	if !ok {
		return TrackSnapshot{}, enginerr.New("snapshot", enginerr.KindTrackDeleted,
			fmt.Errorf("track %d no longer exists", t.id))
	}
	return snap, nil
}

// Update applies snap to the track in a single transaction, rewriting
// every column and BLOB. Fields left at their zero value in snap clear
// the corresponding column.
func (t *Track) Update(ctx context.Context, snap TrackSnapshot) error {
	return t.db.layer.UpdateTrack(ctx, t.id, snap)
}

// Remove deletes the track and its crate/playlist membership and
// performance rows. The handle is invalid afterward.
func (t *Track) Remove(ctx context.Context) error {
	return t.db.layer.RemoveTrack(ctx, t.id)
}

// CreateTrack assigns a new id, writes snap, and stamps the v2/v3
// origin fields (this database's uuid and the new id) so replayed
// tracks can be traced back to where they were first created.
func (db *Database) CreateTrack(ctx context.Context, snap TrackSnapshot) (*Track, error) {
	id, err := db.layer.CreateTrack(ctx, db.uuid, snap)
	if err != nil {
		return nil, err
	}
	return &Track{db: db, id: id}, nil
}

// TrackByID returns the track handle for id, or track-deleted if no
// such row exists.
func (db *Database) TrackByID(ctx context.Context, id int64) (*Track, error) {
	_, ok, err := db.layer.TrackByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, enginerr.New("track_by_id", enginerr.KindTrackDeleted,
			fmt.Errorf("track %d not found", id))
	}
	return &Track{db: db, id: id}, nil
}

// Tracks returns every track in the database, id-ordered.
func (db *Database) Tracks(ctx context.Context) ([]*Track, error) {
	rows, err := db.layer.ListTracks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Track, len(rows))
	for i, row := range rows {
		out[i] = &Track{db: db, id: row.ID}
	}
	return out, nil
}

// TracksByRelativePath returns every track whose relative path matches
// exactly.
func (db *Database) TracksByRelativePath(ctx context.Context, path string) ([]*Track, error) {
	rows, err := db.layer.TracksByRelativePath(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]*Track, len(rows))
	for i, row := range rows {
		out[i] = &Track{db: db, id: row.ID}
	}
	return out, nil
}
