package tablelayer

import (
	"context"
	"fmt"
	"time"

	"github.com/kitsune-dj/enginelib/internal/adapter"
	"github.com/kitsune-dj/enginelib/internal/blob"
	"github.com/kitsune-dj/enginelib/internal/enginerr"
	"github.com/kitsune-dj/enginelib/internal/schema"
)

// TrackRow pairs a backend-assigned id with the snapshot read from it.
type TrackRow struct {
	ID       int64
	Snapshot TrackSnapshot
}

// CreateTrack inserts a new track row, encoding every analysis BLOB via
// the codec and populating the schema's metadata shape (key-value rows
// for v1, flat columns for v2/v3).
func (l *Layer) CreateTrack(ctx context.Context, databaseUUID string, snap TrackSnapshot) (int64, error) {
	sp, err := l.Adapter.Begin(ctx)
	if err != nil {
		return 0, wrapBackend("create_track", err)
	}
	defer sp.Close(ctx)

	var id int64
	if l.Schema.IsV2Like() {
		id, err = l.createTrackV2V3(ctx, databaseUUID, snap)
	} else {
		id, err = l.createTrackV1(ctx, snap)
	}
	if err != nil {
		return 0, err
	}
	return id, wrapBackend("create_track", sp.Release(ctx))
}

// TrackByID reads and decodes the track with the given id.
func (l *Layer) TrackByID(ctx context.Context, id int64) (TrackSnapshot, bool, error) {
	if l.Schema.IsV2Like() {
		return l.trackByIDV2V3(ctx, id)
	}
	return l.trackByIDV1(ctx, id)
}

// ListTracks returns every track row, id-ordered.
func (l *Layer) ListTracks(ctx context.Context) ([]TrackRow, error) {
	if l.Schema.IsV2Like() {
		return l.listTracksV2V3(ctx, "")
	}
	return l.listTracksV1(ctx, "")
}

// TracksByRelativePath returns every track whose relative_path matches exactly.
func (l *Layer) TracksByRelativePath(ctx context.Context, path string) ([]TrackRow, error) {
	if l.Schema.IsV2Like() {
		return l.listTracksV2V3(ctx, path)
	}
	return l.listTracksV1(ctx, path)
}

// UpdateTrack replaces every column and BLOB of id with snap, preserving id.
func (l *Layer) UpdateTrack(ctx context.Context, id int64, snap TrackSnapshot) error {
	if _, ok, err := l.TrackByID(ctx, id); err != nil {
		return err
	} else if !ok {
		return enginerr.New("update_track", enginerr.KindTrackDeleted, fmt.Errorf("track %d not found", id))
	}

	sp, err := l.Adapter.Begin(ctx)
	if err != nil {
		return wrapBackend("update_track", err)
	}
	defer sp.Close(ctx)

	if l.Schema.IsV2Like() {
		err = l.updateTrackV2V3(ctx, id, snap)
	} else {
		err = l.updateTrackV1(ctx, id, snap)
	}
	if err != nil {
		return err
	}
	return wrapBackend("update_track", sp.Release(ctx))
}

// RemoveTrack deletes the track and cascades to crate/playlist membership
// and performance rows.
func (l *Layer) RemoveTrack(ctx context.Context, id int64) error {
	sp, err := l.Adapter.Begin(ctx)
	if err != nil {
		return wrapBackend("remove_track", err)
	}
	defer sp.Close(ctx)

	if l.Schema.IsV2Like() {
		if _, err := l.Adapter.Exec(ctx, mainAttachment, `DELETE FROM PlaylistEntity WHERE trackId = ?`, id); err != nil {
			return wrapBackend("remove_track", err)
		}
		if l.Schema.Generation == schema.GenV3 {
			if _, err := l.Adapter.Exec(ctx, mainAttachment, `DELETE FROM PerformanceData WHERE id = ?`, id); err != nil {
				return wrapBackend("remove_track", err)
			}
		}
		if _, err := l.Adapter.Exec(ctx, mainAttachment, `DELETE FROM Track WHERE id = ?`, id); err != nil {
			return wrapBackend("remove_track", err)
		}
	} else {
		if _, err := l.Adapter.Exec(ctx, musicAttachment, `DELETE FROM CrateTrackList WHERE trackId = ?`, id); err != nil {
			return wrapBackend("remove_track", err)
		}
		if _, err := l.Adapter.Exec(ctx, musicAttachment, `DELETE FROM MetaData WHERE id = ?`, id); err != nil {
			return wrapBackend("remove_track", err)
		}
		if _, err := l.Adapter.Exec(ctx, musicAttachment, `DELETE FROM MetaDataInteger WHERE id = ?`, id); err != nil {
			return wrapBackend("remove_track", err)
		}
		if _, err := l.Adapter.Exec(ctx, musicAttachment, `DELETE FROM Track WHERE id = ?`, id); err != nil {
			return wrapBackend("remove_track", err)
		}
		if _, err := l.Adapter.Exec(ctx, perfAttachment, `DELETE FROM PerformanceData WHERE id = ?`, id); err != nil {
			return wrapBackend("remove_track", err)
		}
	}
	return wrapBackend("remove_track", sp.Release(ctx))
}

func optString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func optInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func toOptString(v adapter.Value) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func toOptInt(v adapter.Value) *int {
	switch n := v.(type) {
	case int64:
		i := int(n)
		return &i
	case int:
		return &n
	default:
		return nil
	}
}

func optFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optUint64(v *uint64) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func optDurationMs(v *time.Duration) any {
	if v == nil {
		return nil
	}
	return v.Milliseconds()
}

func toOptFloat(v adapter.Value) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int64:
		f := float64(n)
		return &f
	default:
		return nil
	}
}

func toOptUint64(v adapter.Value) *uint64 {
	switch n := v.(type) {
	case int64:
		u := uint64(n)
		return &u
	case int:
		u := uint64(n)
		return &u
	default:
		return nil
	}
}

func toOptDurationMs(v adapter.Value) *time.Duration {
	switch n := v.(type) {
	case int64:
		d := time.Duration(n) * time.Millisecond
		return &d
	case int:
		d := time.Duration(n) * time.Millisecond
		return &d
	default:
		return nil
	}
}

// musicalKeyFromInt converts a stored MetaDataInteger value back into a
// MusicalKey, used by v1's integer-keyed metadata rows.
func musicalKeyFromInt(v int64) blob.MusicalKey {
	return blob.MusicalKey(v)
}

func optMusicalKey(v *blob.MusicalKey) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func toOptMusicalKey(v adapter.Value) *blob.MusicalKey {
	n := toOptInt(v)
	if n == nil || *n == 0 {
		return nil
	}
	k := blob.MusicalKey(*n)
	return &k
}

func optTimeUnix(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.Unix()
}

func toOptTimeUnix(v adapter.Value) *time.Time {
	n := toOptInt(v)
	if n == nil {
		return nil
	}
	t := time.Unix(int64(*n), 0).UTC()
	return &t
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
