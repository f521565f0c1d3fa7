package entity

import (
	"context"
	"testing"

	"github.com/kitsune-dj/enginelib/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T, id schema.ID) *Database {
	t.Helper()
	db, err := CreateTemporary(context.Background(), id, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testDistinctHandlesSeeSameLiveState(t *testing.T, id schema.ID) {
	t.Helper()
	ctx := context.Background()
	db := newTestDatabase(t, id)

	crate, err := db.CreateRootCrate(ctx, "Opening Set")
	require.NoError(t, err)

	other, err := db.CrateByID(ctx, crate.ID())
	require.NoError(t, err)

	require.NoError(t, crate.SetName(ctx, "Warmup Set"))

	// other is a second handle over the same row, obtained independently:
	// since handles hold only (db, id), it must observe the rename made
	// through crate rather than a cached name.
	name, err := other.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Warmup Set", name)
}

func TestDistinctHandlesSeeSameLiveStateV1(t *testing.T) {
	testDistinctHandlesSeeSameLiveState(t, schema.LatestV1())
}
func TestDistinctHandlesSeeSameLiveStateV2(t *testing.T) {
	testDistinctHandlesSeeSameLiveState(t, schema.LatestV2())
}

func testCrateForestInvariants(t *testing.T, id schema.ID) {
	t.Helper()
	ctx := context.Background()
	db := newTestDatabase(t, id)

	root, err := db.CreateRootCrate(ctx, "Festival")
	require.NoError(t, err)
	_, err = db.CreateRootCrate(ctx, "Festival")
	assert.Error(t, err, "sibling name collision at the root must be rejected")

	sub, err := db.CreateSubCrate(ctx, root, "Warmup")
	require.NoError(t, err)

	assert.Error(t, sub.SetParent(ctx, sub), "a crate cannot be its own parent")
	assert.Error(t, root.SetParent(ctx, sub), "reparenting a crate under its own descendant must be rejected")

	parent, err := sub.Parent(ctx)
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, root.ID(), parent.ID())

	children, err := root.Children(ctx)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, sub.ID(), children[0].ID())
}

func TestCrateForestInvariantsV1(t *testing.T) { testCrateForestInvariants(t, schema.LatestV1()) }
func TestCrateForestInvariantsV2(t *testing.T) { testCrateForestInvariants(t, schema.LatestV2()) }
func TestCrateForestInvariantsV3(t *testing.T) { testCrateForestInvariants(t, schema.LatestV3()) }

func testCreateRootCrateAfterOrdersSiblings(t *testing.T, id schema.ID) {
	t.Helper()
	ctx := context.Background()
	db := newTestDatabase(t, id)

	a, err := db.CreateRootCrate(ctx, "A")
	require.NoError(t, err)
	c, err := db.CreateRootCrate(ctx, "C")
	require.NoError(t, err)
	b, err := db.CreateRootCrateAfter(ctx, "B", a)
	require.NoError(t, err)

	roots, err := db.RootCrates(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 3)

	got := []int64{roots[0].ID(), roots[1].ID(), roots[2].ID()}
	if id.IsV2Like() {
		assert.Equal(t, []int64{a.ID(), b.ID(), c.ID()}, got)
	} else {
		assert.Equal(t, []int64{a.ID(), c.ID(), b.ID()}, got)
	}
}

func TestCreateRootCrateAfterOrdersSiblingsV1(t *testing.T) {
	testCreateRootCrateAfterOrdersSiblings(t, schema.LatestV1())
}
func TestCreateRootCrateAfterOrdersSiblingsV2(t *testing.T) {
	testCreateRootCrateAfterOrdersSiblings(t, schema.LatestV2())
}
func TestCreateRootCrateAfterOrdersSiblingsV3(t *testing.T) {
	testCreateRootCrateAfterOrdersSiblings(t, schema.LatestV3())
}

func testTrackMembershipIdempotent(t *testing.T, id schema.ID) {
	t.Helper()
	ctx := context.Background()
	db := newTestDatabase(t, id)

	title := "Ghosts n Stuff"
	track, err := db.CreateTrack(ctx, TrackSnapshot{Title: &title})
	require.NoError(t, err)

	crate, err := db.CreateRootCrate(ctx, "Mainstage")
	require.NoError(t, err)

	require.NoError(t, crate.AddTrack(ctx, track))
	require.NoError(t, crate.AddTrack(ctx, track))

	tracks, err := crate.Tracks(ctx)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, track.ID(), tracks[0].ID())

	require.NoError(t, crate.RemoveTrack(ctx, track))
	tracks, err = crate.Tracks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestTrackMembershipIdempotentV1(t *testing.T) { testTrackMembershipIdempotent(t, schema.LatestV1()) }
func TestTrackMembershipIdempotentV2(t *testing.T) { testTrackMembershipIdempotent(t, schema.LatestV2()) }
func TestTrackMembershipIdempotentV3(t *testing.T) { testTrackMembershipIdempotent(t, schema.LatestV3()) }

func testTrackSnapshotRoundTrip(t *testing.T, id schema.ID) {
	t.Helper()
	ctx := context.Background()
	db := newTestDatabase(t, id)

	title, artist := "One More Time", "Daft Punk"
	path := "music/one-more-time.flac"
	track, err := db.CreateTrack(ctx, TrackSnapshot{Title: &title, Artist: &artist, RelativePath: &path})
	require.NoError(t, err)

	snap, err := track.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.Title)
	assert.Equal(t, title, *snap.Title)
	require.NotNil(t, snap.RelativePath)
	assert.Equal(t, path, *snap.RelativePath)
	assert.Equal(t, "one-more-time.flac", snap.Filename())

	require.NoError(t, track.Remove(ctx))
	_, err = track.Snapshot(ctx)
	assert.Error(t, err, "a removed track's handle must fail with track-deleted on requery")
}

func TestTrackSnapshotRoundTripV1(t *testing.T) { testTrackSnapshotRoundTrip(t, schema.LatestV1()) }
func TestTrackSnapshotRoundTripV2(t *testing.T) { testTrackSnapshotRoundTrip(t, schema.LatestV2()) }
func TestTrackSnapshotRoundTripV3(t *testing.T) { testTrackSnapshotRoundTrip(t, schema.LatestV3()) }

func TestCreateTemporaryAssignsDistinctUUIDs(t *testing.T) {
	a := newTestDatabase(t, schema.LatestV1())
	b := newTestDatabase(t, schema.LatestV1())
	assert.NotEqual(t, a.UUID(), b.UUID())
}
