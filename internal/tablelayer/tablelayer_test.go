package tablelayer

import (
	"context"
	"testing"

	"github.com/kitsune-dj/enginelib/internal/adapter"
	"github.com/kitsune-dj/enginelib/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayer(t *testing.T, id schema.ID) *Layer {
	t.Helper()
	names := []string{"main"}
	if !id.IsV2Like() {
		names = []string{"music", "perfdata"}
	}
	a, err := adapter.OpenInMemory(context.Background(), names, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	l := New(id, a)
	require.NoError(t, l.Create(context.Background()))
	return l
}

func TestCreateAndVerifyRoundTrip(t *testing.T) {
	for _, id := range []schema.ID{schema.LatestV1(), schema.LatestV2(), schema.LatestV3()} {
		t.Run(id.String(), func(t *testing.T) {
			l := newLayer(t, id)
			assert.NoError(t, l.Verify(context.Background()))
		})
	}
}

func TestVerifyCatchesDroppedColumn(t *testing.T) {
	l := newLayer(t, schema.LatestV2())
	ctx := context.Background()
	require.NoError(t, l.Verify(ctx))

	_, err := l.Adapter.Exec(ctx, "main", `ALTER TABLE Playlist RENAME COLUMN nextListId TO nextListIdRenamed`)
	require.NoError(t, err)

	assert.Error(t, l.Verify(ctx))
}

func TestVerifyCatchesMissingTrigger(t *testing.T) {
	l := newLayer(t, schema.LatestV3())
	ctx := context.Background()
	require.NoError(t, l.Verify(ctx))

	_, err := l.Adapter.Exec(ctx, "main", `DROP TRIGGER trg_track_insert_performance_data`)
	require.NoError(t, err)

	assert.Error(t, l.Verify(ctx))
}

func TestDatabaseUUIDIsMintedPerDatabase(t *testing.T) {
	l := newLayer(t, schema.LatestV1())
	uid, err := l.DatabaseUUID(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	// a second, separately created database mints its own uuid
	l2 := newLayer(t, schema.LatestV2())
	uid2, err := l2.DatabaseUUID(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, uid2)
	assert.NotEqual(t, uid, uid2)
}

func testCrateForest(t *testing.T, id schema.ID) {
	t.Helper()
	ctx := context.Background()
	l := newLayer(t, id)

	createRoot := l.CreateRootCrate
	createSub := l.CreateSubCrate
	byID := l.CrateByID
	setParent := l.SetCrateParent
	setName := l.SetCrateName
	roots := l.RootCrates
	if id.IsV2Like() {
		createRoot = l.CreateRootPlaylist
		createSub = l.CreateSubPlaylist
		byID = l.PlaylistByID
		setParent = l.SetPlaylistParent
		setName = l.SetPlaylistName
		roots = l.RootPlaylists
	}

	a, err := createRoot(ctx, "Favorites")
	require.NoError(t, err)
	b, err := createSub(ctx, a, "House")
	require.NoError(t, err)

	row, ok, err := byID(ctx, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "House", row.Name)
	require.NotNil(t, row.ParentID)
	assert.Equal(t, a, *row.ParentID)

	// sibling-name uniqueness: a second root named "Favorites" must fail
	_, err = createRoot(ctx, "Favorites")
	assert.Error(t, err)

	// self-parenting and cycles must be rejected
	assert.Error(t, setParent(ctx, a, &a))
	assert.Error(t, setParent(ctx, a, &b))

	// renaming to a name already used by a sibling fails
	_, err = createRoot(ctx, "Techno")
	require.NoError(t, err)
	assert.Error(t, setName(ctx, b, "Techno"))

	rs, err := roots(ctx)
	require.NoError(t, err)
	assert.Len(t, rs, 2)
}

func TestCrateForestV1(t *testing.T) { testCrateForest(t, schema.LatestV1()) }
func TestCrateForestV2(t *testing.T) { testCrateForest(t, schema.LatestV2()) }
func TestCrateForestV3(t *testing.T) { testCrateForest(t, schema.LatestV3()) }

func testCrateForestAfterOrdering(t *testing.T, id schema.ID) {
	t.Helper()
	ctx := context.Background()
	l := newLayer(t, id)

	createRoot := l.CreateRootCrate
	createRootAfter := l.CreateRootCrateAfter
	createSub := l.CreateSubCrate
	createSubAfter := l.CreateSubCrateAfter
	roots := l.RootCrates
	if id.IsV2Like() {
		createRoot = l.CreateRootPlaylist
		createRootAfter = l.CreateRootPlaylistAfter
		createSub = l.CreateSubPlaylist
		createSubAfter = l.CreateSubPlaylistAfter
		roots = l.RootPlaylists
	}

	a, err := createRoot(ctx, "A")
	require.NoError(t, err)
	c, err := createRoot(ctx, "C")
	require.NoError(t, err)
	b, err := createRootAfter(ctx, "B", a)
	require.NoError(t, err)

	rs, err := roots(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	ids := []int64{rs[0].ID, rs[1].ID, rs[2].ID}
	if id.IsV2Like() {
		// v2/v3 has a real sibling chain: "after" actually splices B
		// between A and C.
		assert.Equal(t, []int64{a, b, c}, ids)
	} else {
		// v1 has no ordering column: crates always come back in
		// insertion order regardless of the after hint.
		assert.Equal(t, []int64{a, c, b}, ids)
	}

	// a sibling that does not belong to the target parent group is rejected
	child, err := createSub(ctx, a, "Child")
	require.NoError(t, err)
	_, err = createSubAfter(ctx, a, "Other", c)
	assert.Error(t, err)
	_, err = createSubAfter(ctx, a, "SecondChild", child)
	assert.NoError(t, err)
}

func TestCrateForestAfterOrderingV1(t *testing.T) { testCrateForestAfterOrdering(t, schema.LatestV1()) }
func TestCrateForestAfterOrderingV2(t *testing.T) { testCrateForestAfterOrdering(t, schema.LatestV2()) }
func TestCrateForestAfterOrderingV3(t *testing.T) { testCrateForestAfterOrdering(t, schema.LatestV3()) }

func testTrackMembershipIdempotent(t *testing.T, id schema.ID) {
	t.Helper()
	ctx := context.Background()
	l := newLayer(t, id)

	title := "Strobe"
	snap := TrackSnapshot{Title: &title}
	trackID, err := l.CreateTrack(ctx, "db-uuid", snap)
	require.NoError(t, err)

	var crateID int64
	var addTrack func(context.Context, int64, int64) error
	var tracks func(context.Context, int64) ([]int64, error)
	var clear func(context.Context, int64) error
	if id.IsV2Like() {
		crateID, err = l.CreateRootPlaylist(ctx, "Set")
		require.NoError(t, err)
		addTrack = func(ctx context.Context, c, tr int64) error {
			return l.AddTrackToPlaylist(ctx, c, tr, "db-uuid")
		}
		tracks = l.PlaylistTracks
		clear = l.ClearPlaylistTracks
	} else {
		crateID, err = l.CreateRootCrate(ctx, "Set")
		require.NoError(t, err)
		addTrack = l.AddTrackToCrate
		tracks = l.CrateTracks
		clear = l.ClearCrateTracks
	}

	require.NoError(t, addTrack(ctx, crateID, trackID))
	require.NoError(t, addTrack(ctx, crateID, trackID))

	ids, err := tracks(ctx, crateID)
	require.NoError(t, err)
	assert.Equal(t, []int64{trackID}, ids)

	require.NoError(t, clear(ctx, crateID))
	ids, err = tracks(ctx, crateID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestTrackMembershipIdempotentV1(t *testing.T) { testTrackMembershipIdempotent(t, schema.LatestV1()) }
func TestTrackMembershipIdempotentV2(t *testing.T) { testTrackMembershipIdempotent(t, schema.LatestV2()) }
func TestTrackMembershipIdempotentV3(t *testing.T) { testTrackMembershipIdempotent(t, schema.LatestV3()) }

func testTrackCRUDRoundTrip(t *testing.T, id schema.ID) {
	t.Helper()
	ctx := context.Background()
	l := newLayer(t, id)

	title, artist := "Windowlicker", "Aphex Twin"
	rate := 44100.0
	snap := TrackSnapshot{Title: &title, Artist: &artist, SampleRate: &rate}

	trackID, err := l.CreateTrack(ctx, "db-uuid", snap)
	require.NoError(t, err)

	got, ok, err := l.TrackByID(ctx, trackID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got.Title)
	assert.Equal(t, title, *got.Title)
	require.NotNil(t, got.Artist)
	assert.Equal(t, artist, *got.Artist)

	newTitle := "Come to Daddy"
	updated := got
	updated.Title = &newTitle
	require.NoError(t, l.UpdateTrack(ctx, trackID, updated))

	got, ok, err = l.TrackByID(ctx, trackID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, newTitle, *got.Title)

	require.NoError(t, l.RemoveTrack(ctx, trackID))
	_, ok, err = l.TrackByID(ctx, trackID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrackCRUDRoundTripV1(t *testing.T) { testTrackCRUDRoundTrip(t, schema.LatestV1()) }
func TestTrackCRUDRoundTripV2(t *testing.T) { testTrackCRUDRoundTrip(t, schema.LatestV2()) }
func TestTrackCRUDRoundTripV3(t *testing.T) { testTrackCRUDRoundTrip(t, schema.LatestV3()) }
