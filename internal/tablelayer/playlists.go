package tablelayer

import (
	"context"
	"fmt"
	"sort"

	"github.com/kitsune-dj/enginelib/internal/adapter"
	"github.com/kitsune-dj/enginelib/internal/enginerr"
)

// v2/v3 playlists are rows in Playlist, parented via parentListId (0 =
// root) with sibling order maintained by the trg_playlist_insert_next_list_id
// trigger rewriting nextListId pointers on insert.

// ListPlaylists returns every playlist, ordered by id.
func (l *Layer) ListPlaylists(ctx context.Context) ([]GroupRow, error) {
	return l.queryPlaylists(ctx, `SELECT id, title, parentListId FROM Playlist ORDER BY id`)
}

// RootPlaylists returns playlists with no parent, in next_list_id order.
func (l *Layer) RootPlaylists(ctx context.Context) ([]GroupRow, error) {
	return l.orderedPlaylists(ctx, 0)
}

// PlaylistByID returns the playlist with the given id, or ok == false.
func (l *Layer) PlaylistByID(ctx context.Context, id int64) (GroupRow, bool, error) {
	rows, err := l.queryPlaylists(ctx, `SELECT id, title, parentListId FROM Playlist WHERE id = ?`, id)
	if err != nil {
		return GroupRow{}, false, err
	}
	if len(rows) == 0 {
		return GroupRow{}, false, nil
	}
	return rows[0], true, nil
}

// PlaylistsByName returns every playlist whose name matches exactly.
func (l *Layer) PlaylistsByName(ctx context.Context, name string) ([]GroupRow, error) {
	return l.queryPlaylists(ctx, `SELECT id, title, parentListId FROM Playlist WHERE title = ? ORDER BY id`, name)
}

func (l *Layer) queryPlaylists(ctx context.Context, query string, args ...adapter.Value) ([]GroupRow, error) {
	var rows []GroupRow
	err := l.Adapter.Query(ctx, mainAttachment, query, func(row adapter.Row) error {
		id := toInt64(row[0])
		name, _ := row[1].(string)
		parentListID := toInt64(row[2])
		g := GroupRow{ID: id, Name: name}
		if parentListID != 0 {
			p := parentListID
			g.ParentID = &p
		}
		rows = append(rows, g)
		return nil
	}, args...)
	if err != nil {
		return nil, wrapBackend("list_playlists", err)
	}
	return rows, nil
}

// orderedPlaylists walks the nextListId singly-linked list for siblings
// of parentListID (0 for roots), returning them in stable list order.
func (l *Layer) orderedPlaylists(ctx context.Context, parentListID int64) ([]GroupRow, error) {
	type raw struct {
		id, next int64
		name     string
	}
	byID := map[int64]raw{}
	var head int64
	haveHead := false

	err := l.Adapter.Query(ctx, mainAttachment,
		`SELECT id, title, nextListId FROM Playlist WHERE parentListId = ?`,
		func(row adapter.Row) error {
			r := raw{id: toInt64(row[0]), name: row[1].(string), next: toInt64(row[2])}
			byID[r.id] = r
			return nil
		}, parentListID)
	if err != nil {
		return nil, wrapBackend("root_playlists", err)
	}

	referenced := map[int64]bool{}
	for _, r := range byID {
		if r.next != 0 {
			referenced[r.next] = true
		}
	}
	// The unreferenced row is the chain's head. There should be exactly
	// one; picking the smallest id among candidates keeps this
	// deterministic (independent of map iteration order) if that
	// invariant is ever violated by corrupt data.
	var candidates []int64
	for id := range byID {
		if !referenced[id] {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) > 0 {
		sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
		head, haveHead = candidates[0], true
	}

	var rows []GroupRow
	for haveHead {
		r, ok := byID[head]
		if !ok {
			break
		}
		g := GroupRow{ID: r.id, Name: r.name}
		if parentListID != 0 {
			p := parentListID
			g.ParentID = &p
		}
		rows = append(rows, g)
		if r.next == 0 {
			break
		}
		head = r.next
	}
	return rows, nil
}

// CreateRootPlaylist inserts a new root playlist.
func (l *Layer) CreateRootPlaylist(ctx context.Context, name string) (int64, error) {
	return l.createPlaylist(ctx, name, 0)
}

// CreateSubPlaylist inserts a new playlist as a child of parent.
func (l *Layer) CreateSubPlaylist(ctx context.Context, parent int64, name string) (int64, error) {
	if _, ok, err := l.PlaylistByID(ctx, parent); err != nil {
		return 0, err
	} else if !ok {
		return 0, enginerr.New("create_sub_playlist", enginerr.KindCrateDeleted, fmt.Errorf("parent playlist %d not found", parent))
	}
	return l.createPlaylist(ctx, name, parent)
}

func (l *Layer) createPlaylist(ctx context.Context, name string, parentListID int64) (int64, error) {
	if name == "" {
		return 0, enginerr.New("create_playlist", enginerr.KindCrateInvalidName, fmt.Errorf("playlist name must not be empty"))
	}
	var parent *int64
	if parentListID != 0 {
		parent = &parentListID
	}
	if err := l.checkPlaylistSiblingNameUnique(ctx, parent, name, nil); err != nil {
		return 0, err
	}

	sp, err := l.Adapter.Begin(ctx)
	if err != nil {
		return 0, wrapBackend("create_playlist", err)
	}
	defer sp.Close(ctx)

	res, err := l.Adapter.Exec(ctx, mainAttachment,
		`INSERT INTO Playlist (title, parentListId) VALUES (?, ?)`, name, parentListID)
	if err != nil {
		return 0, wrapBackend("create_playlist", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapBackend("create_playlist", err)
	}
	return id, wrapBackend("create_playlist", sp.Release(ctx))
}

// CreateRootPlaylistAfter inserts a new root playlist immediately after
// the root playlist after in sibling order.
func (l *Layer) CreateRootPlaylistAfter(ctx context.Context, name string, after int64) (int64, error) {
	return l.createPlaylistAfter(ctx, name, 0, after)
}

// CreateSubPlaylistAfter inserts a new playlist as a child of parent,
// immediately after the sibling after in order.
func (l *Layer) CreateSubPlaylistAfter(ctx context.Context, parent int64, name string, after int64) (int64, error) {
	if _, ok, err := l.PlaylistByID(ctx, parent); err != nil {
		return 0, err
	} else if !ok {
		return 0, enginerr.New("create_sub_playlist", enginerr.KindCrateDeleted, fmt.Errorf("parent playlist %d not found", parent))
	}
	return l.createPlaylistAfter(ctx, name, parent, after)
}

// playlistChainLink reads the raw parentListId/nextListId pair backing a
// playlist's position in its sibling chain.
func (l *Layer) playlistChainLink(ctx context.Context, id int64) (parentListID, nextListID int64, ok bool, err error) {
	found := false
	qerr := l.Adapter.Query(ctx, mainAttachment,
		`SELECT parentListId, nextListId FROM Playlist WHERE id = ?`,
		func(row adapter.Row) error {
			parentListID = toInt64(row[0])
			nextListID = toInt64(row[1])
			found = true
			return nil
		}, id)
	if qerr != nil {
		return 0, 0, false, wrapBackend("create_playlist_after", qerr)
	}
	return parentListID, nextListID, found, nil
}

// createPlaylistAfter splices a new playlist into parentListID's sibling
// chain immediately after the existing sibling after. The new row takes
// over after's current next pointer; if after was not the chain's tail,
// after's own next pointer is relinked here explicitly, since the
// nextListId trigger only auto-links a plain tail-append (see ddl_v2v3.go).
func (l *Layer) createPlaylistAfter(ctx context.Context, name string, parentListID, after int64) (int64, error) {
	if name == "" {
		return 0, enginerr.New("create_playlist", enginerr.KindCrateInvalidName, fmt.Errorf("playlist name must not be empty"))
	}
	afterParent, afterNext, ok, err := l.playlistChainLink(ctx, after)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, enginerr.New("create_playlist", enginerr.KindCrateDeleted, fmt.Errorf("playlist %d not found", after))
	}
	if afterParent != parentListID {
		return 0, enginerr.New("create_playlist", enginerr.KindCrateInvalidParent,
			fmt.Errorf("playlist %d is not a sibling under parent %d", after, parentListID))
	}

	var parent *int64
	if parentListID != 0 {
		parent = &parentListID
	}
	if err := l.checkPlaylistSiblingNameUnique(ctx, parent, name, nil); err != nil {
		return 0, err
	}

	sp, err := l.Adapter.Begin(ctx)
	if err != nil {
		return 0, wrapBackend("create_playlist", err)
	}
	defer sp.Close(ctx)

	res, err := l.Adapter.Exec(ctx, mainAttachment,
		`INSERT INTO Playlist (title, parentListId, nextListId) VALUES (?, ?, ?)`, name, parentListID, afterNext)
	if err != nil {
		return 0, wrapBackend("create_playlist", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapBackend("create_playlist", err)
	}

	if afterNext != 0 {
		if _, err := l.Adapter.Exec(ctx, mainAttachment,
			`UPDATE Playlist SET nextListId = ? WHERE id = ?`, id, after); err != nil {
			return 0, wrapBackend("create_playlist", err)
		}
	}
	return id, wrapBackend("create_playlist", sp.Release(ctx))
}

// SetPlaylistParent reparents id under newParent (nil for root), failing
// with crate-invalid-parent if that would introduce a cycle. The moved
// node's old predecessor is relinked to its old successor, and the node
// is appended at the tail of its new sibling group.
func (l *Layer) SetPlaylistParent(ctx context.Context, id int64, newParent *int64) error {
	if _, ok, err := l.PlaylistByID(ctx, id); err != nil {
		return err
	} else if !ok {
		return enginerr.New("set_parent", enginerr.KindCrateDeleted, fmt.Errorf("playlist %d not found", id))
	}

	if newParent != nil {
		if *newParent == id {
			return enginerr.New("set_parent", enginerr.KindCrateInvalidParent, fmt.Errorf("playlist cannot be its own parent"))
		}
		cyclic, err := l.playlistWouldCycle(ctx, id, *newParent)
		if err != nil {
			return err
		}
		if cyclic {
			return enginerr.New("set_parent", enginerr.KindCrateInvalidParent, fmt.Errorf("playlist %d is an ancestor of %d", id, *newParent))
		}
	}

	row, _, err := l.PlaylistByID(ctx, id)
	if err != nil {
		return err
	}
	if err := l.checkPlaylistSiblingNameUnique(ctx, newParent, row.Name, &id); err != nil {
		return err
	}

	parentListID := int64(0)
	if newParent != nil {
		parentListID = *newParent
	}

	sp, err := l.Adapter.Begin(ctx)
	if err != nil {
		return wrapBackend("set_parent", err)
	}
	defer sp.Close(ctx)

	if _, err := l.Adapter.Exec(ctx, mainAttachment,
		`UPDATE Playlist SET nextListId = (SELECT nextListId FROM Playlist WHERE id = ?) WHERE nextListId = ?`, id, id); err != nil {
		return wrapBackend("set_parent", err)
	}
	if _, err := l.Adapter.Exec(ctx, mainAttachment,
		`UPDATE Playlist SET nextListId = ? WHERE parentListId = ? AND nextListId = 0 AND id != ?`, id, parentListID, id); err != nil {
		return wrapBackend("set_parent", err)
	}
	if _, err := l.Adapter.Exec(ctx, mainAttachment,
		`UPDATE Playlist SET parentListId = ?, nextListId = 0 WHERE id = ?`, parentListID, id); err != nil {
		return wrapBackend("set_parent", err)
	}
	return wrapBackend("set_parent", sp.Release(ctx))
}

// SetPlaylistName renames id, enforcing sibling-name uniqueness.
func (l *Layer) SetPlaylistName(ctx context.Context, id int64, name string) error {
	if name == "" {
		return enginerr.New("set_name", enginerr.KindCrateInvalidName, fmt.Errorf("playlist name must not be empty"))
	}
	row, ok, err := l.PlaylistByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return enginerr.New("set_name", enginerr.KindCrateDeleted, fmt.Errorf("playlist %d not found", id))
	}
	if err := l.checkPlaylistSiblingNameUnique(ctx, row.ParentID, name, &id); err != nil {
		return err
	}
	_, err = l.Adapter.Exec(ctx, mainAttachment, `UPDATE Playlist SET title = ? WHERE id = ?`, name, id)
	return wrapBackend("set_name", err)
}

// AddTrackToPlaylist adds track to playlist, idempotently.
func (l *Layer) AddTrackToPlaylist(ctx context.Context, playlist, track int64, databaseUUID string) error {
	exists := false
	err := l.Adapter.Query(ctx, mainAttachment,
		`SELECT 1 FROM PlaylistEntity WHERE listId = ? AND trackId = ?`,
		func(adapter.Row) error { exists = true; return nil }, playlist, track)
	if err != nil {
		return wrapBackend("add_track_to_playlist", err)
	}
	if exists {
		return nil
	}
	_, err = l.Adapter.Exec(ctx, mainAttachment,
		`INSERT INTO PlaylistEntity (listId, trackId, databaseUuid) VALUES (?, ?, ?)`,
		playlist, track, databaseUUID)
	return wrapBackend("add_track_to_playlist", err)
}

// RemoveTrackFromPlaylist removes track's membership in playlist, if present.
func (l *Layer) RemoveTrackFromPlaylist(ctx context.Context, playlist, track int64) error {
	_, err := l.Adapter.Exec(ctx, mainAttachment,
		`DELETE FROM PlaylistEntity WHERE listId = ? AND trackId = ?`, playlist, track)
	return wrapBackend("remove_track_from_playlist", err)
}

// ClearPlaylistTracks removes every track membership from playlist.
func (l *Layer) ClearPlaylistTracks(ctx context.Context, playlist int64) error {
	_, err := l.Adapter.Exec(ctx, mainAttachment, `DELETE FROM PlaylistEntity WHERE listId = ?`, playlist)
	return wrapBackend("clear_tracks", err)
}

// PlaylistTracks lists the ids of tracks belonging to playlist, in
// insertion order.
func (l *Layer) PlaylistTracks(ctx context.Context, playlist int64) ([]int64, error) {
	var ids []int64
	err := l.Adapter.Query(ctx, mainAttachment,
		`SELECT trackId FROM PlaylistEntity WHERE listId = ? ORDER BY id`,
		func(row adapter.Row) error {
			ids = append(ids, toInt64(row[0]))
			return nil
		}, playlist)
	return ids, wrapBackend("playlist_tracks", err)
}

func (l *Layer) checkPlaylistSiblingNameUnique(ctx context.Context, parent *int64, name string, except *int64) error {
	parentListID := int64(0)
	if parent != nil {
		parentListID = *parent
	}
	var rows []GroupRow
	err := l.Adapter.Query(ctx, mainAttachment,
		`SELECT id, title, parentListId FROM Playlist WHERE parentListId = ?`,
		func(row adapter.Row) error {
			rows = append(rows, GroupRow{ID: toInt64(row[0]), Name: row[1].(string)})
			return nil
		}, parentListID)
	if err != nil {
		return wrapBackend("create_playlist", err)
	}
	for _, s := range rows {
		if except != nil && s.ID == *except {
			continue
		}
		if s.Name == name {
			return enginerr.New("create_playlist", enginerr.KindCrateAlreadyExists,
				fmt.Errorf("a playlist named %q already exists at this level", name))
		}
	}
	return nil
}

func (l *Layer) playlistParent(ctx context.Context, id int64) (*int64, error) {
	row, ok, err := l.PlaylistByID(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	return row.ParentID, nil
}

func (l *Layer) playlistWouldCycle(ctx context.Context, node, newParent int64) (bool, error) {
	cur := newParent
	for {
		if cur == node {
			return true, nil
		}
		parent, err := l.playlistParent(ctx, cur)
		if err != nil {
			return false, err
		}
		if parent == nil {
			return false, nil
		}
		cur = *parent
	}
}
