package tablelayer

import (
	"context"
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/adapter"
	"github.com/kitsune-dj/enginelib/internal/enginerr"
)

// v1 crates are rows in Crate, parented via CrateParentList (one row per
// crate; a root crate's crateOriginId points at itself) with CrateHierarchy
// holding the transitive closure for fast ancestor queries. Both tables are
// rebuilt in full on every structural mutation, which is simple and
// correct for the crate-tree sizes this format sees in practice.

// ListCrates returns every crate, ordered by id.
func (l *Layer) ListCrates(ctx context.Context) ([]GroupRow, error) {
	return l.queryGroups(ctx, musicAttachment,
		`SELECT c.id, c.title, p.crateOriginId FROM Crate c
		 JOIN CrateParentList p ON p.crateId = c.id
		 ORDER BY c.id`)
}

// RootCrates returns crates with no parent (crateOriginId == own id), in
// insertion order.
func (l *Layer) RootCrates(ctx context.Context) ([]GroupRow, error) {
	return l.queryGroups(ctx, musicAttachment,
		`SELECT c.id, c.title, p.crateOriginId FROM Crate c
		 JOIN CrateParentList p ON p.crateId = c.id
		 WHERE p.crateOriginId = c.id
		 ORDER BY c.id`)
}

// CrateByID returns the crate with the given id, or ok == false.
func (l *Layer) CrateByID(ctx context.Context, id int64) (GroupRow, bool, error) {
	rows, err := l.queryGroups(ctx, musicAttachment,
		`SELECT c.id, c.title, p.crateOriginId FROM Crate c
		 JOIN CrateParentList p ON p.crateId = c.id
		 WHERE c.id = ?`, id)
	if err != nil {
		return GroupRow{}, false, err
	}
	if len(rows) == 0 {
		return GroupRow{}, false, nil
	}
	return rows[0], true, nil
}

// CratesByName returns every crate whose name matches exactly.
func (l *Layer) CratesByName(ctx context.Context, name string) ([]GroupRow, error) {
	return l.queryGroups(ctx, musicAttachment,
		`SELECT c.id, c.title, p.crateOriginId FROM Crate c
		 JOIN CrateParentList p ON p.crateId = c.id
		 WHERE c.title = ?
		 ORDER BY c.id`, name)
}

func (l *Layer) queryGroups(ctx context.Context, attachment, query string, args ...adapter.Value) ([]GroupRow, error) {
	var rows []GroupRow
	err := l.Adapter.Query(ctx, attachment, query, func(row adapter.Row) error {
		id := toInt64(row[0])
		name, _ := row[1].(string)
		originID := toInt64(row[2])
		g := GroupRow{ID: id, Name: name}
		if originID != id {
			p := originID
			g.ParentID = &p
		}
		rows = append(rows, g)
		return nil
	}, args...)
	if err != nil {
		return nil, wrapBackend("list_crates", err)
	}
	return rows, nil
}

// CreateRootCrate inserts a new root crate, enforcing root-level
// sibling-name uniqueness.
func (l *Layer) CreateRootCrate(ctx context.Context, name string) (int64, error) {
	return l.createCrate(ctx, name, nil)
}

// CreateSubCrate inserts a new crate as a child of parent, enforcing
// sibling-name uniqueness among parent's existing children.
func (l *Layer) CreateSubCrate(ctx context.Context, parent int64, name string) (int64, error) {
	if _, ok, err := l.CrateByID(ctx, parent); err != nil {
		return 0, err
	} else if !ok {
		return 0, enginerr.New("create_sub_crate", enginerr.KindCrateDeleted, fmt.Errorf("parent crate %d not found", parent))
	}
	p := parent
	return l.createCrate(ctx, name, &p)
}

// CreateRootCrateAfter inserts a new root crate, validating that after is
// itself an existing root crate. v1's Crate table carries no ordering or
// position column (siblings are read back in ascending id order; see
// RootCrates), so unlike v2/v3's linked-list playlists there is no sibling
// pointer to splice into — the new crate is still appended at the end of
// id order. after is accepted and validated for interface parity with
// CreateSubCrateAfter and the v2/v3 playlist operations, not because v1
// can honor a specific insertion position.
func (l *Layer) CreateRootCrateAfter(ctx context.Context, name string, after int64) (int64, error) {
	if err := l.checkCrateIsSibling(ctx, after, nil); err != nil {
		return 0, err
	}
	return l.createCrate(ctx, name, nil)
}

// CreateSubCrateAfter inserts a new crate as a child of parent, validating
// that after is an existing child of parent. See CreateRootCrateAfter for
// why the new crate is appended rather than spliced into a position.
func (l *Layer) CreateSubCrateAfter(ctx context.Context, parent int64, name string, after int64) (int64, error) {
	if _, ok, err := l.CrateByID(ctx, parent); err != nil {
		return 0, err
	} else if !ok {
		return 0, enginerr.New("create_sub_crate", enginerr.KindCrateDeleted, fmt.Errorf("parent crate %d not found", parent))
	}
	p := parent
	if err := l.checkCrateIsSibling(ctx, after, &p); err != nil {
		return 0, err
	}
	return l.createCrate(ctx, name, &p)
}

// checkCrateIsSibling validates that after exists and has the given parent
// (nil for root).
func (l *Layer) checkCrateIsSibling(ctx context.Context, after int64, parent *int64) error {
	row, ok, err := l.CrateByID(ctx, after)
	if err != nil {
		return err
	}
	if !ok {
		return enginerr.New("create_crate", enginerr.KindCrateDeleted, fmt.Errorf("crate %d not found", after))
	}
	sameParent := (row.ParentID == nil && parent == nil) ||
		(row.ParentID != nil && parent != nil && *row.ParentID == *parent)
	if !sameParent {
		return enginerr.New("create_crate", enginerr.KindCrateInvalidParent,
			fmt.Errorf("crate %d is not a sibling in the given parent group", after))
	}
	return nil
}

func (l *Layer) createCrate(ctx context.Context, name string, parent *int64) (int64, error) {
	if name == "" {
		return 0, enginerr.New("create_crate", enginerr.KindCrateInvalidName, fmt.Errorf("crate name must not be empty"))
	}
	if err := l.checkSiblingNameUnique(ctx, parent, name, nil); err != nil {
		return 0, err
	}

	sp, err := l.Adapter.Begin(ctx)
	if err != nil {
		return 0, wrapBackend("create_crate", err)
	}
	defer sp.Close(ctx)

	res, err := l.Adapter.Exec(ctx, musicAttachment, `INSERT INTO Crate (title, path) VALUES (?, '')`, name)
	if err != nil {
		return 0, wrapBackend("create_crate", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapBackend("create_crate", err)
	}

	origin := id
	if parent != nil {
		origin = *parent
	}
	if _, err := l.Adapter.Exec(ctx, musicAttachment,
		`INSERT INTO CrateParentList (crateId, crateOriginId) VALUES (?, ?)`, id, origin); err != nil {
		return 0, wrapBackend("create_crate", err)
	}

	if err := l.rebuildCrateHierarchy(ctx); err != nil {
		return 0, err
	}
	if err := l.rebuildCratePaths(ctx); err != nil {
		return 0, err
	}
	if err := sp.Release(ctx); err != nil {
		return 0, wrapBackend("create_crate", err)
	}
	return id, nil
}

// SetCrateParent reparents id under newParent (nil for root), failing
// with crate-invalid-parent if that would introduce a cycle.
func (l *Layer) SetCrateParent(ctx context.Context, id int64, newParent *int64) error {
	if _, ok, err := l.CrateByID(ctx, id); err != nil {
		return err
	} else if !ok {
		return enginerr.New("set_parent", enginerr.KindCrateDeleted, fmt.Errorf("crate %d not found", id))
	}

	if newParent != nil {
		if *newParent == id {
			return enginerr.New("set_parent", enginerr.KindCrateInvalidParent, fmt.Errorf("crate cannot be its own parent"))
		}
		cyclic, err := l.crateWouldCycle(ctx, id, *newParent)
		if err != nil {
			return err
		}
		if cyclic {
			return enginerr.New("set_parent", enginerr.KindCrateInvalidParent, fmt.Errorf("crate %d is an ancestor of %d", id, *newParent))
		}
	}

	row, _, err := l.CrateByID(ctx, id)
	if err != nil {
		return err
	}
	if err := l.checkSiblingNameUnique(ctx, newParent, row.Name, &id); err != nil {
		return err
	}

	sp, err := l.Adapter.Begin(ctx)
	if err != nil {
		return wrapBackend("set_parent", err)
	}
	defer sp.Close(ctx)

	origin := id
	if newParent != nil {
		origin = *newParent
	}
	if _, err := l.Adapter.Exec(ctx, musicAttachment,
		`UPDATE CrateParentList SET crateOriginId = ? WHERE crateId = ?`, origin, id); err != nil {
		return wrapBackend("set_parent", err)
	}
	if err := l.rebuildCrateHierarchy(ctx); err != nil {
		return err
	}
	if err := l.rebuildCratePaths(ctx); err != nil {
		return err
	}
	return wrapBackend("set_parent", sp.Release(ctx))
}

// SetCrateName renames id, enforcing sibling-name uniqueness and
// recomputing the path column for it and every descendant.
func (l *Layer) SetCrateName(ctx context.Context, id int64, name string) error {
	if name == "" {
		return enginerr.New("set_name", enginerr.KindCrateInvalidName, fmt.Errorf("crate name must not be empty"))
	}
	row, ok, err := l.CrateByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return enginerr.New("set_name", enginerr.KindCrateDeleted, fmt.Errorf("crate %d not found", id))
	}
	if err := l.checkSiblingNameUnique(ctx, row.ParentID, name, &id); err != nil {
		return err
	}

	sp, err := l.Adapter.Begin(ctx)
	if err != nil {
		return wrapBackend("set_name", err)
	}
	defer sp.Close(ctx)

	if _, err := l.Adapter.Exec(ctx, musicAttachment, `UPDATE Crate SET title = ? WHERE id = ?`, name, id); err != nil {
		return wrapBackend("set_name", err)
	}
	if err := l.rebuildCratePaths(ctx); err != nil {
		return err
	}
	return wrapBackend("set_name", sp.Release(ctx))
}

// AddTrackToCrate adds track to crate, idempotently: a duplicate add
// leaves exactly one membership row.
func (l *Layer) AddTrackToCrate(ctx context.Context, crate, track int64) error {
	_, err := l.Adapter.Exec(ctx, musicAttachment,
		`INSERT OR IGNORE INTO CrateTrackList (crateId, trackId) VALUES (?, ?)`, crate, track)
	return wrapBackend("add_track_to_crate", err)
}

// RemoveTrackFromCrate removes track's membership in crate, if present.
func (l *Layer) RemoveTrackFromCrate(ctx context.Context, crate, track int64) error {
	_, err := l.Adapter.Exec(ctx, musicAttachment,
		`DELETE FROM CrateTrackList WHERE crateId = ? AND trackId = ?`, crate, track)
	return wrapBackend("remove_track_from_crate", err)
}

// ClearCrateTracks removes every track membership from crate.
func (l *Layer) ClearCrateTracks(ctx context.Context, crate int64) error {
	_, err := l.Adapter.Exec(ctx, musicAttachment, `DELETE FROM CrateTrackList WHERE crateId = ?`, crate)
	return wrapBackend("clear_tracks", err)
}

// CrateTracks lists the ids of tracks belonging to crate, in ascending track id order.
func (l *Layer) CrateTracks(ctx context.Context, crate int64) ([]int64, error) {
	var ids []int64
	err := l.Adapter.Query(ctx, musicAttachment,
		`SELECT trackId FROM CrateTrackList WHERE crateId = ? ORDER BY trackId`,
		func(row adapter.Row) error {
			ids = append(ids, toInt64(row[0]))
			return nil
		}, crate)
	return ids, wrapBackend("crate_tracks", err)
}

func (l *Layer) checkSiblingNameUnique(ctx context.Context, parent *int64, name string, except *int64) error {
	siblings, err := l.siblings(ctx, parent)
	if err != nil {
		return err
	}
	for _, s := range siblings {
		if except != nil && s.ID == *except {
			continue
		}
		if s.Name == name {
			return enginerr.New("create_crate", enginerr.KindCrateAlreadyExists,
				fmt.Errorf("a crate named %q already exists at this level", name))
		}
	}
	return nil
}

func (l *Layer) siblings(ctx context.Context, parent *int64) ([]GroupRow, error) {
	if parent == nil {
		return l.RootCrates(ctx)
	}
	var rows []GroupRow
	err := l.Adapter.Query(ctx, musicAttachment,
		`SELECT c.id, c.title, p.crateOriginId FROM Crate c
		 JOIN CrateParentList p ON p.crateId = c.id
		 WHERE p.crateOriginId = ? AND p.crateId != p.crateOriginId
		 ORDER BY c.id`,
		func(row adapter.Row) error {
			id := toInt64(row[0])
			name, _ := row[1].(string)
			origin := toInt64(row[2])
			g := GroupRow{ID: id, Name: name}
			if origin != id {
				o := origin
				g.ParentID = &o
			}
			rows = append(rows, g)
			return nil
		}, *parent)
	return rows, wrapBackend("siblings", err)
}

func (l *Layer) crateParent(ctx context.Context, id int64) (*int64, error) {
	row, ok, err := l.CrateByID(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	return row.ParentID, nil
}

func (l *Layer) crateWouldCycle(ctx context.Context, node, newParent int64) (bool, error) {
	cur := newParent
	for {
		if cur == node {
			return true, nil
		}
		parent, err := l.crateParent(ctx, cur)
		if err != nil {
			return false, err
		}
		if parent == nil {
			return false, nil
		}
		cur = *parent
	}
}

// rebuildCrateHierarchy recomputes the full transitive-closure table from
// CrateParentList. Simple and correct for realistic crate-tree sizes.
func (l *Layer) rebuildCrateHierarchy(ctx context.Context) error {
	if _, err := l.Adapter.Exec(ctx, musicAttachment, `DELETE FROM CrateHierarchy`); err != nil {
		return wrapBackend("rebuild_hierarchy", err)
	}

	parents := map[int64]int64{}
	err := l.Adapter.Query(ctx, musicAttachment, `SELECT crateId, crateOriginId FROM CrateParentList`,
		func(row adapter.Row) error {
			parents[toInt64(row[0])] = toInt64(row[1])
			return nil
		})
	if err != nil {
		return wrapBackend("rebuild_hierarchy", err)
	}

	for id := range parents {
		cur := id
		for {
			parent, ok := parents[cur]
			if !ok || parent == cur {
				break
			}
			if _, err := l.Adapter.Exec(ctx, musicAttachment,
				`INSERT INTO CrateHierarchy (crateId, crateParentId, crateOriginId) VALUES (?, ?, ?)`,
				id, parent, id); err != nil {
				return wrapBackend("rebuild_hierarchy", err)
			}
			cur = parent
		}
	}
	return nil
}

// rebuildCratePaths recomputes Crate.path for every crate by walking each
// one's ancestor chain root-down through titles.
func (l *Layer) rebuildCratePaths(ctx context.Context) error {
	names := map[int64]string{}
	parents := map[int64]int64{}
	err := l.Adapter.Query(ctx, musicAttachment,
		`SELECT c.id, c.title, p.crateOriginId FROM Crate c JOIN CrateParentList p ON p.crateId = c.id`,
		func(row adapter.Row) error {
			id := toInt64(row[0])
			name, _ := row[1].(string)
			names[id] = name
			parents[id] = toInt64(row[2])
			return nil
		})
	if err != nil {
		return wrapBackend("rebuild_paths", err)
	}

	for id := range names {
		var segments []string
		cur := id
		for {
			segments = append([]string{names[cur]}, segments...)
			parent := parents[cur]
			if parent == cur {
				break
			}
			cur = parent
		}
		path := "/" + joinSlash(segments)
		if _, err := l.Adapter.Exec(ctx, musicAttachment,
			`UPDATE Crate SET path = ? WHERE id = ?`, path, id); err != nil {
			return wrapBackend("rebuild_paths", err)
		}
	}
	return nil
}

func joinSlash(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}

func toInt64(v adapter.Value) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
