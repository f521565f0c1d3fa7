package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestAdapter(t *testing.T) *SQLAdapter {
	t.Helper()
	a, err := OpenInMemory(context.Background(), []string{"main"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestExecAndQueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := openTestAdapter(t)

	_, err := a.Exec(ctx, "main", "CREATE TABLE widget (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	res, err := a.Exec(ctx, "main", "INSERT INTO widget (name) VALUES (?)", "bolt")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	var got string
	err = a.Query(ctx, "main", "SELECT name FROM widget WHERE id = ?", func(row Row) error {
		got = row[0].(string)
		return nil
	}, id)
	require.NoError(t, err)
	assert.Equal(t, "bolt", got)
}

func TestSavePointReleaseCommits(t *testing.T) {
	ctx := context.Background()
	a := openTestAdapter(t)
	_, err := a.Exec(ctx, "main", "CREATE TABLE widget (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	sp, err := a.Begin(ctx)
	require.NoError(t, err)
	_, err = a.Exec(ctx, "main", "INSERT INTO widget DEFAULT VALUES")
	require.NoError(t, err)
	require.NoError(t, sp.Release(ctx))
	require.NoError(t, sp.Close(ctx)) // no-op after release

	var count int
	err = a.Query(ctx, "main", "SELECT COUNT(*) FROM widget", func(row Row) error {
		count = int(row[0].(int64))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSavePointCloseWithoutReleaseRollsBack(t *testing.T) {
	ctx := context.Background()
	a := openTestAdapter(t)
	_, err := a.Exec(ctx, "main", "CREATE TABLE widget (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	sp, err := a.Begin(ctx)
	require.NoError(t, err)
	_, err = a.Exec(ctx, "main", "INSERT INTO widget DEFAULT VALUES")
	require.NoError(t, err)
	require.NoError(t, sp.Close(ctx))

	var count int
	err = a.Query(ctx, "main", "SELECT COUNT(*) FROM widget", func(row Row) error {
		count = int(row[0].(int64))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNestedSavePointsComposeMonotonically(t *testing.T) {
	ctx := context.Background()
	a := openTestAdapter(t)

	outer, err := a.Begin(ctx)
	require.NoError(t, err)
	inner, err := a.Begin(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, outer.Name(), inner.Name())

	require.NoError(t, inner.Release(ctx))
	require.NoError(t, outer.Release(ctx))
}

func TestMultipleAttachmentsShareOneConnection(t *testing.T) {
	a, err := OpenInMemory(context.Background(), []string{"music", "perfdata"}, nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, []string{"music", "perfdata"}, a.Attachments())
}
