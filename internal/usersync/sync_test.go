package usersync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/jirabridge/internal/store"
	"github.com/clintrovert/jirabridge/pkg/types"
)

func newTestService(t *testing.T) (*Service, *store.MemoryLocalUsers, *store.MemoryMirror) {
	t.Helper()

	users := store.NewMemoryLocalUsers()
	mirror := store.NewMemoryMirror()
	return NewService(users, mirror, zap.NewNop()), users, mirror
}

func seedUsers(t *testing.T, users *store.MemoryLocalUsers, names ...string) {
	t.Helper()

	for _, name := range names {
		_, err := users.Create(context.Background(), &types.LocalUser{
			Email:    name + "@example.com",
			Username: name,
		})
		require.NoError(t, err)
	}
}

func TestMirrorToJiraIsIdempotent(t *testing.T) {
	svc, users, mirror := newTestService(t)
	seedUsers(t, users, "alice", "bob")

	count, err := svc.MirrorToJira(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, count)

	first, err := mirror.List(context.Background())
	require.NoError(t, err)

	// Running the sync again must produce the same mirror set.
	count, err = svc.MirrorToJira(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, count)

	second, err := mirror.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestMirrorToJiraMarksRowsActive(t *testing.T) {
	svc, users, mirror := newTestService(t)
	seedUsers(t, users, "alice")

	require.NoError(t, mirror.Upsert(context.Background(), "alice", false))

	_, err := svc.MirrorToJira(context.Background())
	require.NoError(t, err)

	rows, err := mirror.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "alice", rows[0].Username)
}

func TestImportFromJiraCountsActiveRows(t *testing.T) {
	svc, users, mirror := newTestService(t)

	require.NoError(t, mirror.Upsert(context.Background(), "alice", true))
	require.NoError(t, mirror.Upsert(context.Background(), "bob", true))
	require.NoError(t, mirror.Upsert(context.Background(), "carol", false))

	count, err := svc.ImportFromJira(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, count)

	all, err := users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "alice", all[0].Username)
	require.Equal(t, "bob", all[1].Username)
}

func TestImportFromJiraEmptyMirror(t *testing.T) {
	svc, _, _ := newTestService(t)

	count, err := svc.ImportFromJira(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
}
