package models

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pingcrew/pingcrew/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"
)

// newTestModel builds a GroupModel backed by an in-memory SQLite database
// with the same tables and constraints the Postgres migrations create.
func newTestModel(t *testing.T) *GroupModel {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqldb.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()

	for _, model := range []any{(*types.Group)(nil), (*types.GroupMember)(nil)} {
		_, err = db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	_, err = db.NewCreateIndex().
		Model((*types.Group)(nil)).
		Index("groups_guild_id_name_idx").
		Unique().
		Column("guild_id", "name").
		Exec(ctx)
	require.NoError(t, err)

	return NewGroup(db, zap.NewNop())
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("create then lookup returns matching fields", func(t *testing.T) {
		model := newTestModel(t)

		created, err := model.CreateGroup(ctx, 100, "Movie Night", 7)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		got, err := model.GetGroupByName(ctx, 100, "Movie Night")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, uint64(100), got.GuildID)
		assert.Equal(t, "Movie Night", got.Name)
		assert.Equal(t, uint64(7), got.CreatorID)

		members, err := model.GetMembers(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint64{7}, members)
	})

	t.Run("duplicate name in same guild conflicts", func(t *testing.T) {
		model := newTestModel(t)

		_, err := model.CreateGroup(ctx, 100, "Movie Night", 7)
		require.NoError(t, err)

		_, err = model.CreateGroup(ctx, 100, "Movie Night", 8)
		assert.ErrorIs(t, err, types.ErrGroupExists)

		// The failed create must not leave a stray membership behind.
		group, err := model.GetGroupByName(ctx, 100, "Movie Night")
		require.NoError(t, err)
		members, err := model.GetMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint64{7}, members)
	})

	t.Run("same name in another guild succeeds", func(t *testing.T) {
		model := newTestModel(t)

		_, err := model.CreateGroup(ctx, 100, "Movie Night", 7)
		require.NoError(t, err)

		other, err := model.CreateGroup(ctx, 200, "Movie Night", 7)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), other.GuildID)
	})

	t.Run("lookups are case-sensitive", func(t *testing.T) {
		model := newTestModel(t)

		_, err := model.CreateGroup(ctx, 100, "Movie Night", 7)
		require.NoError(t, err)

		_, err = model.GetGroupByName(ctx, 100, "movie night")
		assert.ErrorIs(t, err, types.ErrGroupNotFound)
	})
}

func TestMembership(t *testing.T) {
	ctx := context.Background()

	t.Run("joining twice leaves one membership", func(t *testing.T) {
		model := newTestModel(t)

		group, err := model.CreateGroup(ctx, 100, "raid-team", 1)
		require.NoError(t, err)

		require.NoError(t, model.AddMember(ctx, group.ID, 2))
		require.NoError(t, model.AddMember(ctx, group.ID, 2))

		members, err := model.GetMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint64{1, 2}, members)
	})

	t.Run("is member", func(t *testing.T) {
		model := newTestModel(t)

		group, err := model.CreateGroup(ctx, 100, "raid-team", 1)
		require.NoError(t, err)

		isMember, err := model.IsMember(ctx, group.ID, 1)
		require.NoError(t, err)
		assert.True(t, isMember)

		isMember, err = model.IsMember(ctx, group.ID, 2)
		require.NoError(t, err)
		assert.False(t, isMember)
	})

	t.Run("removing an absent membership is a no-op", func(t *testing.T) {
		model := newTestModel(t)

		group, err := model.CreateGroup(ctx, 100, "raid-team", 1)
		require.NoError(t, err)

		require.NoError(t, model.RemoveMember(ctx, group.ID, 42))

		members, err := model.GetMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint64{1}, members)
	})
}

func TestRemoveMemberAndPrune(t *testing.T) {
	ctx := context.Background()

	t.Run("group survives while members remain and dies with the last one", func(t *testing.T) {
		model := newTestModel(t)

		// User 1 creates, user 2 joins.
		group, err := model.CreateGroup(ctx, 100, "raid-team", 1)
		require.NoError(t, err)
		require.NoError(t, model.AddMember(ctx, group.ID, 2))

		// User 1 leaves; the group survives with user 2 in it.
		pruned, err := model.RemoveMemberAndPrune(ctx, group.ID, 1)
		require.NoError(t, err)
		assert.False(t, pruned)

		members, err := model.GetMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint64{2}, members)

		// User 2 leaves; the group is deleted with the membership.
		pruned, err = model.RemoveMemberAndPrune(ctx, group.ID, 2)
		require.NoError(t, err)
		assert.True(t, pruned)

		_, err = model.GetGroupByName(ctx, 100, "raid-team")
		assert.ErrorIs(t, err, types.ErrGroupNotFound)

		members, err = model.GetMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}

func TestDeleteGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the group and every membership", func(t *testing.T) {
		model := newTestModel(t)

		group, err := model.CreateGroup(ctx, 100, "raid-team", 1)
		require.NoError(t, err)

		for userID := uint64(2); userID <= 5; userID++ {
			require.NoError(t, model.AddMember(ctx, group.ID, userID))
		}

		require.NoError(t, model.DeleteGroup(ctx, group.ID))

		_, err = model.GetGroupByName(ctx, 100, "raid-team")
		assert.ErrorIs(t, err, types.ErrGroupNotFound)

		members, err := model.GetMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("deleting an already-deleted group reports not found", func(t *testing.T) {
		model := newTestModel(t)

		group, err := model.CreateGroup(ctx, 100, "raid-team", 1)
		require.NoError(t, err)

		require.NoError(t, model.DeleteGroup(ctx, group.ID))
		assert.ErrorIs(t, model.DeleteGroup(ctx, group.ID), types.ErrGroupNotFound)
	})
}

func TestListings(t *testing.T) {
	ctx := context.Background()

	t.Run("guild listing orders least recently used first", func(t *testing.T) {
		model := newTestModel(t)

		first, err := model.CreateGroup(ctx, 100, "first", 1)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		second, err := model.CreateGroup(ctx, 100, "second", 1)
		require.NoError(t, err)

		// Pinging the older group moves it to the back of the list.
		require.NoError(t, model.TouchLastUsed(ctx, first.ID))

		groups, err := model.GetGroupsByGuild(ctx, 100)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, second.ID, groups[0].ID)
		assert.Equal(t, first.ID, groups[1].ID)
	})

	t.Run("user listing only includes the user's groups in their guild", func(t *testing.T) {
		model := newTestModel(t)

		mine, err := model.CreateGroup(ctx, 100, "mine", 1)
		require.NoError(t, err)

		_, err = model.CreateGroup(ctx, 100, "other", 2)
		require.NoError(t, err)

		_, err = model.CreateGroup(ctx, 200, "elsewhere", 1)
		require.NoError(t, err)

		groups, err := model.GetGroupsForUser(ctx, 100, 1)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, mine.ID, groups[0].ID)
	})

	t.Run("member counts", func(t *testing.T) {
		model := newTestModel(t)

		big, err := model.CreateGroup(ctx, 100, "big", 1)
		require.NoError(t, err)
		require.NoError(t, model.AddMember(ctx, big.ID, 2))
		require.NoError(t, model.AddMember(ctx, big.ID, 3))

		small, err := model.CreateGroup(ctx, 100, "small", 4)
		require.NoError(t, err)

		counts, err := model.MemberCounts(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, map[int64]int{big.ID: 3, small.ID: 1}, counts)
	})
}

func TestPurgeGuild(t *testing.T) {
	ctx := context.Background()
	model := newTestModel(t)

	doomed, err := model.CreateGroup(ctx, 100, "doomed", 1)
	require.NoError(t, err)
	require.NoError(t, model.AddMember(ctx, doomed.ID, 2))

	survivor, err := model.CreateGroup(ctx, 200, "survivor", 1)
	require.NoError(t, err)

	require.NoError(t, model.PurgeGuild(ctx, 100))

	_, err = model.GetGroupByName(ctx, 100, "doomed")
	assert.ErrorIs(t, err, types.ErrGroupNotFound)

	members, err := model.GetMembers(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	got, err := model.GetGroupByName(ctx, 200, "survivor")
	require.NoError(t, err)
	assert.Equal(t, survivor.ID, got.ID)
}
