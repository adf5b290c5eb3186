// Package models implements the database operations for each row type.
package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pingcrew/pingcrew/internal/database/dbretry"
	"github.com/pingcrew/pingcrew/internal/database/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"
)

// GroupModel handles database operations for groups and their memberships.
type GroupModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewGroup creates a GroupModel.
func NewGroup(db *bun.DB, logger *zap.Logger) *GroupModel {
	return &GroupModel{
		db:     db,
		logger: logger.Named("db_group"),
	}
}

// isUniqueViolation checks whether err is a unique constraint violation.
// The Postgres driver reports SQLSTATE 23505; the message check covers the
// embedded database used in tests.
func isUniqueViolation(err error) bool {
	var pgerr *pgdriver.Error
	if errors.As(err, &pgerr) {
		return pgerr.Field('C') == "23505"
	}

	return strings.Contains(err.Error(), "UNIQUE constraint")
}

// CreateGroup inserts a group and its creator's membership in one
// transaction. The name must already be validated and trimmed. Returns
// types.ErrGroupExists when the (guild, name) pair is taken; the unique index
// is the authoritative duplicate guard, not any earlier availability check.
func (r *GroupModel) CreateGroup(
	ctx context.Context, guildID uint64, name string, creatorID uint64,
) (*types.Group, error) {
	now := time.Now()
	group := &types.Group{
		GuildID:    guildID,
		Name:       name,
		CreatorID:  creatorID,
		LastUsedAt: now,
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(group).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return types.ErrGroupExists
			}

			return fmt.Errorf("failed to insert group: %w", err)
		}

		member := &types.GroupMember{
			GroupID: group.ID,
			UserID:  creatorID,
			AddedAt: now,
		}
		if _, err := tx.NewInsert().Model(member).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert creator membership: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Created group",
		zap.Int64("groupID", group.ID),
		zap.Uint64("guildID", guildID),
		zap.String("name", name),
		zap.Uint64("creatorID", creatorID))

	return group, nil
}

// GetGroupByName retrieves a group by its exact name within a guild.
// Lookups are case-sensitive. Returns types.ErrGroupNotFound when absent.
func (r *GroupModel) GetGroupByName(ctx context.Context, guildID uint64, name string) (*types.Group, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Group, error) {
		group := new(types.Group)

		err := r.db.NewSelect().
			Model(group).
			Where("guild_id = ?", guildID).
			Where("name = ?", name).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrGroupNotFound
			}

			return nil, fmt.Errorf("failed to get group by name: %w", err)
		}

		return group, nil
	})
}

// GetGroupsByGuild retrieves all groups in a guild ordered by ascending
// last_used_at, so the least recently pinged groups list first.
func (r *GroupModel) GetGroupsByGuild(ctx context.Context, guildID uint64) ([]*types.Group, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Group, error) {
		var groups []*types.Group

		err := r.db.NewSelect().
			Model(&groups).
			Where("guild_id = ?", guildID).
			Order("last_used_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get groups by guild: %w", err)
		}

		return groups, nil
	})
}

// GetGroupsForUser retrieves the groups in a guild that the user belongs to,
// in the same least-recently-used order as GetGroupsByGuild.
func (r *GroupModel) GetGroupsForUser(ctx context.Context, guildID, userID uint64) ([]*types.Group, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Group, error) {
		var groups []*types.Group

		err := r.db.NewSelect().
			Model(&groups).
			Join("JOIN group_members AS gm ON gm.group_id = g.id").
			Where("g.guild_id = ?", guildID).
			Where("gm.user_id = ?", userID).
			Order("g.last_used_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get groups for user: %w", err)
		}

		return groups, nil
	})
}

// TouchLastUsed stamps the group's last_used_at with the current time so
// future listings rank it as recently active.
func (r *GroupModel) TouchLastUsed(ctx context.Context, groupID int64) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewUpdate().
			Model((*types.Group)(nil)).
			Set("last_used_at = ?", time.Now()).
			Where("id = ?", groupID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to touch group: %w", err)
		}

		return nil
	})
}

// GetMembers retrieves the user ids of all current members of a group.
func (r *GroupModel) GetMembers(ctx context.Context, groupID int64) ([]uint64, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]uint64, error) {
		var userIDs []uint64

		err := r.db.NewSelect().
			Model((*types.GroupMember)(nil)).
			Column("user_id").
			Where("group_id = ?", groupID).
			Order("added_at ASC").
			Scan(ctx, &userIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to get group members: %w", err)
		}

		return userIDs, nil
	})
}

// MemberCounts returns the current member count for every group in a guild.
func (r *GroupModel) MemberCounts(ctx context.Context, guildID uint64) (map[int64]int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (map[int64]int, error) {
		var rows []struct {
			GroupID int64 `bun:"group_id"`
			Members int   `bun:"members"`
		}

		err := r.db.NewSelect().
			Model((*types.GroupMember)(nil)).
			ColumnExpr("group_id, count(*) AS members").
			Where("group_id IN (SELECT id FROM groups WHERE guild_id = ?)", guildID).
			GroupExpr("group_id").
			Scan(ctx, &rows)
		if err != nil {
			return nil, fmt.Errorf("failed to count group members: %w", err)
		}

		counts := make(map[int64]int, len(rows))
		for _, row := range rows {
			counts[row.GroupID] = row.Members
		}

		return counts, nil
	})
}

// AddMember inserts a membership. Joining a group the user already belongs
// to is a no-op, not an error.
func (r *GroupModel) AddMember(ctx context.Context, groupID int64, userID uint64) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		member := &types.GroupMember{
			GroupID: groupID,
			UserID:  userID,
			AddedAt: time.Now(),
		}

		_, err := r.db.NewInsert().
			Model(member).
			On("CONFLICT (group_id, user_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to add group member: %w", err)
		}

		return nil
	})
}

// IsMember reports whether the user belongs to the group.
func (r *GroupModel) IsMember(ctx context.Context, groupID int64, userID uint64) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		exists, err := r.db.NewSelect().
			Model((*types.GroupMember)(nil)).
			Where("group_id = ?", groupID).
			Where("user_id = ?", userID).
			Exists(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to check group membership: %w", err)
		}

		return exists, nil
	})
}

// RemoveMember deletes a membership if present. Removing an absent
// membership is a no-op; presence checks belong to the handler.
func (r *GroupModel) RemoveMember(ctx context.Context, groupID int64, userID uint64) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewDelete().
			Model((*types.GroupMember)(nil)).
			Where("group_id = ?", groupID).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to remove group member: %w", err)
		}

		return nil
	})
}

// RemoveMemberAndPrune removes a membership and, when the group is left with
// no members, deletes the group in the same transaction. Doing both under
// one transaction closes the window where a concurrent join could land
// between the member count and the group delete.
func (r *GroupModel) RemoveMemberAndPrune(ctx context.Context, groupID int64, userID uint64) (bool, error) {
	var pruned bool

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*types.GroupMember)(nil)).
			Where("group_id = ?", groupID).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to remove group member: %w", err)
		}

		remaining, err := tx.NewSelect().
			Model((*types.GroupMember)(nil)).
			Where("group_id = ?", groupID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count remaining members: %w", err)
		}

		if remaining > 0 {
			return nil
		}

		if _, err := tx.NewDelete().
			Model((*types.Group)(nil)).
			Where("id = ?", groupID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to prune empty group: %w", err)
		}

		pruned = true

		return nil
	})
	if err != nil {
		return false, err
	}

	if pruned {
		r.logger.Debug("Pruned empty group", zap.Int64("groupID", groupID))
	}

	return pruned, nil
}

// DeleteGroup deletes a group and all its memberships in one transaction.
// Memberships go first to satisfy the foreign key. Returns
// types.ErrGroupNotFound when the group row did not exist.
func (r *GroupModel) DeleteGroup(ctx context.Context, groupID int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*types.GroupMember)(nil)).
			Where("group_id = ?", groupID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete group members: %w", err)
		}

		res, err := tx.NewDelete().
			Model((*types.Group)(nil)).
			Where("id = ?", groupID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read delete result: %w", err)
		}

		if rows == 0 {
			return types.ErrGroupNotFound
		}

		return nil
	})
}

// PurgeGuild deletes every group and membership belonging to a guild. Used
// when the bot is removed from a guild.
func (r *GroupModel) PurgeGuild(ctx context.Context, guildID uint64) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*types.GroupMember)(nil)).
			Where("group_id IN (SELECT id FROM groups WHERE guild_id = ?)", guildID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete guild memberships: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*types.Group)(nil)).
			Where("guild_id = ?", guildID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete guild groups: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Purged guild groups", zap.Uint64("guildID", guildID))

	return nil
}
