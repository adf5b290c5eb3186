package migrations

import (
	"context"
	"fmt"

	"github.com/pingcrew/pingcrew/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		// Create tables
		models := []any{
			(*types.Group)(nil),
			(*types.GroupMember)(nil),
		}

		for _, model := range models {
			if _, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table for %T: %w", model, err)
			}
		}

		// Group names are unique per guild. This index is the authoritative
		// guard against duplicate-name races between concurrent creates;
		// handler-level availability checks are advisory only.
		if _, err := db.ExecContext(ctx, `
			CREATE UNIQUE INDEX IF NOT EXISTS groups_guild_id_name_idx
			ON groups (guild_id, name)
		`); err != nil {
			return fmt.Errorf("failed to create unique group name index: %w", err)
		}

		// Memberships must reference an existing group. No ON DELETE CASCADE:
		// the registry deletes memberships itself inside the same transaction
		// that removes the group row.
		if _, err := db.ExecContext(ctx, `
			ALTER TABLE group_members
			ADD CONSTRAINT group_members_group_id_fkey
			FOREIGN KEY (group_id) REFERENCES groups (id)
		`); err != nil {
			return fmt.Errorf("failed to create membership foreign key: %w", err)
		}

		// Member listings for a guild join through groups; index the lookup side.
		if _, err := db.ExecContext(ctx, `
			CREATE INDEX IF NOT EXISTS group_members_user_id_idx
			ON group_members (user_id)
		`); err != nil {
			return fmt.Errorf("failed to create membership user index: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		for _, table := range []string{"group_members", "groups"} {
			if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}

		return nil
	})
}
