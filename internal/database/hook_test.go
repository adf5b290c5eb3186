package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestQueryHook(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	hook := NewHook(zap.New(core))
	ctx := context.Background()

	t.Run("successful queries log at debug", func(t *testing.T) {
		hook.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()})

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.DebugLevel, entries[0].Level)
	})

	t.Run("failed queries log at error", func(t *testing.T) {
		hook.AfterQuery(ctx, &bun.QueryEvent{
			Query:     "SELECT 1",
			StartTime: time.Now(),
			Err:       errors.New("connection reset by peer"),
		})

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	})

	t.Run("empty result sets are not failures", func(t *testing.T) {
		hook.AfterQuery(ctx, &bun.QueryEvent{
			Query:     "SELECT 1",
			StartTime: time.Now(),
			Err:       sql.ErrNoRows,
		})

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.DebugLevel, entries[0].Level)
	})
}
