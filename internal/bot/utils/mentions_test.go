package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMention(t *testing.T) {
	assert.Equal(t, "<@123456789>", UserMention(123456789))
}

func TestChunkMentions(t *testing.T) {
	t.Run("empty input yields no chunks", func(t *testing.T) {
		assert.Empty(t, ChunkMentions(nil, MaxMessageLength))
	})

	t.Run("small group fits one chunk", func(t *testing.T) {
		chunks := ChunkMentions([]uint64{1, 2, 3}, MaxMessageLength)
		require.Len(t, chunks, 1)
		assert.Equal(t, "<@1> <@2> <@3>", chunks[0])
	})

	t.Run("chunks respect the limit and keep every mention", func(t *testing.T) {
		userIDs := make([]uint64, 500)
		for i := range userIDs {
			userIDs[i] = uint64(100000000000000000 + i)
		}

		chunks := ChunkMentions(userIDs, MaxMessageLength)
		require.Greater(t, len(chunks), 1)

		total := 0
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), MaxMessageLength)
			total += strings.Count(chunk, "<@")
		}

		assert.Equal(t, len(userIDs), total)
	})

	t.Run("single oversized mention still emits a chunk", func(t *testing.T) {
		chunks := ChunkMentions([]uint64{42}, 3)
		require.Len(t, chunks, 1)
		assert.Equal(t, "<@42>", chunks[0])
	})
}
