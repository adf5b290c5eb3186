// Package utils contains small helpers shared by the command handlers.
package utils

import (
	"fmt"
	"strings"
)

// MaxMessageLength is Discord's content length limit per message.
const MaxMessageLength = 2000

// UserMention renders a user id as a Discord mention.
func UserMention(userID uint64) string {
	return fmt.Sprintf("<@%d>", userID)
}

// ChunkMentions renders the user ids as mentions and packs them into message
// contents no longer than limit characters each. Large groups need several
// messages because of the content cap.
func ChunkMentions(userIDs []uint64, limit int) []string {
	var (
		chunks  []string
		builder strings.Builder
	)

	for _, userID := range userIDs {
		mention := UserMention(userID)

		if builder.Len() > 0 && builder.Len()+1+len(mention) > limit {
			chunks = append(chunks, builder.String())
			builder.Reset()
		}

		if builder.Len() > 0 {
			builder.WriteByte(' ')
		}

		builder.WriteString(mention)
	}

	if builder.Len() > 0 {
		chunks = append(chunks, builder.String())
	}

	return chunks
}
