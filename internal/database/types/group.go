// Package types contains the database row types and their shared rules.
package types

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrGroupExists      = errors.New("a group with this name already exists")
	ErrInvalidGroupName = errors.New("group names must be 2-32 characters using letters, digits, spaces, hyphens or underscores")
)

// Group name constraints.
const (
	GroupNameMinLength = 2
	GroupNameMaxLength = 32
)

var groupNamePattern = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)

// ValidateGroupName reports whether name is a usable group name after
// trimming surrounding whitespace. Returns ErrInvalidGroupName otherwise.
func ValidateGroupName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < GroupNameMinLength || len(name) > GroupNameMaxLength {
		return ErrInvalidGroupName
	}

	if !groupNamePattern.MatchString(name) {
		return ErrInvalidGroupName
	}

	return nil
}

// Group is a named, guild-scoped collection of users used as a ping target.
// Names are unique per guild, exact-match and case-sensitive.
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:g"`

	ID         int64     `bun:",pk,autoincrement" json:"id"`
	GuildID    uint64    `bun:",notnull"          json:"guildId"`
	Name       string    `bun:",notnull"          json:"name"`
	CreatorID  uint64    `bun:",notnull"          json:"creatorId"`
	LastUsedAt time.Time `bun:",notnull"          json:"lastUsedAt"`
}

// GroupMember records that a user belongs to a group. A group never persists
// with zero members; the last leave deletes the group row as well.
type GroupMember struct {
	bun.BaseModel `bun:"table:group_members,alias:gm"`

	GroupID int64     `bun:",pk"      json:"groupId"`
	UserID  uint64    `bun:",pk"      json:"userId"`
	AddedAt time.Time `bun:",notnull" json:"addedAt"`
}
