package database

import (
	"github.com/pingcrew/pingcrew/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	group *models.GroupModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		group: models.NewGroup(db, logger),
	}
}

// Group returns the group model repository.
func (r *Repository) Group() *models.GroupModel {
	return r.group
}
