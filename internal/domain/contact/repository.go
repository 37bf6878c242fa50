// internal/domain/contact/repository.go
package contact

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository persists contact messages
type Repository interface {
	Create(ctx context.Context, msg *Message) error
}

// GormRepository stores messages in Postgres through gorm
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a gorm-backed repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create inserts msg and fills its ID and CreatedAt
func (r *GormRepository) Create(ctx context.Context, msg *Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	return nil
}
