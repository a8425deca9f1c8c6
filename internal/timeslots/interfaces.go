package timeslots

import (
	"context"
	"time"

	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for pickup slots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, slot *models.TimeSlot) (*models.TimeSlot, error)
	CreateMany(ctx context.Context, slots []models.TimeSlot) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TimeSlot, error)
	ListUpcoming(ctx context.Context, bakeryID uuid.UUID, from time.Time) ([]models.TimeSlot, error)
	ListRange(ctx context.Context, bakeryID uuid.UUID, from, to time.Time) ([]models.TimeSlot, error)
	Reserve(ctx context.Context, slotID uuid.UUID, qty int, now time.Time) (bool, error)
	Release(ctx context.Context, slotID uuid.UUID, qty int) (bool, error)
	Deactivate(ctx context.Context, bakeryID, slotID uuid.UUID) (bool, error)
}
