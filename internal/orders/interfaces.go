package orders

import (
	"context"
	"time"

	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/crumbhq/crumb-backend/pkg/enums"
	"github.com/crumbhq/crumb-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, query listQuery) ([]models.Order, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, stampColumn string, at time.Time) (bool, error)
	FindStalePending(ctx context.Context, before time.Time, limit int) ([]models.Order, error)
}
