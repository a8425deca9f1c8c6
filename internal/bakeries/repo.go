package bakeries

import (
	"context"
	"errors"

	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes the bakery settings read by slot seeding and the API.
type Repository interface {
	Create(ctx context.Context, bakery *models.Bakery) (*models.Bakery, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bakery, error)
	ListSeedable(ctx context.Context) ([]models.Bakery, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bakery repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, bakery *models.Bakery) (*models.Bakery, error) {
	if bakery == nil {
		return nil, errors.New("bakery is required")
	}
	if bakery.ID == uuid.Nil {
		bakery.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(bakery).Error; err != nil {
		return nil, err
	}
	return bakery, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Bakery, error) {
	var bakery models.Bakery
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&bakery).Error; err != nil {
		return nil, err
	}
	return &bakery, nil
}

// ListSeedable returns active bakeries that opted into automatic slot seeding.
func (r *repository) ListSeedable(ctx context.Context) ([]models.Bakery, error) {
	var rows []models.Bakery
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND slot_seeding_enabled = ?", true, true).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
