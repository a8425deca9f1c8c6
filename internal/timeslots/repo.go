package timeslots

import (
	"context"
	"errors"
	"time"

	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a slot repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, slot *models.TimeSlot) (*models.TimeSlot, error) {
	if slot == nil {
		return nil, errors.New("slot is required")
	}
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(slot).Error; err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *repository) CreateMany(ctx context.Context, slots []models.TimeSlot) error {
	if len(slots) == 0 {
		return nil
	}
	for i := range slots {
		if slots[i].ID == uuid.Nil {
			slots[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&slots).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&slot).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *repository) ListUpcoming(ctx context.Context, bakeryID uuid.UUID, from time.Time) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	err := r.db.WithContext(ctx).
		Where("bakery_id = ? AND is_active = ? AND start_time > ?", bakeryID, true, from).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *repository) ListRange(ctx context.Context, bakeryID uuid.UUID, from, to time.Time) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	err := r.db.WithContext(ctx).
		Where("bakery_id = ? AND start_time >= ? AND start_time < ?", bakeryID, from, to).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// Reserve claims qty places on the slot in a single conditional UPDATE. It
// reports false when the slot is inactive, already started, or lacks room.
func (r *repository) Reserve(ctx context.Context, slotID uuid.UUID, qty int, now time.Time) (bool, error) {
	if qty <= 0 {
		return false, errors.New("reservation quantity must be positive")
	}
	res := r.db.WithContext(ctx).Exec(
		`UPDATE time_slots
SET current_orders = current_orders + ?, updated_at = ?
WHERE id = ? AND is_active = ? AND current_orders + ? <= max_orders AND start_time > ?`,
		qty, now, slotID, true, qty, now,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release gives back qty places, refusing to drive the counter below zero.
func (r *repository) Release(ctx context.Context, slotID uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, errors.New("release quantity must be positive")
	}
	res := r.db.WithContext(ctx).Exec(
		`UPDATE time_slots
SET current_orders = current_orders - ?, updated_at = ?
WHERE id = ? AND current_orders >= ?`,
		qty, time.Now().UTC(), slotID, qty,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Deactivate(ctx context.Context, bakeryID, slotID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("id = ? AND bakery_id = ?", slotID, bakeryID).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
