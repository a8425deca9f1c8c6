package bakeries

import (
	"context"
	"testing"

	pkgdb "github.com/crumbhq/crumb-backend/pkg/db"
	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBakeriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), pkgdb.GormConfig())
	require.NoError(t, err)

	bakeries := `
CREATE TABLE IF NOT EXISTS bakeries (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  timezone TEXT NOT NULL,
  opening_hour INTEGER NOT NULL,
  closing_hour INTEGER NOT NULL,
  slot_interval_minutes INTEGER NOT NULL,
  slot_capacity INTEGER NOT NULL,
  booking_horizon_days INTEGER NOT NULL,
  slot_seeding_enabled INTEGER NOT NULL,
  is_active INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(bakeries).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func bakery(slug string, active, seeding bool) *models.Bakery {
	return &models.Bakery{
		Slug:                slug,
		Name:                slug,
		Timezone:            "Europe/Paris",
		OpeningHour:         7,
		ClosingHour:         19,
		SlotIntervalMinutes: 30,
		SlotCapacity:        10,
		BookingHorizonDays:  7,
		SlotSeedingEnabled:  seeding,
		IsActive:            active,
	}
}

func TestListSeedable(t *testing.T) {
	repo := NewRepository(setupBakeriesTestDB(t))
	ctx := context.Background()

	seeded, err := repo.Create(ctx, bakery("maison-dupont", true, true))
	require.NoError(t, err)
	_, err = repo.Create(ctx, bakery("manual-slots", true, false))
	require.NoError(t, err)
	_, err = repo.Create(ctx, bakery("closed", false, true))
	require.NoError(t, err)

	rows, err := repo.ListSeedable(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, seeded.ID, rows[0].ID)
	assert.Equal(t, "Europe/Paris", rows[0].Timezone)
}

func TestFindByID(t *testing.T) {
	repo := NewRepository(setupBakeriesTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, bakery("boulangerie", true, true))
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "boulangerie", found.Slug)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
