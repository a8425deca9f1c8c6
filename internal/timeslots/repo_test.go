package timeslots

import (
	"context"
	"sync"
	"testing"
	"time"

	pkgdb "github.com/crumbhq/crumb-backend/pkg/db"
	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSlotsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), pkgdb.GormConfig())
	require.NoError(t, err)

	slots := `
CREATE TABLE IF NOT EXISTS time_slots (
  id TEXT PRIMARY KEY,
  bakery_id TEXT NOT NULL,
  start_time DATETIME NOT NULL,
  end_time DATETIME NOT NULL,
  max_orders INTEGER NOT NULL,
  current_orders INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (bakery_id, start_time)
);`
	require.NoError(t, db.Exec(slots).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedSlot(t *testing.T, repo Repository, bakeryID uuid.UUID, start time.Time, maxOrders, current int, active bool) *models.TimeSlot {
	t.Helper()
	slot, err := repo.Create(context.Background(), &models.TimeSlot{
		BakeryID:      bakeryID,
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		MaxOrders:     maxOrders,
		CurrentOrders: current,
		IsActive:      active,
	})
	require.NoError(t, err)
	return slot
}

func TestRepositoryReserveRespectsCapacity(t *testing.T) {
	db := setupSlotsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	bakeryID := uuid.New()
	slot := seedSlot(t, repo, bakeryID, refNow.Add(2*time.Hour), 2, 0, true)

	ok, err := repo.Reserve(ctx, slot.ID, 1, refNow)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Reserve(ctx, slot.ID, 2, refNow)
	require.NoError(t, err)
	assert.False(t, ok, "reservation beyond capacity must be refused")

	ok, err = repo.Reserve(ctx, slot.ID, 1, refNow)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Reserve(ctx, slot.ID, 1, refNow)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentOrders)
}

func TestRepositoryReserveRejectsInactiveAndPast(t *testing.T) {
	db := setupSlotsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	bakeryID := uuid.New()

	inactive := seedSlot(t, repo, bakeryID, refNow.Add(time.Hour), 5, 0, false)
	ok, err := repo.Reserve(ctx, inactive.ID, 1, refNow)
	require.NoError(t, err)
	assert.False(t, ok)

	past := seedSlot(t, repo, bakeryID, refNow.Add(-time.Hour), 5, 0, true)
	ok, err = repo.Reserve(ctx, past.ID, 1, refNow)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Reserve(ctx, past.ID, 0, refNow)
	assert.Error(t, err)
}

func TestRepositoryConcurrentReservationsNeverOverbook(t *testing.T) {
	db := setupSlotsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	slot := seedSlot(t, repo, uuid.New(), refNow.Add(time.Hour), 3, 0, true)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Reserve(ctx, slot.ID, 1, refNow)
			if err != nil {
				return
			}
			if ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	stored, err := repo.FindByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, stored.CurrentOrders, stored.MaxOrders)
	assert.Equal(t, accepted, stored.CurrentOrders)
}

func TestRepositoryRelease(t *testing.T) {
	db := setupSlotsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	slot := seedSlot(t, repo, uuid.New(), refNow.Add(time.Hour), 5, 2, true)

	ok, err := repo.Release(ctx, slot.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Release(ctx, slot.ID, 5)
	require.NoError(t, err)
	assert.False(t, ok, "release must not drive the counter negative")

	stored, err := repo.FindByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentOrders)
}

func TestRepositoryListUpcomingAndRange(t *testing.T) {
	db := setupSlotsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	bakeryID := uuid.New()
	other := uuid.New()

	seedSlot(t, repo, bakeryID, refNow.Add(3*time.Hour), 5, 0, true)
	seedSlot(t, repo, bakeryID, refNow.Add(time.Hour), 5, 0, true)
	seedSlot(t, repo, bakeryID, refNow.Add(-time.Hour), 5, 0, true)
	seedSlot(t, repo, bakeryID, refNow.Add(2*time.Hour), 5, 0, false)
	seedSlot(t, repo, other, refNow.Add(time.Hour), 5, 0, true)

	upcoming, err := repo.ListUpcoming(ctx, bakeryID, refNow)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.True(t, upcoming[0].StartTime.Before(upcoming[1].StartTime))

	ranged, err := repo.ListRange(ctx, bakeryID, refNow.Add(-2*time.Hour), refNow.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Len(t, ranged, 4, "range listing includes past and inactive slots")
}

func TestRepositoryDeactivateScopesToBakery(t *testing.T) {
	db := setupSlotsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	bakeryID := uuid.New()
	slot := seedSlot(t, repo, bakeryID, refNow.Add(time.Hour), 5, 0, true)

	ok, err := repo.Deactivate(ctx, uuid.New(), slot.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Deactivate(ctx, bakeryID, slot.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := repo.FindByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}
