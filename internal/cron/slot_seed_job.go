package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/crumbhq/crumb-backend/internal/timeslots"
	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/crumbhq/crumb-backend/pkg/logger"
	"go.uber.org/multierr"
)

const slotSeedJobName = "slot-seed"

type seedableBakeries interface {
	ListSeedable(ctx context.Context) ([]models.Bakery, error)
}

type slotSeeder interface {
	SeedBakery(ctx context.Context, bakery models.Bakery, from time.Time) (timeslots.SeedResult, error)
}

// SlotSeedJobParams wires the slot seeding job.
type SlotSeedJobParams struct {
	Logger   *logger.Logger
	Bakeries seedableBakeries
	Slots    slotSeeder
	Now      func() time.Time
}

// SlotSeedJob keeps every seedable bakery's booking horizon filled with pickup windows.
type SlotSeedJob struct {
	logg     *logger.Logger
	bakeries seedableBakeries
	slots    slotSeeder
	now      func() time.Time
}

func NewSlotSeedJob(params SlotSeedJobParams) (*SlotSeedJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Bakeries == nil {
		return nil, fmt.Errorf("bakeries repository required")
	}
	if params.Slots == nil {
		return nil, fmt.Errorf("timeslots service required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &SlotSeedJob{
		logg:     params.Logger,
		bakeries: params.Bakeries,
		slots:    params.Slots,
		now:      now,
	}, nil
}

func (j *SlotSeedJob) Name() string { return slotSeedJobName }

// Run seeds each bakery independently; one bakery failing does not block the others.
func (j *SlotSeedJob) Run(ctx context.Context) (int, error) {
	bakeries, err := j.bakeries.ListSeedable(ctx)
	if err != nil {
		return 0, fmt.Errorf("list seedable bakeries: %w", err)
	}

	now := j.now()
	created := 0
	var errs error
	for _, bakery := range bakeries {
		result, err := j.slots.SeedBakery(ctx, bakery, now)
		created += result.Created
		if err != nil {
			bakeryCtx := j.logg.WithBakeryID(ctx, bakery.ID.String())
			j.logg.Error(bakeryCtx, "slot seeding failed", err)
			errs = multierr.Append(errs, fmt.Errorf("bakery %s: %w", bakery.ID, err))
		}
	}
	return created, errs
}
