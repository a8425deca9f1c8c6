package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/crumbhq/crumb-backend/internal/orders"
	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/crumbhq/crumb-backend/pkg/enums"
	"github.com/crumbhq/crumb-backend/pkg/logger"
	"go.uber.org/multierr"
)

const (
	staleOrderJobName      = "stale-order-cancel"
	defaultStaleOrderBatch = 200
)

type staleOrderFinder interface {
	FindStalePending(ctx context.Context, before time.Time, limit int) ([]models.Order, error)
}

type orderStatusUpdater interface {
	UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) (*models.Order, error)
}

// StaleOrderJobParams wires the stale order job.
type StaleOrderJobParams struct {
	Logger    *logger.Logger
	Repo      staleOrderFinder
	Orders    orderStatusUpdater
	BatchSize int
	Now       func() time.Time
}

// StaleOrderJob cancels PENDING orders whose pickup window has already closed,
// which also hands their slot capacity back.
type StaleOrderJob struct {
	logg   *logger.Logger
	repo   staleOrderFinder
	orders orderStatusUpdater
	batch  int
	now    func() time.Time
}

func NewStaleOrderJob(params StaleOrderJobParams) (*StaleOrderJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultStaleOrderBatch
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &StaleOrderJob{
		logg:   params.Logger,
		repo:   params.Repo,
		orders: params.Orders,
		batch:  batch,
		now:    now,
	}, nil
}

func (j *StaleOrderJob) Name() string { return staleOrderJobName }

func (j *StaleOrderJob) Run(ctx context.Context) (int, error) {
	stale, err := j.repo.FindStalePending(ctx, j.now(), j.batch)
	if err != nil {
		return 0, fmt.Errorf("find stale orders: %w", err)
	}

	cancelled := 0
	var errs error
	for _, order := range stale {
		_, err := j.orders.UpdateStatus(ctx, orders.UpdateStatusInput{
			OrderID:  order.ID,
			BakeryID: order.BakeryID,
			Status:   string(enums.OrderStatusCancelled),
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.OrderNumber, err))
			continue
		}
		cancelled++
	}
	if cancelled > 0 {
		j.logg.Info(j.logg.WithField(ctx, "cancelled", cancelled), "stale pending orders cancelled")
	}
	return cancelled, errs
}
