package timeslots

import (
	"context"
	"fmt"
	"time"

	"github.com/crumbhq/crumb-backend/pkg/db"
	"github.com/crumbhq/crumb-backend/pkg/db/models"
	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
	"github.com/crumbhq/crumb-backend/pkg/logger"
	"github.com/google/uuid"
)

// Service exposes slot browsing and bakery-side slot management.
type Service interface {
	ListAvailable(ctx context.Context, bakeryID uuid.UUID) (map[string][]models.TimeSlot, error)
	ListForBakery(ctx context.Context, bakeryID uuid.UUID, from, to time.Time) ([]SlotView, error)
	Create(ctx context.Context, input CreateSlotInput) (*models.TimeSlot, error)
	Generate(ctx context.Context, input GenerateSlotsInput) ([]models.TimeSlot, error)
	Deactivate(ctx context.Context, bakeryID, slotID uuid.UUID) error
	SeedBakery(ctx context.Context, bakery models.Bakery, from time.Time) (SeedResult, error)
}

// ServiceParams wires the slot service.
type ServiceParams struct {
	Repo               Repository
	Logger             *logger.Logger
	MinDurationMinutes int
	Location           *time.Location
	Now                func() time.Time
}

type service struct {
	repo        Repository
	logg        *logger.Logger
	minDuration int
	loc         *time.Location
	now         func() time.Time
}

// NewService builds the slot service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("timeslots repository required")
	}
	minDuration := params.MinDurationMinutes
	if minDuration <= 0 {
		minDuration = DefaultMinDurationMinutes
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:        params.Repo,
		logg:        params.Logger,
		minDuration: minDuration,
		loc:         loc,
		now:         now,
	}, nil
}

func (s *service) ListAvailable(ctx context.Context, bakeryID uuid.UUID) (map[string][]models.TimeSlot, error) {
	if bakeryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bakery id required")
	}
	now := s.now()
	slots, err := s.repo.ListUpcoming(ctx, bakeryID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list slots")
	}
	return GroupByDate(FilterAvailable(slots, now)), nil
}

func (s *service) ListForBakery(ctx context.Context, bakeryID uuid.UUID, from, to time.Time) ([]SlotView, error) {
	if bakeryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bakery id required")
	}
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range end must be after range start").
			WithDetails(map[string]any{"from": from, "to": to})
	}
	slots, err := s.repo.ListRange(ctx, bakeryID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list slots")
	}
	now := s.now()
	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, newSlotView(slot, now))
	}
	return views, nil
}

func (s *service) Create(ctx context.Context, input CreateSlotInput) (*models.TimeSlot, error) {
	slot := models.TimeSlot{
		BakeryID:  input.BakeryID,
		StartTime: input.StartTime.UTC(),
		EndTime:   input.EndTime.UTC(),
		MaxOrders: input.MaxOrders,
		IsActive:  true,
	}
	if err := s.validateSlot(slot); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &slot)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a slot already starts at this time")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create slot")
	}
	return created, nil
}

func (s *service) validateSlot(slot models.TimeSlot) error {
	details := map[string]any{}
	if slot.BakeryID == uuid.Nil {
		details["bakery_id"] = "required"
	}
	if !slot.EndTime.After(slot.StartTime) {
		details["end_time"] = "must be after start_time"
	} else if !IsDurationValid(slot, s.minDuration) {
		details["end_time"] = fmt.Sprintf("slot must last at least %d minutes", s.minDuration)
	}
	if slot.MaxOrders <= 0 {
		details["max_orders"] = "must be positive"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid time slot").WithDetails(details)
	}
	return nil
}

// Generate persists the generated windows of one day, skipping start times the
// bakery already has and windows that have already begun.
func (s *service) Generate(ctx context.Context, input GenerateSlotsInput) ([]models.TimeSlot, error) {
	if input.BakeryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bakery id required")
	}
	if input.IntervalMinutes > 0 && input.IntervalMinutes < s.minDuration {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "interval shorter than minimum slot duration").
			WithDetails(map[string]any{"interval_minutes": input.IntervalMinutes, "min_minutes": s.minDuration})
	}
	loc := input.Location
	if loc == nil {
		loc = s.loc
	}
	date := time.Date(input.Date.Year(), input.Date.Month(), input.Date.Day(), 0, 0, 0, 0, loc)
	templates, err := GenerateSlots(GenerateParams{
		Date:            date,
		StartHour:       input.StartHour,
		EndHour:         input.EndHour,
		IntervalMinutes: input.IntervalMinutes,
		MaxOrders:       input.MaxOrders,
	})
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return []models.TimeSlot{}, nil
	}

	first := templates[0].StartTime
	last := templates[len(templates)-1].StartTime
	existing, err := s.repo.ListRange(ctx, input.BakeryID, first, last.Add(time.Nanosecond))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list existing slots")
	}
	taken := make(map[int64]struct{}, len(existing))
	for _, slot := range existing {
		taken[slot.StartTime.Unix()] = struct{}{}
	}

	now := s.now()
	slots := make([]models.TimeSlot, 0, len(templates))
	for _, tpl := range templates {
		if _, ok := taken[tpl.StartTime.Unix()]; ok {
			continue
		}
		if !tpl.StartTime.After(now) {
			continue
		}
		slots = append(slots, models.TimeSlot{
			BakeryID:  input.BakeryID,
			StartTime: tpl.StartTime.UTC(),
			EndTime:   tpl.EndTime.UTC(),
			MaxOrders: tpl.MaxOrders,
			IsActive:  true,
		})
	}
	if err := s.repo.CreateMany(ctx, slots); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slots were generated concurrently; retry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create slots")
	}
	return slots, nil
}

func (s *service) Deactivate(ctx context.Context, bakeryID, slotID uuid.UUID) error {
	ok, err := s.repo.Deactivate(ctx, bakeryID, slotID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate slot")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "slot not found")
	}
	return nil
}

// SeedBakery generates BookingHorizonDays days of windows from the bakery's settings.
func (s *service) SeedBakery(ctx context.Context, bakery models.Bakery, from time.Time) (SeedResult, error) {
	result := SeedResult{BakeryID: bakery.ID}
	if !bakery.IsActive || !bakery.SlotSeedingEnabled {
		return result, nil
	}
	loc := s.loc
	if bakery.Timezone != "" {
		parsed, err := time.LoadLocation(bakery.Timezone)
		if err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bakery timezone")
		}
		loc = parsed
	}

	local := from.In(loc)
	for day := 0; day < bakery.BookingHorizonDays; day++ {
		date := time.Date(local.Year(), local.Month(), local.Day()+day, 0, 0, 0, 0, loc)
		created, err := s.Generate(ctx, GenerateSlotsInput{
			BakeryID:        bakery.ID,
			Date:            date,
			StartHour:       bakery.OpeningHour,
			EndHour:         bakery.ClosingHour,
			IntervalMinutes: bakery.SlotIntervalMinutes,
			MaxOrders:       bakery.SlotCapacity,
			Location:        loc,
		})
		if err != nil {
			return result, fmt.Errorf("seed %s: %w", date.Format(dateKeyLayout), err)
		}
		result.Days++
		result.Created += len(created)
	}

	if s.logg != nil && result.Created > 0 {
		logCtx := s.logg.WithBakeryID(ctx, bakery.ID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"days": result.Days, "created": result.Created})
		s.logg.Info(logCtx, "slots seeded")
	}
	return result, nil
}
