package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crumbhq/crumb-backend/internal/timeslots"
	"github.com/crumbhq/crumb-backend/pkg/db"
	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/crumbhq/crumb-backend/pkg/enums"
	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
	"github.com/crumbhq/crumb-backend/pkg/logger"
	"github.com/crumbhq/crumb-backend/pkg/metrics"
	"github.com/crumbhq/crumb-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service places orders against pickup slots and drives their status machine.
type Service interface {
	Place(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListForBakery(ctx context.Context, params ListParams) (*ListResult, error)
}

// ServiceParams wires the orders service.
type ServiceParams struct {
	Repo    Repository
	Slots   timeslots.Repository
	Tx      txRunner
	Logger  *logger.Logger
	Metrics *metrics.BookingMetrics
	Now     func() time.Time
}

type service struct {
	repo    Repository
	slots   timeslots.Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.BookingMetrics
	now     func() time.Time
}

// NewService builds the orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Slots == nil {
		return nil, fmt.Errorf("timeslots repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		slots:   params.Slots,
		tx:      params.Tx,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

var errSlotUnavailable = pkgerrors.New(pkgerrors.CodeStateConflict, "pickup slot is no longer available")

func (s *service) Place(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if input.BakeryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bakery id required")
	}
	if input.TimeSlotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup slot required")
	}

	now := s.now()
	number := strings.TrimSpace(input.OrderNumber)
	if number == "" {
		generated, err := NewOrderNumber(now)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		number = generated
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, models.OrderItem{
			ArticleID:  item.ArticleID,
			Name:       item.Name,
			CategoryID: item.CategoryID,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			LineTotal:  lineTotal,
		})
	}

	result := ValidateOrderData(OrderInput{
		OrderNumber:  number,
		CustomerName: input.CustomerName,
		CustomerID:   input.CustomerID,
		TotalAmount:  &total,
		Items:        input.Items,
	})
	if err := result.Err(); err != nil {
		return nil, err
	}

	slotID := input.TimeSlotID
	order := &models.Order{
		BakeryID:      input.BakeryID,
		TimeSlotID:    &slotID,
		OrderNumber:   number,
		CustomerID:    input.CustomerID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		TotalAmount:   total,
		Notes:         input.Notes,
		Items:         items,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		slotRepo := s.slots.WithTx(tx)
		slot, err := slotRepo.FindByID(ctx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "pickup slot not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pickup slot")
		}
		if slot.BakeryID != input.BakeryID {
			return pkgerrors.New(pkgerrors.CodeValidation, "pickup slot belongs to another bakery")
		}
		if !timeslots.CanBook(*slot, 1, now) {
			s.metrics.ObserveReservation(false)
			return errSlotUnavailable
		}
		reserved, err := slotRepo.Reserve(ctx, slotID, 1, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve pickup slot")
		}
		s.metrics.ObserveReservation(reserved)
		if !reserved {
			return errSlotUnavailable
		}

		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "order_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order number already used")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderPlaced()
	if s.logg != nil {
		logCtx := s.logg.WithBakeryID(ctx, input.BakeryID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"time_slot_id": slotID.String(),
		})
		s.logg.Info(logCtx, "order placed")
	}
	return order, nil
}

// stampColumns records when an order entered a milestone status.
var stampColumns = map[enums.OrderStatus]string{
	enums.OrderStatusConfirmed: "confirmed_at",
	enums.OrderStatusReady:     "ready_at",
	enums.OrderStatusCompleted: "completed_at",
	enums.OrderStatusCancelled: "cancelled_at",
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	target, err := enums.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(input.Status)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.BakeryID != input.BakeryID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another bakery")
		}
		if order.Status == target {
			updated = order
			return nil
		}
		if !IsValidTransition(string(order.Status), string(target)) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
				WithDetails(map[string]any{
					"from":    order.Status,
					"to":      target,
					"allowed": order.Status.AllowedTransitions(),
				})
		}

		at := s.now()
		ok, err := repo.UpdateStatus(ctx, order.ID, order.Status, target, stampColumns[target], at)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		if target == enums.OrderStatusCancelled && order.TimeSlotID != nil {
			released, err := s.slots.WithTx(tx).Release(ctx, *order.TimeSlotID, 1)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release pickup slot")
			}
			if !released && s.logg != nil {
				logCtx := s.logg.WithFields(ctx, map[string]any{
					"order_id":     order.ID.String(),
					"time_slot_id": order.TimeSlotID.String(),
				})
				s.logg.Warn(logCtx, "pickup slot had no reservation to release")
			}
		}

		s.metrics.ObserveTransition(string(order.Status), string(target))
		updated, err = repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListForBakery(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.BakeryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bakery id required")
	}
	query := listQuery{
		BakeryID: params.BakeryID,
		Filters:  params.Filters,
		Limit:    params.Page.Limit,
	}
	if params.Page.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Page.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	result := &ListResult{Orders: rows}
	if result.Orders == nil {
		result.Orders = []models.Order{}
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}
