package orders

import (
	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/crumbhq/crumb-backend/pkg/enums"
	"github.com/crumbhq/crumb-backend/pkg/pagination"
	"github.com/google/uuid"
)

// PlaceOrderInput carries a checkout request for one bakery and pickup slot.
type PlaceOrderInput struct {
	BakeryID      uuid.UUID
	TimeSlotID    uuid.UUID
	OrderNumber   string
	CustomerID    *string
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	Notes         *string
	Items         []OrderItemInput
}

// UpdateStatusInput asks to move an order owned by BakeryID to Status.
type UpdateStatusInput struct {
	OrderID  uuid.UUID
	BakeryID uuid.UUID
	Status   string
}

// ListFilters narrows a bakery's order list.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}

// ListParams combines filters with keyset pagination.
type ListParams struct {
	BakeryID uuid.UUID
	Filters  ListFilters
	Page     pagination.Params
}

// ListResult is one page of orders.
type ListResult struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type listQuery struct {
	BakeryID uuid.UUID
	Filters  ListFilters
	Limit    int
	Cursor   *pagination.Cursor
}
