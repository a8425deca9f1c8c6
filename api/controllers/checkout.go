package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/crumbhq/crumb-backend/api/middleware"
	"github.com/crumbhq/crumb-backend/api/responses"
	"github.com/crumbhq/crumb-backend/api/validators"
	cartsvc "github.com/crumbhq/crumb-backend/internal/cart"
	"github.com/crumbhq/crumb-backend/internal/orders"
	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
	"github.com/crumbhq/crumb-backend/pkg/logger"
)

const (
	maxCustomerFieldLength = 160
	maxNotesLength         = 500
)

type checkoutRequest struct {
	TimeSlotID    uuid.UUID `json:"time_slot_id" validate:"required"`
	CustomerID    *string   `json:"customer_id,omitempty"`
	CustomerName  *string   `json:"customer_name,omitempty"`
	CustomerEmail *string   `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone *string   `json:"customer_phone,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
}

// Checkout places an order for the session cart against one pickup slot of the
// bakery, then empties the cart.
func Checkout(ordersSvc orders.Service, cartSvc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		bakeryID, ok := middleware.BakeryIDFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "bakery context missing"))
			return
		}
		sessionID := middleware.CartSessionFromContext(ctx)

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		c, err := cartSvc.Get(ctx, sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if cartsvc.IsEmpty(c) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
			return
		}

		order, err := ordersSvc.Place(ctx, orders.PlaceOrderInput{
			BakeryID:      bakeryID,
			TimeSlotID:    payload.TimeSlotID,
			CustomerID:    sanitized(payload.CustomerID, maxCustomerFieldLength),
			CustomerName:  sanitized(payload.CustomerName, maxCustomerFieldLength),
			CustomerEmail: sanitized(payload.CustomerEmail, maxCustomerFieldLength),
			CustomerPhone: sanitized(payload.CustomerPhone, maxCustomerFieldLength),
			Notes:         sanitized(payload.Notes, maxNotesLength),
			Items:         orderItemsFromCart(c),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// the order stands even if the cart cannot be cleared; the session expires on its own
		if err := cartSvc.Clear(ctx, sessionID); err != nil && logg != nil {
			logg.Warn(logg.WithField(ctx, "order_id", order.ID.String()), "cart not cleared after checkout")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func orderItemsFromCart(c cartsvc.Cart) []orders.OrderItemInput {
	items := make([]orders.OrderItemInput, 0, len(c.Items))
	for _, item := range c.Items {
		var categoryID *string
		if item.CategoryID != "" {
			category := item.CategoryID
			categoryID = &category
		}
		items = append(items, orders.OrderItemInput{
			ArticleID:  item.ID,
			Name:       item.Name,
			CategoryID: categoryID,
			UnitPrice:  item.Price,
			Quantity:   item.Quantity,
		})
	}
	return items
}

func sanitized(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	clean := validators.SanitizeString(*value, maxLen)
	if clean == "" {
		return nil
	}
	return &clean
}
