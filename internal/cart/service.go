package cart

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type cartStore interface {
	Get(ctx context.Context, sessionID string) (Cart, error)
	Update(ctx context.Context, sessionID string, fn func(Cart) (Cart, error)) (Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

// Service applies the cart rules to session carts. Every change is a single
// read-modify-write on the store, so two requests editing the same session
// both land.
type Service interface {
	Get(ctx context.Context, sessionID string) (Cart, error)
	Summary(ctx context.Context, sessionID string) (Summary, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, itemID string, qty int) (Cart, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// AddItemInput carries the article snapshot to add to the cart.
type AddItemInput struct {
	ID         string
	Name       string
	Price      decimal.Decimal
	CategoryID string
	Quantity   int
}

// maxPriceDecimals matches the numeric(12,2) price columns orders are stored in.
const maxPriceDecimals = 2

type service struct {
	store        cartStore
	maxLineItems int
}

// NewService builds the cart service. maxLineItems <= 0 disables the line cap.
func NewService(store cartStore, maxLineItems int) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{store: store, maxLineItems: maxLineItems}, nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	return nil
}

func (s *service) load(ctx context.Context, sessionID string) (Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return Cart{}, err
	}
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

func (s *service) mutate(ctx context.Context, sessionID string, fn func(Cart) (Cart, error)) (Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return Cart{}, err
	}
	c, err := s.store.Update(ctx, sessionID, fn)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return Cart{}, err
		}
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (Cart, error) {
	return s.load(ctx, sessionID)
}

func (s *service) Summary(ctx context.Context, sessionID string) (Summary, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(c), nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (Cart, error) {
	if err := validateAddItem(input); err != nil {
		return Cart{}, err
	}
	return s.mutate(ctx, sessionID, func(c Cart) (Cart, error) {
		if s.maxLineItems > 0 && GetQuantity(c, input.ID) == 0 && len(c.Items) >= s.maxLineItems {
			return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "cart line limit reached").
				WithDetails(map[string]any{"max_line_items": s.maxLineItems})
		}
		return AddItem(c, Item{
			ID:         input.ID,
			Name:       input.Name,
			Price:      input.Price,
			CategoryID: input.CategoryID,
		}, input.Quantity), nil
	})
}

func validateAddItem(input AddItemInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.ID) == "" {
		details["id"] = "required"
	}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	switch {
	case input.Price.IsNegative():
		details["price"] = "must not be negative"
	case !input.Price.Equal(input.Price.Round(maxPriceDecimals)):
		details["price"] = fmt.Sprintf("must have at most %d decimal places", maxPriceDecimals)
	}
	if input.Quantity <= 0 {
		details["quantity"] = "must be positive"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").WithDetails(details)
	}
	return nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID, itemID string, qty int) (Cart, error) {
	return s.mutate(ctx, sessionID, func(c Cart) (Cart, error) {
		return UpdateQuantity(c, itemID, qty), nil
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID, itemID string) (Cart, error) {
	return s.mutate(ctx, sessionID, func(c Cart) (Cart, error) {
		return RemoveItem(c, itemID), nil
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
