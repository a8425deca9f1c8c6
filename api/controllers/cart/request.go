package cart

import (
	"github.com/shopspring/decimal"

	"github.com/crumbhq/crumb-backend/api/validators"
	cartsvc "github.com/crumbhq/crumb-backend/internal/cart"
)

const maxItemNameLength = 120

type addItemRequest struct {
	ID         string          `json:"id" validate:"required,max=64"`
	Name       string          `json:"name" validate:"required"`
	Price      decimal.Decimal `json:"price"`
	CategoryID string          `json:"category_id,omitempty" validate:"max=64"`
	Quantity   int             `json:"quantity" validate:"gt=0"`
}

func (p addItemRequest) toInput() cartsvc.AddItemInput {
	return cartsvc.AddItemInput{
		ID:         validators.SanitizeString(p.ID, 0),
		Name:       validators.SanitizeString(p.Name, maxItemNameLength),
		Price:      p.Price,
		CategoryID: validators.SanitizeString(p.CategoryID, 0),
		Quantity:   p.Quantity,
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}
