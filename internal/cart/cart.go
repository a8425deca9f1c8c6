package cart

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
)

// Item is one line of a cart: an article, its unit price and how many are wanted.
type Item struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	CategoryID string          `json:"category_id,omitempty"`
}

// LineTotal is Price multiplied by Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an immutable value. TotalQuantity and TotalAmount are derived from
// Items and recomputed by every function that returns a Cart.
type Cart struct {
	Items         []Item          `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// Summary is the read-only digest of a cart.
type Summary struct {
	ItemCount        int             `json:"item_count"`
	TotalQuantity    int             `json:"total_quantity"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AverageItemPrice decimal.Decimal `json:"average_item_price"`
}

// Clear returns the canonical empty cart.
func Clear() Cart {
	return Cart{Items: []Item{}, TotalQuantity: 0, TotalAmount: decimal.Zero}
}

func withItems(items []Item) Cart {
	if items == nil {
		items = []Item{}
	}
	return Cart{
		Items:         items,
		TotalQuantity: TotalQuantity(items),
		TotalAmount:   TotalAmount(items),
	}
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items), len(items)+1)
	copy(out, items)
	return out
}

func indexOf(items []Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// AddItem increments the line matching item.ID by qty, or appends a new line.
// A non-positive qty leaves the cart unchanged.
func AddItem(c Cart, item Item, qty int) Cart {
	items := cloneItems(c.Items)
	if qty <= 0 {
		return withItems(items)
	}
	if idx := indexOf(items, item.ID); idx >= 0 {
		items[idx].Quantity += qty
		return withItems(items)
	}
	item.Quantity = qty
	return withItems(append(items, item))
}

// RemoveItem drops the line with the given id. Unknown ids are a no-op.
func RemoveItem(c Cart, id string) Cart {
	items := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	return withItems(items)
}

// UpdateQuantity replaces the quantity of a line; qty <= 0 removes it.
func UpdateQuantity(c Cart, id string, qty int) Cart {
	if qty <= 0 {
		return RemoveItem(c, id)
	}
	items := cloneItems(c.Items)
	if idx := indexOf(items, id); idx >= 0 {
		items[idx].Quantity = qty
	}
	return withItems(items)
}

// TotalQuantity sums the quantities of items.
func TotalQuantity(items []Item) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// TotalAmount sums price times quantity over items.
func TotalAmount(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// GetQuantity returns the quantity held for id, or 0.
func GetQuantity(c Cart, id string) int {
	if idx := indexOf(c.Items, id); idx >= 0 {
		return c.Items[idx].Quantity
	}
	return 0
}

// IsEmpty reports whether the cart has no lines. Checkout refuses such carts.
func IsEmpty(c Cart) bool {
	return len(c.Items) == 0
}

// ItemsByCategory returns the lines of one category in cart order.
func ItemsByCategory(c Cart, categoryID string) []Item {
	out := make([]Item, 0)
	for _, item := range c.Items {
		if item.CategoryID == categoryID {
			out = append(out, item)
		}
	}
	return out
}

// Summarize computes the cart digest. The average price is zero for an empty cart.
func Summarize(c Cart) Summary {
	qty := TotalQuantity(c.Items)
	amount := TotalAmount(c.Items)
	avg := decimal.Zero
	if qty > 0 {
		avg = amount.Div(decimal.NewFromInt(int64(qty)))
	}
	return Summary{
		ItemCount:        len(c.Items),
		TotalQuantity:    qty,
		TotalAmount:      amount,
		AverageItemPrice: avg,
	}
}

var hundred = decimal.NewFromInt(100)

// DiscountedPrice applies a percentage discount, rounded to cents.
func DiscountedPrice(price decimal.Decimal, percent decimal.Decimal) (decimal.Decimal, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be between 0 and 100").
			WithDetails(map[string]any{"percent": percent.String()})
	}
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	factor := hundred.Sub(percent).Div(hundred)
	return price.Mul(factor).Round(2), nil
}
