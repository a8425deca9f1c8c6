package orders

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
)

// OrderInput is the raw order shape checked before anything is persisted.
type OrderInput struct {
	OrderNumber  string
	CustomerName *string
	CustomerID   *string
	TotalAmount  *decimal.Decimal
	Items        []OrderItemInput
}

// OrderItemInput is one line of an order being placed.
type OrderItemInput struct {
	ArticleID  string          `json:"article_id" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	CategoryID *string         `json:"category_id,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity" validate:"required,gt=0"`
}

// FieldError names one violation found by ValidateOrderData.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult collects every violation of an order input.
type ValidationResult struct {
	IsValid bool         `json:"is_valid"`
	Errors  []FieldError `json:"errors"`
}

// Err converts a failed result into a validation error carrying all violations.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid order").WithDetails(r.Errors)
}

func blank(value *string) bool {
	return value == nil || strings.TrimSpace(*value) == ""
}

// ValidateOrderData checks the whole input and reports every violation, not just the first.
func ValidateOrderData(input OrderInput) ValidationResult {
	var errs []FieldError
	add := func(field, message string) {
		errs = append(errs, FieldError{Field: field, Message: message})
	}

	if strings.TrimSpace(input.OrderNumber) == "" {
		add("order_number", "order number is required")
	}
	if blank(input.CustomerName) && blank(input.CustomerID) {
		add("customer", "customer name or customer id is required")
	}
	if input.TotalAmount == nil || !input.TotalAmount.IsPositive() {
		add("total_amount", "total amount must be positive")
	}
	if len(input.Items) == 0 {
		add("items", "at least one item is required")
	}
	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.ArticleID) == "" {
			add(field+".article_id", "article id is required")
		}
		if item.Quantity <= 0 {
			add(field+".quantity", "quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			add(field+".unit_price", "unit price must not be negative")
		}
	}

	if errs == nil {
		errs = []FieldError{}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
