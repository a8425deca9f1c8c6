package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crumbhq/crumb-backend/pkg/enums"
)

// Order is a customer order to be collected from a bakery during a time slot.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BakeryID      uuid.UUID           `gorm:"column:bakery_id;type:uuid;not null;index" json:"bakery_id"`
	TimeSlotID    *uuid.UUID          `gorm:"column:time_slot_id;type:uuid" json:"time_slot_id"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex" json:"order_number"`
	CustomerID    *string             `gorm:"column:customer_id" json:"customer_id"`
	CustomerName  *string             `gorm:"column:customer_name" json:"customer_name"`
	CustomerEmail *string             `gorm:"column:customer_email" json:"customer_email"`
	CustomerPhone *string             `gorm:"column:customer_phone" json:"customer_phone"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null" json:"status"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null" json:"payment_status"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	Notes         *string             `gorm:"column:notes" json:"notes"`
	ConfirmedAt   *time.Time          `gorm:"column:confirmed_at" json:"confirmed_at"`
	ReadyAt       *time.Time          `gorm:"column:ready_at" json:"ready_at"`
	CompletedAt   *time.Time          `gorm:"column:completed_at" json:"completed_at"`
	CancelledAt   *time.Time          `gorm:"column:cancelled_at" json:"cancelled_at"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// OrderItem snapshots a cart line at checkout time.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	ArticleID  string          `gorm:"column:article_id;not null" json:"article_id"`
	Name       string          `gorm:"column:name;not null" json:"name"`
	CategoryID *string         `gorm:"column:category_id" json:"category_id"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	Quantity   int             `gorm:"column:quantity;not null" json:"quantity"`
	LineTotal  decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null" json:"line_total"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
