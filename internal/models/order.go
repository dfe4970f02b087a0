package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order is a user's cart while Status is NEW and a purchase afterwards.
// At most one NEW order per user is kept by the ux_orders_user_active partial index.
type Order struct {
	BaseModel
	UserID     string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Status     OrderStatus     `gorm:"type:varchar(20);not null;default:'NEW';index" json:"status"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	TotalPay   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_pay"`
	DiscountID *string         `gorm:"type:varchar(36)" json:"discount_id,omitempty"`
	PayedAt    *time.Time      `json:"payed_at,omitempty"`

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Discount *Discount   `gorm:"foreignKey:DiscountID" json:"discount,omitempty"`
	Delivery *Delivery   `gorm:"foreignKey:OrderID" json:"delivery,omitempty"`
}

// Recalculate sets Total from the items and TotalPay from Total and the discount.
func (o *Order) Recalculate() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.Total = total
	o.TotalPay = total
	if o.Discount != nil {
		o.TotalPay = o.Discount.Apply(total)
	}
}

// CountItems sums item counts.
func (o *Order) CountItems() int {
	n := 0
	for _, item := range o.Items {
		n += item.Count
	}
	return n
}

// FindItem returns the line for productID, or nil.
func (o *Order) FindItem(productID string) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

type OrderItem struct {
	BaseModel
	OrderID   string          `gorm:"type:varchar(36);not null;index;uniqueIndex:ux_order_items_order_product" json:"order_id"`
	ProductID string          `gorm:"type:varchar(36);not null;uniqueIndex:ux_order_items_order_product" json:"product_id"`
	Count     int             `gorm:"not null;default:1" json:"count"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Count)))
}

type Delivery struct {
	BaseModel
	OrderID     string `gorm:"type:varchar(36);not null;uniqueIndex" json:"order_id"`
	CountryCity string `gorm:"not null" json:"country_city"`
	Address     string `gorm:"not null" json:"address"`
	Index       string `gorm:"column:postal_index;not null" json:"index"`
	FullName    string `gorm:"not null" json:"full_name"`
	Phone       string `gorm:"not null" json:"phone"`
}

// PaymentTransaction is one payment attempt for an order. InvID is the
// integer invoice id Robokassa requires.
type PaymentTransaction struct {
	InvID     uint            `gorm:"primaryKey;autoIncrement" json:"inv_id"`
	OrderID   string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	UserID    string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status    PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Payload   datatypes.JSON  `json:"payload,omitempty"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
