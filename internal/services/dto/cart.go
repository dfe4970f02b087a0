package dto

import (
	"github.com/shopspring/decimal"

	"fitshop_backend/internal/models"
)

type AddItemRequest struct {
	Count int `json:"count" validate:"omitempty,min=1,max=999"`
}

type CartItemResponse struct {
	ProductID string          `json:"product_id"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	Count     int             `json:"count"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID       string             `json:"id"`
	Status   models.OrderStatus `json:"status"`
	Items    []CartItemResponse `json:"items"`
	Count    int                `json:"count"`
	Total    decimal.Decimal    `json:"total"`
	TotalPay decimal.Decimal    `json:"total_pay"`
	Discount *DiscountResponse  `json:"discount,omitempty"`
	Delivery *models.Delivery   `json:"delivery,omitempty"`
}

type DeliveryRequest struct {
	CountryCity string `json:"country_city" validate:"required,max=255"`
	Address     string `json:"address" validate:"required,max=500"`
	Index       string `json:"index" validate:"required,max=20"`
	FullName    string `json:"full_name" validate:"required,max=255"`
	Phone       string `json:"phone" validate:"required,min=5,max=32"`
}

type CheckoutResponse struct {
	OrderID    string          `json:"order_id"`
	InvID      uint            `json:"inv_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaymentURL string          `json:"payment_url"`
}

// NewOrderResponse flattens an order with its preloaded lines.
func NewOrderResponse(order *models.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:       order.ID,
		Status:   order.Status,
		Items:    make([]CartItemResponse, 0, len(order.Items)),
		Count:    order.CountItems(),
		Total:    order.Total,
		TotalPay: order.TotalPay,
		Delivery: order.Delivery,
	}
	for _, item := range order.Items {
		line := CartItemResponse{
			ProductID: item.ProductID,
			Count:     item.Count,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
		if item.Product != nil {
			line.Slug = item.Product.Slug
			line.Name = item.Product.Name
		}
		resp.Items = append(resp.Items, line)
	}
	if order.Discount != nil {
		resp.Discount = NewDiscountResponse(order.Discount)
	}
	return resp
}
