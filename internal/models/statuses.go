package models

type UserRole string
type OrderStatus string
type PaymentStatus string
type VideoStatus int
type OwnerType string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"

	OrderStatusNew      OrderStatus = "NEW"
	OrderStatusPayed    OrderStatus = "PAYED"
	OrderStatusCanceled OrderStatus = "CANCELED"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"

	VideoStatusHidden    VideoStatus = 0
	VideoStatusPublished VideoStatus = 1

	OwnerTypeUser       OwnerType = "user"
	OwnerTypeProduct    OwnerType = "product"
	OwnerTypeMediaAsset OwnerType = "media_asset"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew, OrderStatusPayed, OrderStatusCanceled:
		return true
	}
	return false
}

// IsActive reports whether the order is still the user's cart.
func (s OrderStatus) IsActive() bool {
	return s == OrderStatusNew
}

func (s VideoStatus) IsValid() bool {
	return s == VideoStatusHidden || s == VideoStatusPublished
}

func (t OwnerType) IsValid() bool {
	switch t {
	case OwnerTypeUser, OwnerTypeProduct, OwnerTypeMediaAsset:
		return true
	}
	return false
}
