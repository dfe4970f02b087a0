package dto

import "github.com/shopspring/decimal"

// ProductRequest is bound from multipart form fields; the picture travels as a file part.
type ProductRequest struct {
	Name        string `form:"name" json:"name" validate:"required,max=255"`
	Slug        string `form:"slug" json:"slug" validate:"omitempty,max=255"`
	Description string `form:"description" json:"description"`
	Price       string `form:"price" json:"price" validate:"required,numeric"`
}

func (r *ProductRequest) PriceDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(r.Price)
}
