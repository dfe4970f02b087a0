package dto

import "fitshop_backend/internal/models"

type CreateDiscountRequest struct {
	Name               string `json:"name" validate:"required,max=255"`
	Code               string `json:"code" validate:"required,min=3,max=64"`
	DiscountPercentage int    `json:"discount_percentage" validate:"min=0,max=100"`
}

type DiscountResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Code               string `json:"code"`
	DiscountPercentage int    `json:"discount_percentage"`
}

func NewDiscountResponse(d *models.Discount) *DiscountResponse {
	return &DiscountResponse{
		ID:                 d.ID,
		Name:               d.Name,
		Code:               d.Code,
		DiscountPercentage: d.DiscountPercentage,
	}
}
