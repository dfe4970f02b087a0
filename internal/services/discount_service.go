package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"fitshop_backend/internal/models"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/services/dto"
	"fitshop_backend/pkg/apperrors"
)

type DiscountService interface {
	CreateDiscount(ctx context.Context, db *gorm.DB, req *dto.CreateDiscountRequest) (*models.Discount, error)
	ListDiscounts(ctx context.Context, db *gorm.DB) ([]models.Discount, error)
}

type discountService struct {
	discountRepo repositories.DiscountRepository
}

func NewDiscountService(discountRepo repositories.DiscountRepository) DiscountService {
	return &discountService{discountRepo: discountRepo}
}

func (s *discountService) CreateDiscount(ctx context.Context, db *gorm.DB, req *dto.CreateDiscountRequest) (*models.Discount, error) {
	discount := &models.Discount{
		Name:               req.Name,
		Code:               strings.TrimSpace(req.Code),
		DiscountPercentage: req.DiscountPercentage,
	}
	if err := s.discountRepo.Create(db.WithContext(ctx), discount); err != nil {
		if errors.Is(err, repositories.ErrDiscountCodeExists) {
			return nil, apperrors.ErrAlreadyExists(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return discount, nil
}

func (s *discountService) ListDiscounts(ctx context.Context, db *gorm.DB) ([]models.Discount, error) {
	discounts, err := s.discountRepo.List(db.WithContext(ctx))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return discounts, nil
}
