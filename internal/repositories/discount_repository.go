package repositories

import (
	"errors"

	"gorm.io/gorm"

	"fitshop_backend/internal/models"
)

var (
	ErrDiscountNotFound   = errors.New("discount not found")
	ErrDiscountCodeExists = errors.New("discount code already exists")
)

type DiscountRepository interface {
	Create(db *gorm.DB, discount *models.Discount) error
	FindByCode(db *gorm.DB, code string) (*models.Discount, error)
	List(db *gorm.DB) ([]models.Discount, error)
}

type DiscountRepositoryImpl struct{}

func NewDiscountRepository() DiscountRepository {
	return &DiscountRepositoryImpl{}
}

func (r *DiscountRepositoryImpl) Create(db *gorm.DB, discount *models.Discount) error {
	if err := db.Create(discount).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDiscountCodeExists
		}
		return err
	}
	return nil
}

func (r *DiscountRepositoryImpl) FindByCode(db *gorm.DB, code string) (*models.Discount, error) {
	var discount models.Discount
	if err := db.First(&discount, "code = ?", code).Error; err != nil {
		return nil, notFound(err, ErrDiscountNotFound)
	}
	return &discount, nil
}

func (r *DiscountRepositoryImpl) List(db *gorm.DB) ([]models.Discount, error) {
	var discounts []models.Discount
	err := db.Order("created_at DESC").Find(&discounts).Error
	return discounts, err
}
