package repositories

import (
	"errors"

	"gorm.io/gorm"

	"fitshop_backend/internal/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductSlugExists = errors.New("product slug already exists")
)

type ProductRepository interface {
	Create(db *gorm.DB, product *models.Product) error
	FindByID(db *gorm.DB, id string) (*models.Product, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Product, error)
	List(db *gorm.DB, page, pageSize int) ([]models.Product, int64, error)
	Update(db *gorm.DB, product *models.Product) error
	Delete(db *gorm.DB, id string) error
	SlugExists(db *gorm.DB, slug string) (bool, error)
}

type ProductRepositoryImpl struct{}

func NewProductRepository() ProductRepository {
	return &ProductRepositoryImpl{}
}

func (r *ProductRepositoryImpl) Create(db *gorm.DB, product *models.Product) error {
	if err := db.Omit("Pictures").Create(product).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrProductSlugExists
		}
		return err
	}
	return nil
}

func (r *ProductRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	if err := db.Preload("Pictures").First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return &product, nil
}

func (r *ProductRepositoryImpl) FindBySlug(db *gorm.DB, slug string) (*models.Product, error) {
	var product models.Product
	if err := db.Preload("Pictures").First(&product, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return &product, nil
}

func (r *ProductRepositoryImpl) List(db *gorm.DB, page, pageSize int) ([]models.Product, int64, error) {
	var (
		products []models.Product
		total    int64
	)

	if err := db.Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Preload("Pictures").
		Order("created_at DESC").
		Limit(pageSize).Offset(offset).
		Find(&products).Error
	return products, total, err
}

func (r *ProductRepositoryImpl) Update(db *gorm.DB, product *models.Product) error {
	result := db.Model(product).Select("name", "slug", "description", "price").Updates(product)
	if result.Error != nil {
		if IsUniqueViolation(result.Error) {
			return ErrProductSlugExists
		}
		return result.Error
	}
	return nil
}

func (r *ProductRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepositoryImpl) SlugExists(db *gorm.DB, slug string) (bool, error) {
	var count int64
	err := db.Unscoped().Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}
