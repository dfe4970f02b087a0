package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/services/dto"
	"fitshop_backend/pkg/apperrors"
)

// ImageUpload is an optional picture sent along with a create or update.
type ImageUpload struct {
	Reader io.Reader
	Name   string
}

type ProductService interface {
	CreateProduct(ctx context.Context, db *gorm.DB, req *dto.ProductRequest, image *ImageUpload) (*models.Product, error)
	UpdateProduct(ctx context.Context, db *gorm.DB, slug string, req *dto.ProductRequest, image *ImageUpload) (*models.Product, error)
	DeleteProduct(ctx context.Context, db *gorm.DB, slug string) (imageprocessor.DeleteLog, error)
	GetProduct(ctx context.Context, db *gorm.DB, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, db *gorm.DB, page, pageSize int) ([]models.Product, int64, error)
}

type productService struct {
	productRepo    repositories.ProductRepository
	pictureService PictureService
}

func NewProductService(productRepo repositories.ProductRepository, pictureService PictureService) ProductService {
	return &productService{
		productRepo:    productRepo,
		pictureService: pictureService,
	}
}

func (s *productService) CreateProduct(ctx context.Context, db *gorm.DB, req *dto.ProductRequest, image *ImageUpload) (*models.Product, error) {
	price, err := req.PriceDecimal()
	if err != nil || price.IsNegative() {
		return nil, apperrors.NewBadRequestError("Invalid price")
	}

	var product *models.Product
	err = withTx(ctx, db, func(tx *gorm.DB) error {
		slug, err := s.uniqueSlug(tx, req.Slug, req.Name)
		if err != nil {
			return err
		}

		product = &models.Product{
			Name:        req.Name,
			Slug:        slug,
			Description: req.Description,
			Price:       price,
		}
		if err := s.productRepo.Create(tx, product); err != nil {
			if errors.Is(err, repositories.ErrProductSlugExists) {
				return apperrors.ErrAlreadyExists(err)
			}
			return apperrors.InternalError(err)
		}

		if image != nil {
			picture, err := s.pictureService.AttachImage(ctx, tx, product, image.Reader, image.Name, imageprocessor.FullHD)
			if err != nil {
				return err
			}
			product.Pictures = []models.Picture{*picture}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "product created", "product_id", product.ID, "slug", product.Slug)
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, db *gorm.DB, slug string, req *dto.ProductRequest, image *ImageUpload) (*models.Product, error) {
	price, err := req.PriceDecimal()
	if err != nil || price.IsNegative() {
		return nil, apperrors.NewBadRequestError("Invalid price")
	}

	var product *models.Product
	var stale []string
	err = withTx(ctx, db, func(tx *gorm.DB) error {
		current, err := s.productRepo.FindBySlug(tx, slug)
		if err != nil {
			return handleProductError(err)
		}

		current.Name = req.Name
		current.Description = req.Description
		current.Price = price
		if req.Slug != "" && req.Slug != current.Slug {
			newSlug, err := s.uniqueSlug(tx, req.Slug, req.Name)
			if err != nil {
				return err
			}
			current.Slug = newSlug
		}

		if err := s.productRepo.Update(tx, current); err != nil {
			if errors.Is(err, repositories.ErrProductSlugExists) {
				return apperrors.ErrAlreadyExists(err)
			}
			return apperrors.InternalError(err)
		}

		if image != nil {
			replaced, err := s.pictureService.ReplaceImage(ctx, tx, current, image.Reader, image.Name, imageprocessor.FullHD)
			if err != nil {
				return err
			}
			stale = replaced.Stale
		}

		product, err = s.productRepo.FindByID(tx, current.ID)
		if err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if log := s.pictureService.PurgeArtifacts(ctx, stale); !log.Empty() {
		logger.CtxWarn(ctx, "old product picture not fully removed", "slug", product.Slug, "log", []string(log))
	}
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, db *gorm.DB, slug string) (imageprocessor.DeleteLog, error) {
	var stale []string
	err := withTx(ctx, db, func(tx *gorm.DB) error {
		product, err := s.productRepo.FindBySlug(tx, slug)
		if err != nil {
			return handleProductError(err)
		}

		if err := s.productRepo.Delete(tx, product.ID); err != nil {
			return handleProductError(err)
		}

		stale, err = s.pictureService.DetachImages(ctx, tx, product)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.pictureService.PurgeArtifacts(ctx, stale), nil
}

func (s *productService) GetProduct(ctx context.Context, db *gorm.DB, slug string) (*models.Product, error) {
	product, err := s.productRepo.FindBySlug(db.WithContext(ctx), slug)
	if err != nil {
		return nil, handleProductError(err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, db *gorm.DB, page, pageSize int) ([]models.Product, int64, error) {
	products, total, err := s.productRepo.List(db.WithContext(ctx), page, pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return products, total, nil
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (s *productService) uniqueSlug(tx *gorm.DB, requested, name string) (string, error) {
	base := Slugify(requested)
	if base == "" {
		base = Slugify(name)
	}
	if base == "" {
		base = "product"
	}

	candidate := base
	for i := 0; i < 5; i++ {
		exists, err := s.productRepo.SlugExists(tx, candidate)
		if err != nil {
			return "", apperrors.InternalError(err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:8]
	}
	return "", apperrors.ErrConflict(repositories.ErrProductSlugExists, "product", "Could not generate a unique slug")
}
