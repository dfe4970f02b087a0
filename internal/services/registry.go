package services

import (
	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/storage"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService       AuthService
	PictureService    PictureService
	ProductService    ProductService
	OrderService      OrderService
	DiscountService   DiscountService
	MediaAssetService MediaAssetService

	Storage    storage.Storage
	ImageStore *imageprocessor.Store
}
