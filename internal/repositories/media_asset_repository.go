package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitshop_backend/internal/models"
)

var ErrMediaAssetNotFound = errors.New("media asset not found")

type MediaAssetRepository interface {
	Create(db *gorm.DB, asset *models.MediaAsset) error
	FindByID(db *gorm.DB, id string) (*models.MediaAsset, error)
	List(db *gorm.DB) ([]models.MediaAsset, error)
	// ListWithPictures returns only assets that own at least one picture.
	ListWithPictures(db *gorm.DB) ([]models.MediaAsset, error)
	// ListWithVideo returns assets that own a video, optionally only published ones.
	ListWithVideo(db *gorm.DB, publishedOnly bool) ([]models.MediaAsset, error)
	Update(db *gorm.DB, asset *models.MediaAsset) error
	Delete(db *gorm.DB, id string) error
}

type MediaAssetRepositoryImpl struct{}

func NewMediaAssetRepository() MediaAssetRepository {
	return &MediaAssetRepositoryImpl{}
}

func preloadMediaAsset(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Pictures", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Video")
}

func (r *MediaAssetRepositoryImpl) Create(db *gorm.DB, asset *models.MediaAsset) error {
	return db.Omit(clause.Associations).Create(asset).Error
}

func (r *MediaAssetRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.MediaAsset, error) {
	var asset models.MediaAsset
	if err := preloadMediaAsset(db).First(&asset, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrMediaAssetNotFound)
	}
	return &asset, nil
}

func (r *MediaAssetRepositoryImpl) List(db *gorm.DB) ([]models.MediaAsset, error) {
	var assets []models.MediaAsset
	err := preloadMediaAsset(db).Order("created_at DESC").Find(&assets).Error
	return assets, err
}

func (r *MediaAssetRepositoryImpl) ListWithPictures(db *gorm.DB) ([]models.MediaAsset, error) {
	var assets []models.MediaAsset
	sub := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Picture{}).
		Select("owner_id").
		Where("owner_type = ?", models.OwnerTypeMediaAsset)

	err := preloadMediaAsset(db).
		Where("id IN (?)", sub).
		Order("created_at DESC").
		Find(&assets).Error
	return assets, err
}

func (r *MediaAssetRepositoryImpl) ListWithVideo(db *gorm.DB, publishedOnly bool) ([]models.MediaAsset, error) {
	var assets []models.MediaAsset
	sub := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Video{}).
		Select("owner_id").
		Where("owner_type = ?", models.OwnerTypeMediaAsset)
	if publishedOnly {
		sub = sub.Where("status = ?", models.VideoStatusPublished)
	}

	err := preloadMediaAsset(db).
		Where("id IN (?)", sub).
		Order("created_at DESC").
		Find(&assets).Error
	return assets, err
}

func (r *MediaAssetRepositoryImpl) Update(db *gorm.DB, asset *models.MediaAsset) error {
	return db.Model(&models.MediaAsset{}).
		Where("id = ?", asset.ID).
		Updates(map[string]interface{}{
			"title":       asset.Title,
			"description": asset.Description,
			"updated_at":  time.Now(),
		}).Error
}

func (r *MediaAssetRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.MediaAsset{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMediaAssetNotFound
	}
	return nil
}
