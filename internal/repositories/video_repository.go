package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"fitshop_backend/internal/models"
)

var ErrVideoNotFound = errors.New("video not found")

type VideoRepository interface {
	FindByOwner(db *gorm.DB, ownerType models.OwnerType, ownerID string) (*models.Video, error)
	// Upsert keeps a single video per owner.
	Upsert(db *gorm.DB, video *models.Video) error
	DeleteByOwner(db *gorm.DB, ownerType models.OwnerType, ownerID string) error
}

type VideoRepositoryImpl struct{}

func NewVideoRepository() VideoRepository {
	return &VideoRepositoryImpl{}
}

func (r *VideoRepositoryImpl) FindByOwner(db *gorm.DB, ownerType models.OwnerType, ownerID string) (*models.Video, error) {
	var video models.Video
	err := db.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).First(&video).Error
	if err != nil {
		return nil, notFound(err, ErrVideoNotFound)
	}
	return &video, nil
}

func (r *VideoRepositoryImpl) Upsert(db *gorm.DB, video *models.Video) error {
	existing, err := r.FindByOwner(db, video.OwnerType, video.OwnerID)
	if errors.Is(err, ErrVideoNotFound) {
		return db.Create(video).Error
	}
	if err != nil {
		return err
	}

	video.ID = existing.ID
	video.CreatedAt = existing.CreatedAt
	return db.Model(existing).Updates(map[string]interface{}{
		"path":       video.Path,
		"status":     video.Status,
		"updated_at": time.Now(),
	}).Error
}

func (r *VideoRepositoryImpl) DeleteByOwner(db *gorm.DB, ownerType models.OwnerType, ownerID string) error {
	return db.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&models.Video{}).Error
}
