package repositories

import (
	"errors"

	"gorm.io/gorm"

	"fitshop_backend/internal/models"
)

var ErrPictureNotFound = errors.New("picture not found")

type PictureRepository interface {
	Create(db *gorm.DB, picture *models.Picture) error
	FindByID(db *gorm.DB, id string) (*models.Picture, error)
	FindByOwner(db *gorm.DB, ownerType models.OwnerType, ownerID string) ([]models.Picture, error)
	Delete(db *gorm.DB, id string) error
	DeleteByOwner(db *gorm.DB, ownerType models.OwnerType, ownerID string) error
	// ReferencedPaths returns the subset of paths that some picture row points to,
	// as either its image or its thumbnail.
	ReferencedPaths(db *gorm.DB, paths []string) (map[string]bool, error)
}

type PictureRepositoryImpl struct{}

func NewPictureRepository() PictureRepository {
	return &PictureRepositoryImpl{}
}

func (r *PictureRepositoryImpl) Create(db *gorm.DB, picture *models.Picture) error {
	return db.Create(picture).Error
}

func (r *PictureRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Picture, error) {
	var picture models.Picture
	if err := db.First(&picture, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrPictureNotFound)
	}
	return &picture, nil
}

func (r *PictureRepositoryImpl) FindByOwner(db *gorm.DB, ownerType models.OwnerType, ownerID string) ([]models.Picture, error) {
	var pictures []models.Picture
	err := db.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at ASC").
		Find(&pictures).Error
	return pictures, err
}

func (r *PictureRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Picture{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPictureNotFound
	}
	return nil
}

func (r *PictureRepositoryImpl) DeleteByOwner(db *gorm.DB, ownerType models.OwnerType, ownerID string) error {
	return db.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&models.Picture{}).Error
}

const referencedPathsBatch = 500

func (r *PictureRepositoryImpl) ReferencedPaths(db *gorm.DB, paths []string) (map[string]bool, error) {
	referenced := make(map[string]bool)

	for start := 0; start < len(paths); start += referencedPathsBatch {
		end := min(start+referencedPathsBatch, len(paths))
		batch := paths[start:end]

		var rows []models.Picture
		err := db.Select("path", "thumbnail").
			Where("path IN ? OR thumbnail IN ?", batch, batch).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			referenced[row.Path] = true
			referenced[row.Thumbnail] = true
		}
	}
	return referenced, nil
}
