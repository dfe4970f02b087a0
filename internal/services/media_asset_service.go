package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/services/dto"
	"fitshop_backend/pkg/apperrors"
)

// MediaAssetService manages gallery entries: a title, pictures and at most one video.
type MediaAssetService interface {
	CreateAsset(ctx context.Context, db *gorm.DB, req *dto.MediaAssetRequest, images []ImageUpload) (*models.MediaAsset, error)
	UpdateAsset(ctx context.Context, db *gorm.DB, id string, req *dto.MediaAssetRequest, images []ImageUpload) (*models.MediaAsset, error)
	DeleteAsset(ctx context.Context, db *gorm.DB, id string) (imageprocessor.DeleteLog, error)
	DeleteAssetPicture(ctx context.Context, db *gorm.DB, assetID, pictureID string) (imageprocessor.DeleteLog, error)
	ListAssets(ctx context.Context, db *gorm.DB) ([]models.MediaAsset, error)
	ListAssetsWithVideo(ctx context.Context, db *gorm.DB) ([]models.MediaAsset, error)

	// Public listings
	ListPhotos(ctx context.Context, db *gorm.DB) ([]models.MediaAsset, error)
	ListVideos(ctx context.Context, db *gorm.DB) ([]models.MediaAsset, error)
}

type mediaAssetService struct {
	assetRepo      repositories.MediaAssetRepository
	videoRepo      repositories.VideoRepository
	pictureService PictureService
}

func NewMediaAssetService(
	assetRepo repositories.MediaAssetRepository,
	videoRepo repositories.VideoRepository,
	pictureService PictureService,
) MediaAssetService {
	return &mediaAssetService{
		assetRepo:      assetRepo,
		videoRepo:      videoRepo,
		pictureService: pictureService,
	}
}

func (s *mediaAssetService) CreateAsset(ctx context.Context, db *gorm.DB, req *dto.MediaAssetRequest, images []ImageUpload) (*models.MediaAsset, error) {
	var id string
	err := withTx(ctx, db, func(tx *gorm.DB) error {
		asset := &models.MediaAsset{
			Title:       req.Title,
			Description: req.Description,
		}
		if err := s.assetRepo.Create(tx, asset); err != nil {
			return apperrors.InternalError(err)
		}
		id = asset.ID

		return s.attach(ctx, tx, asset, req, images)
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "media asset created", "asset_id", id, "pictures", len(images))
	return s.reload(ctx, db, id)
}

func (s *mediaAssetService) UpdateAsset(ctx context.Context, db *gorm.DB, id string, req *dto.MediaAssetRequest, images []ImageUpload) (*models.MediaAsset, error) {
	err := withTx(ctx, db, func(tx *gorm.DB) error {
		asset, err := s.assetRepo.FindByID(tx, id)
		if err != nil {
			return handleMediaAssetError(err)
		}

		asset.Title = req.Title
		asset.Description = req.Description
		if err := s.assetRepo.Update(tx, asset); err != nil {
			return apperrors.InternalError(err)
		}

		return s.attach(ctx, tx, asset, req, images)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, db, id)
}

// attach adds uploaded pictures and stores the video reference when one is given.
func (s *mediaAssetService) attach(ctx context.Context, tx *gorm.DB, asset *models.MediaAsset, req *dto.MediaAssetRequest, images []ImageUpload) error {
	for _, img := range images {
		if _, err := s.pictureService.AttachImage(ctx, tx, asset, img.Reader, img.Name, req.ImageMode()); err != nil {
			return err
		}
	}

	if req.VideoPath != "" {
		video := &models.Video{
			OwnerType: asset.MediaOwnerType(),
			OwnerID:   asset.MediaOwnerID(),
			Path:      req.VideoPath,
			Status:    models.VideoStatus(req.VideoStatus),
		}
		if !video.Status.IsValid() {
			return apperrors.ErrInvalidStatus("media", "Invalid video status")
		}
		if err := s.videoRepo.Upsert(tx, video); err != nil {
			return apperrors.InternalError(err)
		}
	}
	return nil
}

func (s *mediaAssetService) DeleteAsset(ctx context.Context, db *gorm.DB, id string) (imageprocessor.DeleteLog, error) {
	var stale []string
	err := withTx(ctx, db, func(tx *gorm.DB) error {
		asset, err := s.assetRepo.FindByID(tx, id)
		if err != nil {
			return handleMediaAssetError(err)
		}

		if err := s.videoRepo.DeleteByOwner(tx, asset.MediaOwnerType(), asset.MediaOwnerID()); err != nil {
			return apperrors.InternalError(err)
		}
		if err := s.assetRepo.Delete(tx, asset.ID); err != nil {
			return handleMediaAssetError(err)
		}

		stale, err = s.pictureService.DetachImages(ctx, tx, asset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.pictureService.PurgeArtifacts(ctx, stale), nil
}

func (s *mediaAssetService) DeleteAssetPicture(ctx context.Context, db *gorm.DB, assetID, pictureID string) (imageprocessor.DeleteLog, error) {
	asset, err := s.assetRepo.FindByID(db.WithContext(ctx), assetID)
	if err != nil {
		return nil, handleMediaAssetError(err)
	}
	return s.pictureService.DeletePicture(ctx, db, asset, pictureID)
}

func (s *mediaAssetService) ListAssets(ctx context.Context, db *gorm.DB) ([]models.MediaAsset, error) {
	assets, err := s.assetRepo.List(db.WithContext(ctx))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return assets, nil
}

func (s *mediaAssetService) ListAssetsWithVideo(ctx context.Context, db *gorm.DB) ([]models.MediaAsset, error) {
	assets, err := s.assetRepo.ListWithVideo(db.WithContext(ctx), false)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return assets, nil
}

func (s *mediaAssetService) ListPhotos(ctx context.Context, db *gorm.DB) ([]models.MediaAsset, error) {
	assets, err := s.assetRepo.ListWithPictures(db.WithContext(ctx))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return assets, nil
}

func (s *mediaAssetService) ListVideos(ctx context.Context, db *gorm.DB) ([]models.MediaAsset, error) {
	assets, err := s.assetRepo.ListWithVideo(db.WithContext(ctx), true)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return assets, nil
}

func (s *mediaAssetService) reload(ctx context.Context, db *gorm.DB, id string) (*models.MediaAsset, error) {
	asset, err := s.assetRepo.FindByID(db.WithContext(ctx), id)
	if err != nil {
		return nil, handleMediaAssetError(err)
	}
	return asset, nil
}

func handleMediaAssetError(err error) error {
	if errors.Is(err, repositories.ErrMediaAssetNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}
