package services

import (
	"context"
	"errors"
	"io"

	"gorm.io/gorm"

	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/pkg/apperrors"
)

// PictureService ties stored image artifacts to the entity owning them.
type PictureService interface {
	AttachImage(ctx context.Context, db *gorm.DB, owner models.HasMedia, r io.Reader, name string, mode imageprocessor.Mode) (*models.Picture, error)
	AttachImage64(ctx context.Context, db *gorm.DB, owner models.HasMedia, encoded string, mode imageprocessor.Mode) (*models.Picture, error)
	// ReplaceImage stores the new image, then swaps it for every picture of
	// owner. The previous artifacts are returned in Replaced.Stale and stay on
	// storage until PurgeArtifacts is called after commit.
	ReplaceImage(ctx context.Context, db *gorm.DB, owner models.HasMedia, r io.Reader, name string, mode imageprocessor.Mode) (*Replaced, error)
	ReplaceImage64(ctx context.Context, db *gorm.DB, owner models.HasMedia, encoded string, mode imageprocessor.Mode) (*Replaced, error)
	// DetachImages deletes the picture rows of owner and returns their
	// artifact paths for PurgeArtifacts.
	DetachImages(ctx context.Context, db *gorm.DB, owner models.HasMedia) ([]string, error)
	PurgeArtifacts(ctx context.Context, paths []string) imageprocessor.DeleteLog
	DeletePicture(ctx context.Context, db *gorm.DB, owner models.HasMedia, pictureID string) (imageprocessor.DeleteLog, error)
	ListPictures(ctx context.Context, db *gorm.DB, owner models.HasMedia) ([]models.Picture, error)
}

// Replaced is the outcome of a picture swap.
type Replaced struct {
	Picture *models.Picture
	Stale   []string
}

type pictureService struct {
	store       *imageprocessor.Store
	pictureRepo repositories.PictureRepository
}

func NewPictureService(store *imageprocessor.Store, pictureRepo repositories.PictureRepository) PictureService {
	return &pictureService{
		store:       store,
		pictureRepo: pictureRepo,
	}
}

func (s *pictureService) AttachImage(ctx context.Context, db *gorm.DB, owner models.HasMedia, r io.Reader, name string, mode imageprocessor.Mode) (*models.Picture, error) {
	saved, err := s.store.SaveImage(ctx, r, mode)
	if err != nil {
		return nil, mapImageError(err)
	}
	return s.record(ctx, db, owner, saved, name)
}

func (s *pictureService) AttachImage64(ctx context.Context, db *gorm.DB, owner models.HasMedia, encoded string, mode imageprocessor.Mode) (*models.Picture, error) {
	saved, err := s.store.SaveImage64(ctx, encoded, mode)
	if err != nil {
		return nil, mapImageError(err)
	}
	return s.record(ctx, db, owner, saved, "")
}

// record inserts the row for freshly written artifacts. If the insert fails
// the artifacts are removed so nothing unreferenced is left behind.
func (s *pictureService) record(ctx context.Context, db *gorm.DB, owner models.HasMedia, saved *imageprocessor.Saved, name string) (*models.Picture, error) {
	picture := newPicture(owner, saved, name)
	if err := s.pictureRepo.Create(db.WithContext(ctx), picture); err != nil {
		s.discard(ctx, picture.Paths())
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "picture attached",
		"owner_type", picture.OwnerType,
		"owner_id", picture.OwnerID,
		"picture_id", picture.ID,
	)
	return picture, nil
}

func (s *pictureService) ReplaceImage(ctx context.Context, db *gorm.DB, owner models.HasMedia, r io.Reader, name string, mode imageprocessor.Mode) (*Replaced, error) {
	saved, err := s.store.SaveImage(ctx, r, mode)
	if err != nil {
		return nil, mapImageError(err)
	}
	return s.swap(ctx, db, owner, saved, name)
}

func (s *pictureService) ReplaceImage64(ctx context.Context, db *gorm.DB, owner models.HasMedia, encoded string, mode imageprocessor.Mode) (*Replaced, error) {
	saved, err := s.store.SaveImage64(ctx, encoded, mode)
	if err != nil {
		return nil, mapImageError(err)
	}
	return s.swap(ctx, db, owner, saved, "")
}

// swap replaces the rows of owner with one row for saved. Nothing is removed
// from storage except the new artifacts when the swap fails.
func (s *pictureService) swap(ctx context.Context, db *gorm.DB, owner models.HasMedia, saved *imageprocessor.Saved, name string) (*Replaced, error) {
	picture := newPicture(owner, saved, name)
	var stale []string

	err := withTx(ctx, db, func(tx *gorm.DB) error {
		var err error
		stale, err = s.DetachImages(ctx, tx, owner)
		if err != nil {
			return err
		}
		if err := s.pictureRepo.Create(tx, picture); err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, picture.Paths())
		return nil, err
	}

	logger.CtxInfo(ctx, "picture replaced",
		"owner_type", picture.OwnerType,
		"owner_id", picture.OwnerID,
		"picture_id", picture.ID,
		"stale", len(stale),
	)
	return &Replaced{Picture: picture, Stale: stale}, nil
}

func (s *pictureService) DetachImages(ctx context.Context, db *gorm.DB, owner models.HasMedia) ([]string, error) {
	db = db.WithContext(ctx)

	pictures, err := s.pictureRepo.FindByOwner(db, owner.MediaOwnerType(), owner.MediaOwnerID())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(pictures) == 0 {
		return nil, nil
	}

	if err := s.pictureRepo.DeleteByOwner(db, owner.MediaOwnerType(), owner.MediaOwnerID()); err != nil {
		return nil, apperrors.InternalError(err)
	}

	var paths []string
	for i := range pictures {
		paths = append(paths, pictures[i].Paths()...)
	}
	return paths, nil
}

// PurgeArtifacts deletes detached artifacts. Failures are reported and the
// files are left to the orphan sweep.
func (s *pictureService) PurgeArtifacts(ctx context.Context, paths []string) imageprocessor.DeleteLog {
	if len(paths) == 0 {
		return nil
	}
	return s.store.DeleteImageArray(ctx, paths)
}

func (s *pictureService) discard(ctx context.Context, paths []string) {
	if log := s.store.DeleteImageArray(ctx, paths); !log.Empty() {
		logger.CtxWarn(ctx, "compensation left artifacts behind", "log", []string(log))
	}
}

func (s *pictureService) DeletePicture(ctx context.Context, db *gorm.DB, owner models.HasMedia, pictureID string) (imageprocessor.DeleteLog, error) {
	db = db.WithContext(ctx)

	picture, err := s.pictureRepo.FindByID(db, pictureID)
	if err != nil {
		return nil, handlePictureError(err)
	}
	if picture.OwnerType != owner.MediaOwnerType() || picture.OwnerID != owner.MediaOwnerID() {
		return nil, apperrors.ErrNotFound(repositories.ErrPictureNotFound)
	}

	if err := s.pictureRepo.Delete(db, picture.ID); err != nil {
		return nil, handlePictureError(err)
	}

	return s.store.DeleteImageArray(ctx, picture.Paths()), nil
}

func newPicture(owner models.HasMedia, saved *imageprocessor.Saved, name string) *models.Picture {
	return &models.Picture{
		OwnerType: owner.MediaOwnerType(),
		OwnerID:   owner.MediaOwnerID(),
		Name:      name,
		Path:      saved.Image,
		Thumbnail: saved.Thumbnail,
	}
}

func (s *pictureService) ListPictures(ctx context.Context, db *gorm.DB, owner models.HasMedia) ([]models.Picture, error) {
	pictures, err := s.pictureRepo.FindByOwner(db.WithContext(ctx), owner.MediaOwnerType(), owner.MediaOwnerID())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return pictures, nil
}

// =======================
// Error mapping
// =======================

func mapImageError(err error) error {
	switch {
	case errors.Is(err, imageprocessor.ErrImageNotProcessed):
		return apperrors.ImageRejected(err)
	case errors.Is(err, imageprocessor.ErrInvalidBase64):
		return apperrors.ErrInvalidBase64
	default:
		return apperrors.ErrStorage(err)
	}
}

func handlePictureError(err error) error {
	if errors.Is(err, repositories.ErrPictureNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}
