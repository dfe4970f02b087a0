package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"fitshop_backend/internal/auth"
	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/services/dto"
	"fitshop_backend/pkg/apperrors"
)

type AuthService interface {
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, db *gorm.DB, userID string) (*models.User, error)
	UpdateAvatar(ctx context.Context, db *gorm.DB, userID, encoded string) (*models.User, error)
	// EnsureAdmin creates the first administrator when no admin exists yet.
	EnsureAdmin(ctx context.Context, db *gorm.DB, email, password string) error
}

type authService struct {
	userRepo       repositories.UserRepository
	pictureService PictureService
	jwt            *auth.JWTManager
}

func NewAuthService(userRepo repositories.UserRepository, pictureService PictureService, jwt *auth.JWTManager) AuthService {
	return &authService{
		userRepo:       userRepo,
		pictureService: pictureService,
		jwt:            jwt,
	}
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db.WithContext(ctx), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "failed login attempt", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expires, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{AccessToken: token, ExpiresAt: expires, User: user}, nil
}

func (s *authService) GetProfile(ctx context.Context, db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db.WithContext(ctx), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

// UpdateAvatar stores a base64 image as the user's only picture. The old
// avatar files are removed once the new row is committed.
func (s *authService) UpdateAvatar(ctx context.Context, db *gorm.DB, userID, encoded string) (*models.User, error) {
	user, err := s.GetProfile(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	replaced, err := s.pictureService.ReplaceImage64(ctx, db, user, encoded, imageprocessor.Avatar)
	if err != nil {
		return nil, err
	}
	if log := s.pictureService.PurgeArtifacts(ctx, replaced.Stale); !log.Empty() {
		logger.CtxWarn(ctx, "old avatar not fully removed", "user_id", user.ID, "log", []string(log))
	}

	user.Avatar = replaced.Picture
	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, db *gorm.DB, email, password string) error {
	db = db.WithContext(ctx)
	if email == "" || password == "" {
		return nil
	}

	count, err := s.userRepo.CountByRole(db, models.UserRoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
	}
	if err := s.userRepo.Create(db, admin); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil
		}
		return err
	}

	logger.CtxInfo(ctx, "first admin created", "email", admin.Email)
	return nil
}
