package dto

import (
	"time"

	"fitshop_backend/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

type AvatarRequest struct {
	Image string `json:"image" validate:"required,base64-image"`
}
