package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitshop_backend/internal/services"
	"fitshop_backend/internal/services/dto"
)

type ProfileHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewProfileHandler(base *BaseHandler, authService services.AuthService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: base,
		authService: authService,
	}
}

func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	profile := rg.Group("/profile")
	profile.Use(authMW)
	{
		profile.GET("", h.GetProfile)
		profile.PUT("/avatar", h.UpdateAvatar)
	}
}

// GetProfile godoc
// @Summary Current user
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateAvatar godoc
// @Summary Replace avatar
// @Description Stores a base64 image (optionally a data URI) as the square avatar
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param avatar body dto.AvatarRequest true "Base64 image"
// @Success 200 {object} models.User
// @Failure 400 {object} apperrors.ErrorResponse "Malformed base64"
// @Failure 422 {object} apperrors.ErrorResponse "Not an image"
// @Router /profile/avatar [put]
func (h *ProfileHandler) UpdateAvatar(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.AvatarRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateAvatar(c.Request.Context(), h.GetDB(c), userID, req.Image)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
