package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitshop_backend/internal/middleware"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/services"
	"fitshop_backend/internal/services/dto"
)

const mediaPicturesField = "pictures"

type MediaAssetHandler struct {
	*BaseHandler
	mediaAssetService services.MediaAssetService
}

func NewMediaAssetHandler(base *BaseHandler, mediaAssetService services.MediaAssetService) *MediaAssetHandler {
	return &MediaAssetHandler{
		BaseHandler:       base,
		mediaAssetService: mediaAssetService,
	}
}

func (h *MediaAssetHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	media := rg.Group("/media")
	{
		media.GET("/photos", h.ListPhotos)
		media.GET("/videos", h.ListVideos)
	}

	admin := rg.Group("/admin/media-assets")
	admin.Use(authMW, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("", h.ListAssets)
		admin.GET("/videos", h.ListAssetsWithVideo)
		admin.POST("", h.CreateAsset)
		admin.PUT("/:id", h.UpdateAsset)
		admin.DELETE("/:id", h.DeleteAsset)
		admin.DELETE("/:id/pictures/:pictureId", h.DeleteAssetPicture)
	}
}

// ListPhotos godoc
// @Summary Published photos
// @Description Media assets that have at least one picture
// @Tags media
// @Produce json
// @Success 200 {array} models.MediaAsset
// @Router /media/photos [get]
func (h *MediaAssetHandler) ListPhotos(c *gin.Context) {
	assets, err := h.mediaAssetService.ListPhotos(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

// ListVideos godoc
// @Summary Published videos
// @Tags media
// @Produce json
// @Success 200 {array} models.MediaAsset
// @Router /media/videos [get]
func (h *MediaAssetHandler) ListVideos(c *gin.Context) {
	assets, err := h.mediaAssetService.ListVideos(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

// ListAssets godoc
// @Summary All media assets
// @Tags admin-media
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.MediaAsset
// @Router /admin/media-assets [get]
func (h *MediaAssetHandler) ListAssets(c *gin.Context) {
	assets, err := h.mediaAssetService.ListAssets(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

// ListAssetsWithVideo godoc
// @Summary Media assets with a video, hidden ones included
// @Tags admin-media
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.MediaAsset
// @Router /admin/media-assets/videos [get]
func (h *MediaAssetHandler) ListAssetsWithVideo(c *gin.Context) {
	assets, err := h.mediaAssetService.ListAssetsWithVideo(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

// CreateAsset godoc
// @Summary Create a media asset
// @Tags admin-media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param video_path formData string false "Video path"
// @Param video_status formData int false "0 hidden, 1 published"
// @Param mode formData string false "fullhd or avatar"
// @Param pictures formData file false "Pictures"
// @Success 201 {object} models.MediaAsset
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /admin/media-assets [post]
func (h *MediaAssetHandler) CreateAsset(c *gin.Context) {
	var req dto.MediaAssetRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	uploads, closeAll, ok := h.openPictures(c)
	if !ok {
		return
	}
	defer closeAll()

	asset, err := h.mediaAssetService.CreateAsset(c.Request.Context(), h.GetDB(c), &req, uploads)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, asset)
}

// UpdateAsset godoc
// @Summary Update a media asset
// @Description Uploaded pictures are added to the existing ones
// @Tags admin-media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Asset ID"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param video_path formData string false "Video path"
// @Param video_status formData int false "0 hidden, 1 published"
// @Param mode formData string false "fullhd or avatar"
// @Param pictures formData file false "Pictures"
// @Success 200 {object} models.MediaAsset
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/media-assets/{id} [put]
func (h *MediaAssetHandler) UpdateAsset(c *gin.Context) {
	var req dto.MediaAssetRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	uploads, closeAll, ok := h.openPictures(c)
	if !ok {
		return
	}
	defer closeAll()

	asset, err := h.mediaAssetService.UpdateAsset(c.Request.Context(), h.GetDB(c), c.Param("id"), &req, uploads)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, asset)
}

// DeleteAsset godoc
// @Summary Delete a media asset with its pictures and video
// @Tags admin-media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Asset ID"
// @Success 200 {object} dto.DeleteLogResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/media-assets/{id} [delete]
func (h *MediaAssetHandler) DeleteAsset(c *gin.Context) {
	log, err := h.mediaAssetService.DeleteAsset(c.Request.Context(), h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDeleteLogResponse(log))
}

// DeleteAssetPicture godoc
// @Summary Delete one picture of a media asset
// @Description Returns {"status":"ok"} or the list of artifacts that could not be removed
// @Tags admin-media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Asset ID"
// @Param pictureId path string true "Picture ID"
// @Success 200 {object} dto.DeleteLogResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/media-assets/{id}/pictures/{pictureId} [delete]
func (h *MediaAssetHandler) DeleteAssetPicture(c *gin.Context) {
	log, err := h.mediaAssetService.DeleteAssetPicture(c.Request.Context(), h.GetDB(c), c.Param("id"), c.Param("pictureId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDeleteLogResponse(log))
}

// openPictures opens every file of the pictures field. Requests without a
// multipart body carry no pictures.
func (h *MediaAssetHandler) openPictures(c *gin.Context) ([]services.ImageUpload, func(), bool) {
	var (
		uploads []services.ImageUpload
		files   []multipart.File
	)
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, closeAll, true
	}

	for _, fh := range form.File[mediaPicturesField] {
		upload, f, err := h.OpenUpload(fh)
		if err != nil {
			closeAll()
			h.HandleServiceError(c, err)
			return nil, nil, false
		}
		files = append(files, f)
		uploads = append(uploads, *upload)
	}
	return uploads, closeAll, true
}
