package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/storage"
	"fitshop_backend/pkg/apperrors"
)

type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, storage storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
	}
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		files.GET("/*path", h.ServeFile)
		files.HEAD("/*path", h.CheckFileExists)
	}
}

// ServeFile godoc
// @Summary Stream a stored file
// @Description Picture artifacts are content addressed, so responses are cached for a year
// @Tags files
// @Produce octet-stream
// @Param path path string true "Storage key"
// @Success 200 {file} file
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /files/{path} [get]
func (h *FileHandler) ServeFile(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}

	reader, err := h.storage.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			apperrors.HandleError(c, apperrors.ErrNotFound(err))
			return
		}
		h.HandleServiceError(c, apperrors.ErrStorage(err))
		return
	}
	defer reader.Close()

	c.Header("Content-Type", storage.ContentTypeForKey(key))
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	if c.Query("download") == "true" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, path.Base(key)))
	} else {
		c.Header("Content-Disposition", "inline")
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// headers are already sent
		logger.CtxWarn(c.Request.Context(), "file stream interrupted", "key", key, "error", err)
	}
}

// CheckFileExists answers 200 or 404 without a body.
func (h *FileHandler) CheckFileExists(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}

	exists, err := h.storage.Exists(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Content-Type", storage.ContentTypeForKey(key))
	c.Status(http.StatusOK)
}

func (h *FileHandler) key(c *gin.Context) (string, bool) {
	key, err := storage.CleanKey(strings.TrimPrefix(c.Param("path"), "/"))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid file path"))
		return "", false
	}
	return key, true
}
