package apperrors

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fitshop_backend/internal/logger"
)

// ErrorResponse is the body written for every AppError.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

type GinErrorHandler struct {
	Debug bool
}

// debugErrors controls whether unknown errors keep their message in responses.
var debugErrors = true

// SetDebug is called once at startup from the server env.
func SetDebug(debug bool) {
	debugErrors = debug
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
		if !h.Debug {
			appErr.Details = nil
		} else {
			appErr.Details = err.Error()
		}
	}

	if appErr.HTTPCode >= 500 {
		cause := appErr.Unwrap()
		if cause == nil {
			cause = appErr
		}
		logger.CtxWithError(c.Request.Context(), "server error", cause, "path", c.Request.URL.Path)
	}

	c.JSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: debugErrors}
	handler.HandleGinError(c, err)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
