package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetailsDoesNotMutateSentinel(t *testing.T) {
	withDetails := ErrNoActiveOrder.WithDetails("x")

	assert.Nil(t, ErrNoActiveOrder.Details)
	assert.Equal(t, "x", withDetails.Details)
	assert.Equal(t, ErrNoActiveOrder.Code, withDetails.Code)
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := ErrNotFound(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusNotFound, err.HTTPCode)
	assert.Contains(t, err.Error(), "boom")
}

func TestHandleErrorWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	HandleError(c, ErrInvalidBase64)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(CodeValidationFailed), body["error"]["code"])
	assert.Equal(t, "media", body["error"]["domain"])
}

func TestHandleErrorWrapsUnknownAsInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	HandleError(c, errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(CodeInternalError))
}

func TestCopiesStillMatchTheirSentinel(t *testing.T) {
	cause := errors.New("lock timeout")
	busy := CartBusy(cause)

	assert.ErrorIs(t, busy, ErrCartBusy)
	assert.ErrorIs(t, busy, cause)
	assert.NotErrorIs(t, busy, ErrEmptyCart)
	assert.NotErrorIs(t, ErrPaymentSuperseded, ErrInvalidPaymentAmount)
	assert.Nil(t, ErrCartBusy.Err)

	assert.Equal(t, "cart/LOCK_NOT_ACQUIRED: Cart is being updated, retry later: lock timeout", busy.Error())
}

func TestUploadTooLargeReportsLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)

	HandleError(c, UploadTooLarge(1024))

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var body struct {
		Error struct {
			Code    string           `json:"code"`
			Details map[string]int64 `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(CodeLimitExceeded), body.Error.Code)
	assert.EqualValues(t, 1024, body.Error.Details["max_bytes"])
}
