package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Status string `json:"status" validate:"omitempty,is-order-status"`
	Video  int    `json:"video_status" validate:"is-video-status"`
	Mode   string `json:"mode" validate:"is-media-mode"`
	Image  string `json:"image" validate:"required,base64-image"`
}

func TestCustomRules(t *testing.T) {
	v := New()

	ok := sample{Status: "PAYED", Video: 1, Mode: "avatar", Image: "data:image/png;base64,aGVsbG8="}
	assert.NoError(t, v.Validate(&ok))

	bad := sample{Status: "SHIPPED", Video: 3, Mode: "huge", Image: "%%%"}
	err := v.Validate(&bad)
	require.Error(t, err)

	vErr, isValidation := err.(*ValidationError)
	require.True(t, isValidation)
	assert.Len(t, vErr.Errors, 4)
	assert.Contains(t, vErr.Errors, "status")
	assert.Contains(t, vErr.Errors, "video_status")
	assert.Contains(t, vErr.Errors, "mode")
	assert.Equal(t, "Must be a base64 encoded image", vErr.Errors["image"])
}
