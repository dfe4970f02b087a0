package dto

import "fitshop_backend/internal/imageprocessor"

type MediaAssetRequest struct {
	Title       string `form:"title" json:"title" validate:"required,max=255"`
	Description string `form:"description" json:"description"`
	VideoPath   string `form:"video_path" json:"video_path" validate:"omitempty,max=512"`
	VideoStatus int    `form:"video_status" json:"video_status" validate:"is-video-status"`
	Mode        string `form:"mode" json:"mode" validate:"omitempty,is-media-mode"`
}

func (r *MediaAssetRequest) ImageMode() imageprocessor.Mode {
	mode, _ := imageprocessor.ParseMode(r.Mode)
	return mode
}

type DeleteLogResponse struct {
	Status string   `json:"status"`
	Log    []string `json:"log,omitempty"`
}

func NewDeleteLogResponse(log imageprocessor.DeleteLog) DeleteLogResponse {
	if log.Empty() {
		return DeleteLogResponse{Status: "ok"}
	}
	return DeleteLogResponse{Status: "partial", Log: log}
}
