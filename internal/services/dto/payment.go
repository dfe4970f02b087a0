package dto

// RobokassaResultRequest is the ResultURL callback, sent as a form.
type RobokassaResultRequest struct {
	OutSum         string `form:"OutSum" json:"OutSum" validate:"required"`
	InvID          string `form:"InvId" json:"InvId" validate:"required,numeric"`
	SignatureValue string `form:"SignatureValue" json:"SignatureValue" validate:"required"`
}
