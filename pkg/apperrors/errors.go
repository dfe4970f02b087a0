package apperrors

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Domains group codes in the response envelope.
const (
	DomainSystem   = "system"
	DomainRequest  = "request"
	DomainAuth     = "auth"
	DomainCart     = "cart"
	DomainPayment  = "payment"
	DomainMedia    = "media"
	DomainStorage  = "storage"
	DomainResource = "resource"
)

// AppError is what services hand to the HTTP layer. Only Code, Domain,
// Message and Details reach the client; Err stays in the logs.
type AppError struct {
	Code     ErrorCode
	Domain   string
	Message  string
	Details  any
	Err      error
	HTTPCode int
}

// Error reads "cart/NO_ACTIVE_ORDER: No active orders" with the cause appended.
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(e.Domain)
	b.WriteByte('/')
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches AppErrors by domain and code, so a sentinel still matches its
// copies made by WithDetails or WithError.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Domain == t.Domain && e.Message == t.Message
}

func New(code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{Code: code, Domain: domain, Message: message, HTTPCode: httpCode}
}

// Wrap is New with a cause.
func Wrap(err error, code ErrorCode, domain, message string, httpCode int) *AppError {
	e := New(code, domain, message, httpCode)
	e.Err = err
	return e
}

// WithDetails returns a copy; package-level values are shared between requests.
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithError returns a copy carrying the cause.
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    ErrorCode `json:"code"`
		Domain  string    `json:"domain"`
		Message string    `json:"message"`
		Details any       `json:"details,omitempty"`
	}{e.Code, e.Domain, e.Message, e.Details})
}

// ============================================================================
// Request & auth
// ============================================================================

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, DomainSystem, "Internal server error", http.StatusInternalServerError)
}

// ValidationError carries the per-field messages of a rejected body.
func ValidationError(fields map[string]string) *AppError {
	return New(CodeValidationFailed, DomainRequest, "Validation failed", http.StatusBadRequest).WithDetails(fields)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, DomainRequest, message, http.StatusBadRequest)
}

func NewUnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, DomainAuth, message, http.StatusUnauthorized)
}

func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, DomainAuth, message, http.StatusForbidden)
}

// ============================================================================
// Cart & media
// ============================================================================

// CartBusy reports that the user's cart lock could not be taken.
func CartBusy(err error) *AppError {
	return ErrCartBusy.WithError(err)
}

// ImageRejected keeps the processing failure as the cause of ErrInvalidImage.
func ImageRejected(err error) *AppError {
	return ErrInvalidImage.WithError(err)
}

// UploadTooLarge names the limit that was exceeded.
func UploadTooLarge(limit int64) *AppError {
	return ErrFileTooLarge.WithDetails(map[string]int64{"max_bytes": limit})
}
