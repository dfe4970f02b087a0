package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/services"
	"fitshop_backend/internal/services/dto"
)

type PaymentHandler struct {
	*BaseHandler
	orderService services.OrderService
}

func NewPaymentHandler(base *BaseHandler, orderService services.OrderService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:  base,
		orderService: orderService,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/robokassa/result", h.RobokassaResult)
		payments.GET("/robokassa/result", h.RobokassaResult)
	}
}

// RobokassaResult godoc
// @Summary Robokassa ResultURL callback
// @Description Verifies the signature, marks the order paid and answers OK{InvId}. Repeated callbacks are accepted.
// @Tags payments
// @Accept x-www-form-urlencoded
// @Produce plain
// @Param OutSum formData string true "Amount"
// @Param InvId formData string true "Invoice id"
// @Param SignatureValue formData string true "MD5(OutSum:InvId:Password2)"
// @Success 200 {string} string "OK{InvId}"
// @Failure 400 {object} apperrors.ErrorResponse "Bad signature"
// @Router /payments/robokassa/result [post]
func (h *PaymentHandler) RobokassaResult(c *gin.Context) {
	var req dto.RobokassaResultRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	payload, err := json.Marshal(c.Request.Form)
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "failed to encode payment payload", err)
		payload = nil
	}

	answer, err := h.orderService.ConfirmPayment(c.Request.Context(), h.GetDB(c), &req, datatypes.JSON(payload))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.String(http.StatusOK, answer)
}
