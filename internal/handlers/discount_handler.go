package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitshop_backend/internal/middleware"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/services"
	"fitshop_backend/internal/services/dto"
)

type DiscountHandler struct {
	*BaseHandler
	discountService services.DiscountService
}

func NewDiscountHandler(base *BaseHandler, discountService services.DiscountService) *DiscountHandler {
	return &DiscountHandler{
		BaseHandler:     base,
		discountService: discountService,
	}
}

func (h *DiscountHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	admin := rg.Group("/admin/discounts")
	admin.Use(authMW, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("", h.CreateDiscount)
		admin.GET("", h.ListDiscounts)
	}
}

// CreateDiscount godoc
// @Summary Create a discount code
// @Tags admin-discounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param discount body dto.CreateDiscountRequest true "Discount"
// @Success 201 {object} dto.DiscountResponse
// @Failure 409 {object} apperrors.ErrorResponse "Code already exists"
// @Router /admin/discounts [post]
func (h *DiscountHandler) CreateDiscount(c *gin.Context) {
	var req dto.CreateDiscountRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	discount, err := h.discountService.CreateDiscount(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewDiscountResponse(discount))
}

// ListDiscounts godoc
// @Summary List discount codes
// @Tags admin-discounts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.DiscountResponse
// @Router /admin/discounts [get]
func (h *DiscountHandler) ListDiscounts(c *gin.Context) {
	discounts, err := h.discountService.ListDiscounts(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	resp := make([]*dto.DiscountResponse, 0, len(discounts))
	for i := range discounts {
		resp = append(resp, dto.NewDiscountResponse(&discounts[i]))
	}
	c.JSON(http.StatusOK, resp)
}
