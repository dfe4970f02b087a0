package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitshop_backend/internal/services"
	"fitshop_backend/internal/services/dto"
	"fitshop_backend/pkg/apperrors"
)

type OrderHandler struct {
	*BaseHandler
	orderService services.OrderService
}

func NewOrderHandler(base *BaseHandler, orderService services.OrderService) *OrderHandler {
	return &OrderHandler{
		BaseHandler:  base,
		orderService: orderService,
	}
}

func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	order := rg.Group("/order")
	order.Use(authMW)
	{
		order.GET("", h.GetActiveOrder)
		order.GET("/count", h.CountItems)
		order.POST("/delivery", h.SaveDelivery)
		order.POST("/checkout", h.Checkout)
		order.GET("/:discount_code", h.ApplyDiscount)

		order.PUT("/:product", h.AddItem)
		order.DELETE("/:product", h.DeleteItem)
		order.PUT("/:product/increase", h.IncreaseItem)
		order.PUT("/:product/reduce", h.ReduceItem)
	}

	orders := rg.Group("/orders")
	orders.Use(authMW)
	{
		orders.GET("/history", h.History)
	}
}

// cartFailure answers the cart mutations that have no order or no such line
// with a flat {"error": msg}; anything else goes through the usual mapping.
func (h *OrderHandler) cartFailure(c *gin.Context, err error, msg string) {
	if errors.Is(err, apperrors.ErrNoActiveOrder) || errors.Is(err, apperrors.ErrItemNotInOrder) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	h.HandleServiceError(c, err)
}

// GetActiveOrder godoc
// @Summary Current cart
// @Tags order
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} apperrors.ErrorResponse "No active orders"
// @Router /order [get]
func (h *OrderHandler) GetActiveOrder(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetActiveOrder(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// AddItem godoc
// @Summary Add a product to the cart
// @Description Creates the cart on first use; adding a product already in the cart raises its count
// @Tags order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product path string true "Product slug"
// @Param body body dto.AddItemRequest false "Count, 1 when omitted"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} apperrors.ErrorResponse "Unknown product"
// @Router /order/{product} [put]
func (h *OrderHandler) AddItem(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.AddItemRequest
	if c.Request.ContentLength > 0 {
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
	}

	order, err := h.orderService.AddItem(c.Request.Context(), h.GetDB(c), userID, c.Param("product"), req.Count)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// DeleteItem godoc
// @Summary Remove a product line from the cart
// @Tags order
// @Produce json
// @Security BearerAuth
// @Param product path string true "Product slug"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} map[string]string "Delete failed"
// @Router /order/{product} [delete]
func (h *OrderHandler) DeleteItem(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	order, err := h.orderService.DeleteItem(c.Request.Context(), h.GetDB(c), userID, c.Param("product"))
	if err != nil {
		h.cartFailure(c, err, "Delete failed")
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// IncreaseItem godoc
// @Summary Increase a line count by one
// @Tags order
// @Produce json
// @Security BearerAuth
// @Param product path string true "Product slug"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} map[string]string "Increase failed"
// @Router /order/{product}/increase [put]
func (h *OrderHandler) IncreaseItem(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	order, err := h.orderService.IncreaseItemCount(c.Request.Context(), h.GetDB(c), userID, c.Param("product"))
	if err != nil {
		h.cartFailure(c, err, "Increase failed")
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// ReduceItem godoc
// @Summary Decrease a line count by one
// @Description A line reaching zero is removed; reducing a product not in the cart changes nothing
// @Tags order
// @Produce json
// @Security BearerAuth
// @Param product path string true "Product slug"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} map[string]string "Decrease failed"
// @Router /order/{product}/reduce [put]
func (h *OrderHandler) ReduceItem(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	order, err := h.orderService.ReduceItemCount(c.Request.Context(), h.GetDB(c), userID, c.Param("product"))
	if err != nil {
		h.cartFailure(c, err, "Decrease failed")
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// CountItems godoc
// @Summary Number of items in the cart
// @Tags order
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Router /order/count [get]
func (h *OrderHandler) CountItems(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	count, err := h.orderService.CountItemsInCart(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"Count items in cart": count})
}

// ApplyDiscount godoc
// @Summary Apply a discount code to the cart
// @Tags order
// @Produce json
// @Security BearerAuth
// @Param discount_code path string true "Discount code"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} apperrors.ErrorResponse "Unknown code"
// @Router /order/{discount_code} [get]
func (h *OrderHandler) ApplyDiscount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	order, err := h.orderService.ApplyDiscount(c.Request.Context(), h.GetDB(c), userID, c.Param("discount_code"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// SaveDelivery godoc
// @Summary Set delivery details of the cart
// @Tags order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param delivery body dto.DeliveryRequest true "Delivery"
// @Success 200 {object} models.Delivery
// @Failure 400 {object} map[string]string "No active orders"
// @Router /order/delivery [post]
func (h *OrderHandler) SaveDelivery(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.DeliveryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	delivery, err := h.orderService.SaveDelivery(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoActiveOrder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No active orders"})
			return
		}
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, delivery)
}

// Checkout godoc
// @Summary Start payment of the cart
// @Description Returns a signed Robokassa link; the order turns PAYED when the payment callback arrives
// @Tags order
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CheckoutResponse
// @Failure 400 {object} apperrors.ErrorResponse "No active orders or empty cart"
// @Router /order/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.orderService.Checkout(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary Past orders
// @Tags order
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.OrderResponse
// @Router /orders/history [get]
func (h *OrderHandler) History(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.History(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	resp := make([]*dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, dto.NewOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}
