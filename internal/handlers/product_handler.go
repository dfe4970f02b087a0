package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitshop_backend/internal/middleware"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/services"
	"fitshop_backend/internal/services/dto"
	"fitshop_backend/pkg/apperrors"
)

const productPictureField = "picture"

type ProductHandler struct {
	*BaseHandler
	productService services.ProductService
}

func NewProductHandler(base *BaseHandler, productService services.ProductService) *ProductHandler {
	return &ProductHandler{
		BaseHandler:    base,
		productService: productService,
	}
}

func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	products := rg.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:slug", h.GetProduct)
	}

	admin := rg.Group("/admin/products")
	admin.Use(authMW, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("", h.CreateProduct)
		admin.PUT("/:slug", h.UpdateProduct)
		admin.DELETE("/:slug", h.DeleteProduct)
	}
}

// ListProducts godoc
// @Summary List products
// @Tags products
// @Produce json
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	products, total, err := h.productService.ListProducts(c.Request.Context(), h.GetDB(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":  products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetProduct godoc
// @Summary Product by slug
// @Tags products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} models.Product
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /products/{slug} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), h.GetDB(c), c.Param("slug"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct godoc
// @Summary Create a product
// @Tags admin-products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Name"
// @Param slug formData string false "Slug, derived from the name when empty"
// @Param description formData string false "Description"
// @Param price formData string true "Price"
// @Param picture formData file true "Picture"
// @Success 201 {object} models.Product
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 422 {object} apperrors.ErrorResponse "Not an image"
// @Router /admin/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	fh, err := c.FormFile(productPictureField)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("picture is required"))
		return
	}
	upload, f, err := h.OpenUpload(fh)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer f.Close()

	product, err := h.productService.CreateProduct(c.Request.Context(), h.GetDB(c), &req, upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct godoc
// @Summary Update a product
// @Description A new picture replaces the current one
// @Tags admin-products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Product slug"
// @Param name formData string true "Name"
// @Param slug formData string false "New slug"
// @Param description formData string false "Description"
// @Param price formData string true "Price"
// @Param picture formData file false "Picture"
// @Success 200 {object} models.Product
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/products/{slug} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	var upload *services.ImageUpload
	fh, err := c.FormFile(productPictureField)
	switch {
	case err == nil:
		var f multipart.File
		upload, f, err = h.OpenUpload(fh)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		defer f.Close()
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid multipart body"))
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), h.GetDB(c), c.Param("slug"), &req, upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary Delete a product and its pictures
// @Tags admin-products
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Product slug"
// @Success 200 {object} dto.DeleteLogResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/products/{slug} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	log, err := h.productService.DeleteProduct(c.Request.Context(), h.GetDB(c), c.Param("slug"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDeleteLogResponse(log))
}
