package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/infrastructure/logger"
	"github.com/grocerypos/backend/internal/infrastructure/printing"
	"github.com/grocerypos/backend/internal/interfaces/http/dto"
	"github.com/grocerypos/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// List returns the catalog as a bare JSON array, newest first.
// Optional ?category= and ?search= narrow the result
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, dto.ErrCodeBadRequest, "Invalid query parameters")
		return
	}

	products, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if products == nil {
		products = []catalogapp.ProductResponse{}
	}
	c.JSON(http.StatusOK, products)
}

// Get returns one product by id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Lookup resolves a scanned code, matching the barcode first and then the id
func (h *ProductHandler) Lookup(c *gin.Context) {
	var req dto.LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	product, err := h.productService.Lookup(c.Request.Context(), req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, catalogapp.CreateProductResponse{
		ID:      product.ID,
		Message: "Product created successfully",
	})
}

// Update replaces every field of a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req catalogapp.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	if _, err := h.productService.Update(c.Request.Context(), id, req); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogapp.MessageResponse{Message: "Product updated successfully"})
}

// Delete removes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogapp.MessageResponse{Message: "Product deleted successfully"})
}

// BarcodeLabel renders a code128 sticker for the product. Products without
// a barcode are labelled with their id, which the register also accepts
func (h *ProductHandler) BarcodeLabel(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	code := strconv.FormatInt(product.ID, 10)
	if product.Barcode != nil && *product.Barcode != "" {
		code = *product.Barcode
	}

	png, err := printing.BarcodeLabelPNG(code, printing.LabelWidth, printing.LabelHeight)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// bindFailed answers any unreadable or incomplete body with MISSING_FIELDS
func (h *ProductHandler) bindFailed(c *gin.Context, err error) {
	logger.GetGinLogger(c).Debug("invalid product request",
		zap.Error(err),
		zap.Any("fields", middleware.ValidationMessages(err)),
	)
	h.HandleError(c, catalogapp.ErrMissingFields)
}
