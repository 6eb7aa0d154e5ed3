package transport

import (
	"net/http"

	"shop-inventory/internal/auth"
	"shop-inventory/internal/middleware"
	"shop-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	readers := middleware.RequireRoles(h.logger, auth.RoleAdmin, auth.RoleUser)
	admins := middleware.RequireAdmin(h.logger)

	r.Route("/products", func(r chi.Router) {
		r.Use(authMiddleware)

		r.With(readers).Get("/", h.ListProducts)
		r.With(readers).Get("/unassigned", h.ListUnassignedProducts)
		r.With(admins).Post("/", h.CreateProduct)

		r.Route("/{id}", func(r chi.Router) {
			r.With(readers).Get("/", h.GetProduct)
			r.With(admins).Patch("/", h.UpdateProduct)
			r.With(admins).Delete("/", h.DeleteProduct)
		})
	})
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts(r.Context())
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponses(products))
}

// ListUnassignedProducts handles GET /products/unassigned
func (h *ProductHandler) ListUnassignedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListUnassignedProducts(r.Context())
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponses(products))
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), service.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         *req.Price,
		StockQuantity: req.StockQuantity,
		CatalogID:     req.CatalogID,
	})
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, newProductResponse(product))
}

// UpdateProduct handles PATCH /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), id, req.toPatch())
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondEmpty(w)
}
