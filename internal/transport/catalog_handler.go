package transport

import (
	"net/http"

	"shop-inventory/internal/auth"
	"shop-inventory/internal/middleware"
	"shop-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler handles HTTP requests for catalogs and their product membership
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes. Every route requires
// authentication; mutations of the catalog itself require ADMIN.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	readers := middleware.RequireRoles(h.logger, auth.RoleAdmin, auth.RoleUser)
	admins := middleware.RequireAdmin(h.logger)

	r.Route("/catalogs", func(r chi.Router) {
		r.Use(authMiddleware)

		r.With(readers).Get("/", h.ListCatalogs)
		r.With(admins).Post("/", h.CreateCatalog)

		r.Route("/{id}", func(r chi.Router) {
			r.With(readers).Get("/", h.GetCatalog)
			r.With(admins).Patch("/", h.UpdateCatalog)
			r.With(admins).Delete("/", h.DeleteCatalog)

			r.Route("/products", func(r chi.Router) {
				r.Use(readers)
				r.Get("/", h.ListCatalogProducts)
				r.Post("/{productId}", h.AssignProduct)
				r.Delete("/{productId}", h.UnassignProduct)
			})
		})
	})
}

// ListCatalogs handles GET /catalogs
func (h *CatalogHandler) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs, err := h.catalogService.ListCatalogs(r.Context())
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newCatalogResponses(catalogs))
}

// GetCatalog handles GET /catalogs/{id}
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "catalog")
	if !ok {
		return
	}

	catalog, err := h.catalogService.GetCatalog(r.Context(), id)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newCatalogResponse(catalog))
}

// CreateCatalog handles POST /catalogs
func (h *CatalogHandler) CreateCatalog(w http.ResponseWriter, r *http.Request) {
	var req CreateCatalogRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Catalog validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	catalog, err := h.catalogService.CreateCatalog(r.Context(), req.Name, req.Description)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, newCatalogResponse(catalog))
}

// UpdateCatalog handles PATCH /catalogs/{id}
func (h *CatalogHandler) UpdateCatalog(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "catalog")
	if !ok {
		return
	}

	var req UpdateCatalogRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Catalog validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	catalog, err := h.catalogService.UpdateCatalog(r.Context(), id, req.toPatch())
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newCatalogResponse(catalog))
}

// DeleteCatalog handles DELETE /catalogs/{id}
func (h *CatalogHandler) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "catalog")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCatalog(r.Context(), id); err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondEmpty(w)
}

// ListCatalogProducts handles GET /catalogs/{id}/products
func (h *CatalogHandler) ListCatalogProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "catalog")
	if !ok {
		return
	}

	products, err := h.catalogService.ListProductsInCatalog(r.Context(), id)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponses(products))
}

// AssignProduct handles POST /catalogs/{id}/products/{productId}
func (h *CatalogHandler) AssignProduct(w http.ResponseWriter, r *http.Request) {
	catalogID, ok := parseIDParam(w, r, "id", "catalog")
	if !ok {
		return
	}
	productID, ok := parseIDParam(w, r, "productId", "product")
	if !ok {
		return
	}

	product, err := h.catalogService.AssignProductToCatalog(r.Context(), catalogID, productID)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

// UnassignProduct handles DELETE /catalogs/{id}/products/{productId}
func (h *CatalogHandler) UnassignProduct(w http.ResponseWriter, r *http.Request) {
	catalogID, ok := parseIDParam(w, r, "id", "catalog")
	if !ok {
		return
	}
	productID, ok := parseIDParam(w, r, "productId", "product")
	if !ok {
		return
	}

	product, err := h.catalogService.UnassignProductFromCatalog(r.Context(), catalogID, productID)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}
