// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/production-backend/internal/domain/catalog"
	"github.com/your-org/production-backend/internal/pkg/auth"
)

// CatalogHandler exposes fragrance maintenance, product types and imports
type CatalogHandler struct {
	catalogService *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: svc}
}

type importMaterialsPayload struct {
	Items []catalog.MaterialImportItem `json:"items"`
}

type importFragrancesPayload struct {
	Items []catalog.FragranceImportItem `json:"items"`
}

// Callables lists the catalog operations
func (h *CatalogHandler) Callables() []Callable {
	return []Callable{
		{Name: "updateFragranceByCode", MinRole: auth.RoleForeman, Handle: h.updateFragranceByCode},
		{Name: "diagnoseFragranceStatus", MinRole: auth.RoleForeman, Handle: h.diagnoseFragranceStatus},
		{Name: "fixFragranceStatus", MinRole: auth.RoleAdmin, Handle: h.fixFragranceStatus},
		{Name: "diagnoseFragranceRatios", MinRole: auth.RoleForeman, Handle: h.diagnoseFragranceRatios},
		{Name: "fixAllFragranceRatios", MinRole: auth.RoleAdmin, Handle: h.fixAllFragranceRatios},
		{Name: "listProductTypes", MinRole: auth.RoleWorker, Handle: h.listProductTypes},
		{Name: "createProductType", MinRole: auth.RoleForeman, Handle: h.createProductType},
		{Name: "updateProductType", MinRole: auth.RoleForeman, Handle: h.updateProductType},
		{Name: "deleteProductType", MinRole: auth.RoleAdmin, Handle: h.deleteProductType},
		{Name: "importMaterials", MinRole: auth.RoleAdmin, Handle: h.importMaterials},
		{Name: "importFragrances", MinRole: auth.RoleAdmin, Handle: h.importFragrances},
	}
}

func (h *CatalogHandler) updateFragranceByCode(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req catalog.UpdateFragranceRequest
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.catalogService.UpdateFragranceByCode(c.Request.Context(), &req)
}

func (h *CatalogHandler) diagnoseFragranceStatus(c *gin.Context, _ auth.Actor) (interface{}, error) {
	return h.catalogService.DiagnoseFragranceStatus(c.Request.Context())
}

func (h *CatalogHandler) fixFragranceStatus(c *gin.Context, _ auth.Actor) (interface{}, error) {
	return h.catalogService.FixFragranceStatus(c.Request.Context())
}

func (h *CatalogHandler) diagnoseFragranceRatios(c *gin.Context, _ auth.Actor) (interface{}, error) {
	return h.catalogService.DiagnoseFragranceRatios(c.Request.Context())
}

func (h *CatalogHandler) fixAllFragranceRatios(c *gin.Context, _ auth.Actor) (interface{}, error) {
	return h.catalogService.FixAllFragranceRatios(c.Request.Context())
}

func (h *CatalogHandler) listProductTypes(c *gin.Context, _ auth.Actor) (interface{}, error) {
	return h.catalogService.ListProductTypes(c.Request.Context())
}

func (h *CatalogHandler) createProductType(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req catalog.CreateProductTypeRequest
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.catalogService.CreateProductType(c.Request.Context(), &req)
}

func (h *CatalogHandler) updateProductType(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req catalog.UpdateProductTypeRequest
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.catalogService.UpdateProductType(c.Request.Context(), &req)
}

func (h *CatalogHandler) deleteProductType(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req idPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	if err := h.catalogService.DeleteProductType(c.Request.Context(), req.ID); err != nil {
		return nil, err
	}
	return gin.H{"id": req.ID, "deleted": true}, nil
}

func (h *CatalogHandler) importMaterials(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req importMaterialsPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.catalogService.ImportMaterials(c.Request.Context(), req.Items)
}

func (h *CatalogHandler) importFragrances(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req importFragrancesPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.catalogService.ImportFragrances(c.Request.Context(), req.Items)
}
