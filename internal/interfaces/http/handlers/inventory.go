// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/production-backend/internal/domain/inventory"
	"github.com/your-org/production-backend/internal/pkg/auth"
)

// InventoryHandler exposes stock counts, adjustments and the audit trail
type InventoryHandler struct {
	inventoryService *inventory.Service
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(svc *inventory.Service) *InventoryHandler {
	return &InventoryHandler{inventoryService: svc}
}

// Callables lists the inventory operations
func (h *InventoryHandler) Callables() []Callable {
	return []Callable{
		{Name: "performStocktake", MinRole: auth.RoleForeman, Handle: h.performStocktake},
		{Name: "unifiedInventoryUpdate", MinRole: auth.RoleForeman, Handle: h.unifiedInventoryUpdate},
		{Name: "getLowStockItems", MinRole: auth.RoleWorker, Handle: h.getLowStockItems},
		{Name: "listInventoryRecords", MinRole: auth.RoleWorker, Handle: h.listInventoryRecords},
		{Name: "listInventoryMovements", MinRole: auth.RoleWorker, Handle: h.listInventoryMovements},
	}
}

func (h *InventoryHandler) performStocktake(c *gin.Context, actor auth.Actor) (interface{}, error) {
	var req inventory.StocktakeRequest
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.inventoryService.PerformStocktake(c.Request.Context(), actor, &req)
}

func (h *InventoryHandler) unifiedInventoryUpdate(c *gin.Context, actor auth.Actor) (interface{}, error) {
	var req inventory.UnifiedUpdateRequest
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.inventoryService.UnifiedInventoryUpdate(c.Request.Context(), actor, &req)
}

func (h *InventoryHandler) getLowStockItems(c *gin.Context, _ auth.Actor) (interface{}, error) {
	items, err := h.inventoryService.GetLowStockItems(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return gin.H{"items": items, "count": len(items)}, nil
}

func (h *InventoryHandler) listInventoryRecords(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req inventory.ListRecordsRequest
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.inventoryService.ListInventoryRecords(c.Request.Context(), &req)
}

func (h *InventoryHandler) listInventoryMovements(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req inventory.ListMovementsRequest
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.inventoryService.ListInventoryMovements(c.Request.Context(), &req)
}
