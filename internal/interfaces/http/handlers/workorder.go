// internal/interfaces/http/handlers/workorder.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/production-backend/internal/domain/workorder"
	"github.com/your-org/production-backend/internal/interfaces/http/response"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"github.com/your-org/production-backend/internal/pkg/pdf"
)

// WorkOrderHandler exposes the work order lifecycle
type WorkOrderHandler struct {
	workOrderService *workorder.Service
	pdfService       *pdf.Service
}

// NewWorkOrderHandler creates a new work order handler
func NewWorkOrderHandler(svc *workorder.Service, pdfService *pdf.Service) *WorkOrderHandler {
	return &WorkOrderHandler{
		workOrderService: svc,
		pdfService:       pdfService,
	}
}

type targetPayload struct {
	ID             uint    `json:"id" binding:"required"`
	TargetQuantity float64 `json:"targetQuantity"`
}

type actualPayload struct {
	ID             uint    `json:"id" binding:"required"`
	ActualQuantity float64 `json:"actualQuantity"`
}

type usagePayload struct {
	ID    uint                    `json:"id" binding:"required"`
	Items []workorder.UsageUpdate `json:"items" binding:"required"`
}

type reloadPayload struct {
	ID              uint `json:"id" binding:"required"`
	RefreshSnapshot bool `json:"refreshSnapshot"`
}

type statusPayload struct {
	ID     uint             `json:"id" binding:"required"`
	Status workorder.Status `json:"status" binding:"required"`
}

type commentPayload struct {
	ID   uint   `json:"id" binding:"required"`
	Text string `json:"text"`
}

type commentRefPayload struct {
	ID        uint `json:"id" binding:"required"`
	CommentID uint `json:"commentId" binding:"required"`
}

type timeRecordPayload struct {
	ID uint `json:"id" binding:"required"`
	workorder.TimeRecordRequest
}

type timeRecordRefPayload struct {
	ID           uint `json:"id" binding:"required"`
	TimeRecordID uint `json:"timeRecordId" binding:"required"`
}

// Callables lists the work order operations
func (h *WorkOrderHandler) Callables() []Callable {
	return []Callable{
		{Name: "createWorkOrder", MinRole: auth.RoleForeman, Handle: h.createWorkOrder},
		{Name: "getWorkOrder", MinRole: auth.RoleWorker, Handle: h.getWorkOrder},
		{Name: "listWorkOrders", MinRole: auth.RoleWorker, Handle: h.listWorkOrders},
		{Name: "updateWorkOrderTarget", MinRole: auth.RoleForeman, Handle: h.updateTarget},
		{Name: "updateWorkOrderActual", MinRole: auth.RoleWorker, Handle: h.updateActual},
		{Name: "updateWorkOrderUsage", MinRole: auth.RoleWorker, Handle: h.updateUsage},
		{Name: "reloadWorkOrderBOM", MinRole: auth.RoleForeman, Handle: h.reloadBOM},
		{Name: "changeWorkOrderStatus", MinRole: auth.RoleForeman, Handle: h.changeStatus},
		{Name: "addWorkOrderComment", MinRole: auth.RoleWorker, Handle: h.addComment},
		{Name: "deleteWorkOrderComment", MinRole: auth.RoleWorker, Handle: h.deleteComment},
		{Name: "addWorkOrderTimeRecord", MinRole: auth.RoleWorker, Handle: h.addTimeRecord},
		{Name: "deleteWorkOrderTimeRecord", MinRole: auth.RoleWorker, Handle: h.deleteTimeRecord},
	}
}

func (h *WorkOrderHandler) createWorkOrder(c *gin.Context, actor auth.Actor) (interface{}, error) {
	var req workorder.CreateWorkOrderRequest
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.workOrderService.CreateWorkOrder(c.Request.Context(), actor, &req)
}

func (h *WorkOrderHandler) getWorkOrder(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req idPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.workOrderService.GetWorkOrder(c.Request.Context(), req.ID)
}

func (h *WorkOrderHandler) listWorkOrders(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req workorder.ListWorkOrdersRequest
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.workOrderService.ListWorkOrders(c.Request.Context(), &req)
}

func (h *WorkOrderHandler) updateTarget(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req targetPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.workOrderService.UpdateTargetQuantity(c.Request.Context(), req.ID, req.TargetQuantity)
}

func (h *WorkOrderHandler) updateActual(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req actualPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.workOrderService.UpdateActualQuantity(c.Request.Context(), req.ID, req.ActualQuantity)
}

func (h *WorkOrderHandler) updateUsage(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req usagePayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.workOrderService.UpdateUsedQuantities(c.Request.Context(), req.ID, req.Items)
}

func (h *WorkOrderHandler) reloadBOM(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req reloadPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.workOrderService.ReloadBOM(c.Request.Context(), req.ID, req.RefreshSnapshot)
}

func (h *WorkOrderHandler) changeStatus(c *gin.Context, actor auth.Actor) (interface{}, error) {
	var req statusPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.workOrderService.ChangeStatus(c.Request.Context(), actor, req.ID, req.Status)
}

func (h *WorkOrderHandler) addComment(c *gin.Context, actor auth.Actor) (interface{}, error) {
	var req commentPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.workOrderService.AddComment(c.Request.Context(), actor, req.ID, req.Text)
}

func (h *WorkOrderHandler) deleteComment(c *gin.Context, actor auth.Actor) (interface{}, error) {
	var req commentRefPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	if err := h.workOrderService.DeleteComment(c.Request.Context(), actor, req.ID, req.CommentID); err != nil {
		return nil, err
	}
	return gin.H{"id": req.CommentID, "deleted": true}, nil
}

func (h *WorkOrderHandler) addTimeRecord(c *gin.Context, actor auth.Actor) (interface{}, error) {
	var req timeRecordPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	return h.workOrderService.AddTimeRecord(c.Request.Context(), actor, req.ID, &req.TimeRecordRequest)
}

func (h *WorkOrderHandler) deleteTimeRecord(c *gin.Context, _ auth.Actor) (interface{}, error) {
	var req timeRecordRefPayload
	if err := bindPayload(c, &req); err != nil {
		return nil, err
	}
	if err := h.workOrderService.DeleteTimeRecord(c.Request.Context(), req.ID, req.TimeRecordID); err != nil {
		return nil, err
	}
	return gin.H{"id": req.TimeRecordID, "deleted": true}, nil
}

// DownloadSheet handles GET /work-orders/:id/sheet.pdf
func (h *WorkOrderHandler) DownloadSheet(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.Error(c, apperror.InvalidInput("invalid work order ID"))
		return
	}

	wo, err := h.workOrderService.GetWorkOrder(c.Request.Context(), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	buf, err := h.pdfService.GenerateProductionSheet(wo)
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.CodeUnavailable, err, "failed to generate production sheet"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", wo.Code))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
