package handler

import (
	"context"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderService interface {
	ListByVendor(ctx context.Context, vendorID uuid.UUID, status string) ([]model.Order, error)
	UpdateStatus(ctx context.Context, vendorID, orderID uuid.UUID, to string) error
}

type OrderHandler struct {
	svc OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) ListByVendor(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	orders, err := h.svc.ListByVendor(c.Request.Context(), a.ID, c.Query("status"))
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"orders": orders})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.UpdateStatus(c.Request.Context(), a.ID, id, req.Status); err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"msg": "updated"})
}
