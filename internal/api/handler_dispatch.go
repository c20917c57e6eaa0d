package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"millops-backend/internal/model"
	"millops-backend/internal/store"
)

type dispatchItemRequest struct {
	OrderItemID      uint     `json:"order_item_id" binding:"required"`
	DispatchedQtyTon *float64 `json:"dispatched_qty_ton" binding:"required"`
	NumberOfBags     *int     `json:"number_of_bags"`
}

type createDispatchRequest struct {
	OrderID       uint                  `json:"order_id" binding:"required"`
	VehicleNumber string                `json:"vehicle_number"`
	Notes         string                `json:"notes"`
	Items         []dispatchItemRequest `json:"items" binding:"required,min=1"`
}

// dispatchResponse renders a created dispatch.
type dispatchResponse struct {
	ID            uint                 `json:"id"`
	OrderID       uint                 `json:"order_id"`
	VehicleNumber string               `json:"vehicle_number,omitempty"`
	DispatchedAt  istTime              `json:"dispatched_at"`
	Notes         string               `json:"notes,omitempty"`
	Items         []model.DispatchItem `json:"items"`
}

// CreateDispatch handles POST /api/dispatches. Over-dispatching any item or
// an inconsistent bag count rejects the whole dispatch.
func (h *Handler) CreateDispatch(c *gin.Context) {
	var req createDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := store.DispatchInput{
		OrderID:       req.OrderID,
		VehicleNumber: req.VehicleNumber,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, store.DispatchItemInput{
			OrderItemID:      item.OrderItemID,
			DispatchedQtyTon: *item.DispatchedQtyTon,
			NumberOfBags:     item.NumberOfBags,
		})
	}

	dispatch, err := h.store.CreateDispatch(c.Request.Context(), in, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dispatchResponse{
		ID:            dispatch.ID,
		OrderID:       dispatch.OrderID,
		VehicleNumber: dispatch.VehicleNumber,
		DispatchedAt:  istTime(dispatch.DispatchedAt),
		Notes:         dispatch.Notes,
		Items:         dispatch.Items,
	})
}

// ListDispatches handles GET /api/dispatches?order_id=, newest first.
func (h *Handler) ListDispatches(c *gin.Context) {
	q := h.store.DB().Preload("Items").Order("dispatched_at DESC")
	if raw := c.Query("order_id"); raw != "" {
		q = q.Where("order_id = ?", raw)
	}

	var dispatches []model.Dispatch
	if err := q.Find(&dispatches).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dispatches"})
		return
	}

	out := make([]dispatchResponse, 0, len(dispatches))
	for _, d := range dispatches {
		out = append(out, dispatchResponse{
			ID:            d.ID,
			OrderID:       d.OrderID,
			VehicleNumber: d.VehicleNumber,
			DispatchedAt:  istTime(d.DispatchedAt),
			Notes:         d.Notes,
			Items:         d.Items,
		})
	}
	c.JSON(http.StatusOK, out)
}
