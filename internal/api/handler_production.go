package api

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"millops-backend/internal/model"
	"millops-backend/internal/mw"
)

type productionItemRequest struct {
	GodownID   uint    `json:"godown_id" binding:"required"`
	Percentage float64 `json:"percentage" binding:"required"`
}

type createProductionOrderRequest struct {
	Code       string                  `json:"code" binding:"required"`
	TargetTons float64                 `json:"target_tons" binding:"required"`
	Notes      string                  `json:"notes"`
	Items      []productionItemRequest `json:"items" binding:"required,min=1"`
}

// CreateProductionOrder handles POST /api/production-orders. The blend
// percentages across items must total 100.
func (h *Handler) CreateProductionOrder(c *gin.Context) {
	var req createProductionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total := 0.0
	for _, item := range req.Items {
		total += item.Percentage
	}
	if math.Abs(total-100) > 0.01 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "blend percentages must sum to 100"})
		return
	}

	for _, item := range req.Items {
		if !lookupExists(h.store.DB(), &model.Godown{}, item.GodownID) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "godown not found"})
			return
		}
	}

	var count int64
	h.store.DB().Model(&model.ProductionOrder{}).Where("code = ?", req.Code).Count(&count)
	if count > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "production order code already exists"})
		return
	}

	order := model.ProductionOrder{
		Code:       req.Code,
		TargetTons: req.TargetTons,
		Status:     model.ProductionPlanned,
		Notes:      req.Notes,
		BranchID:   mw.BranchID(c),
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, model.ProductionOrderItem{
			GodownID:   item.GodownID,
			Percentage: item.Percentage,
		})
	}

	if err := h.store.DB().Create(&order).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListProductionOrders handles GET /api/production-orders?status=.
func (h *Handler) ListProductionOrders(c *gin.Context) {
	q := branchScoped(c, h.store.DB()).Preload("Items").Preload("Items.Godown").Order("id DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []model.ProductionOrder
	if err := q.Find(&orders).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve production orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

type updateProductionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateProductionOrderStatus handles POST /api/production-orders/:id/status.
func (h *Handler) UpdateProductionOrderStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid production order ID"})
		return
	}

	var req updateProductionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Status {
	case model.ProductionPlanned, model.ProductionRunning, model.ProductionCompleted:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown production order status"})
		return
	}

	var order model.ProductionOrder
	if err := h.store.DB().First(&order, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "production order not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if err := h.store.DB().Model(&order).Update("status", req.Status).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}
