package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"millops-backend/internal/model"
	"millops-backend/internal/mw"
)

type routeStageRequest struct {
	SequenceNo    int     `json:"sequence_no" binding:"required"`
	ComponentType string  `json:"component_type" binding:"required"`
	ComponentID   uint    `json:"component_id" binding:"required"`
	IntervalHours float64 `json:"interval_hours"`
}

type createRouteRequest struct {
	Name   string              `json:"name" binding:"required"`
	Stages []routeStageRequest `json:"stages" binding:"required,min=2"`
}

// CreateRoute handles POST /api/route-configurations. The first stage must
// be a godown, the last a bin; magnet stages carry per-magnet intervals
// (hours on the wire, seconds in storage).
func (h *Handler) CreateRoute(c *gin.Context) {
	var req createRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Stages[0].ComponentType != model.StageGodown {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "first stage must be a godown"})
		return
	}
	if req.Stages[len(req.Stages)-1].ComponentType != model.StageBin {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "last stage must be a bin"})
		return
	}
	for _, stage := range req.Stages[1 : len(req.Stages)-1] {
		if stage.ComponentType != model.StageMagnet {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "intermediate stages must be magnets"})
			return
		}
	}

	route := model.RouteConfiguration{
		Name:     req.Name,
		BranchID: mw.BranchID(c),
	}
	for _, stage := range req.Stages {
		route.Stages = append(route.Stages, model.RouteStage{
			SequenceNo:    stage.SequenceNo,
			ComponentType: stage.ComponentType,
			ComponentID:   stage.ComponentID,
			IntervalSecs:  int64(stage.IntervalHours * 3600),
		})
	}

	if err := h.store.DB().Create(&route).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, route)
}

// ListRoutes handles GET /api/route-configurations.
func (h *Handler) ListRoutes(c *gin.Context) {
	var routes []model.RouteConfiguration
	err := branchScoped(c, h.store.DB()).
		Preload("Stages", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_no ASC") }).
		Order("created_at DESC").
		Find(&routes).Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve route configurations"})
		return
	}
	c.JSON(http.StatusOK, routes)
}

// DeleteRoute handles DELETE /api/route-configurations/:id.
func (h *Handler) DeleteRoute(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	err = h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_configuration_id = ?", id).Delete(&model.RouteStage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.RouteConfiguration{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "route configuration not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
