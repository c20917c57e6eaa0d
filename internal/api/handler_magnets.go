package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"millops-backend/internal/model"
	"millops-backend/internal/mw"
)

type createMagnetRequest struct {
	Name   string `json:"name" binding:"required"`
	Status string `json:"status"`
}

// CreateMagnet handles POST /api/magnets. Magnet names are unique.
func (h *Handler) CreateMagnet(c *gin.Context) {
	var req createMagnetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	h.store.DB().Model(&model.Magnet{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "magnet name already exists"})
		return
	}

	magnet := model.Magnet{
		Name:     req.Name,
		Status:   model.MagnetActive,
		BranchID: mw.BranchID(c),
	}
	if req.Status != "" {
		magnet.Status = model.MagnetStatus(req.Status)
	}
	if err := h.store.DB().Create(&magnet).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, magnet)
}

// ListMagnets handles GET /api/magnets.
func (h *Handler) ListMagnets(c *gin.Context) {
	var magnets []model.Magnet
	if err := branchScoped(c, h.store.DB()).Order("name ASC").Find(&magnets).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve magnets"})
		return
	}
	c.JSON(http.StatusOK, magnets)
}

type updateMagnetRequest struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// UpdateMagnet handles PUT /api/magnets/:id.
func (h *Handler) UpdateMagnet(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid magnet ID"})
		return
	}

	var req updateMagnetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var magnet model.Magnet
	if err := h.store.DB().First(&magnet, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "magnet not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := h.store.DB().Model(&magnet).Updates(updates).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, magnet)
}
