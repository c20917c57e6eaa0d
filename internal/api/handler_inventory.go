package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"millops-backend/internal/model"
	"millops-backend/internal/mw"
)

// branchScoped narrows a query to the request's branch when the X-Branch-Id
// header is present.
func branchScoped(c *gin.Context, q *gorm.DB) *gorm.DB {
	if id := mw.BranchID(c); id != nil {
		return q.Where("branch_id = ?", *id)
	}
	return q
}

type createGodownRequest struct {
	Name           string  `json:"name" binding:"required"`
	Type           string  `json:"type"`
	CurrentStorage float64 `json:"current_storage"`
}

// CreateGodown handles POST /api/godowns.
func (h *Handler) CreateGodown(c *gin.Context) {
	var req createGodownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	godown := model.Godown{
		Name:           req.Name,
		Type:           req.Type,
		CurrentStorage: req.CurrentStorage,
		BranchID:       mw.BranchID(c),
	}
	if err := h.store.DB().Create(&godown).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, newGodownResponse(&godown))
}

// ListGodowns handles GET /api/godowns.
func (h *Handler) ListGodowns(c *gin.Context) {
	var godowns []model.Godown
	if err := branchScoped(c, h.store.DB()).Order("id ASC").Find(&godowns).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve godowns"})
		return
	}

	out := make([]*godownResponse, 0, len(godowns))
	for i := range godowns {
		out = append(out, newGodownResponse(&godowns[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetGodown handles GET /api/godowns/:id.
func (h *Handler) GetGodown(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid godown ID"})
		return
	}

	var godown model.Godown
	if err := h.store.DB().First(&godown, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "godown not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, newGodownResponse(&godown))
}

type createBinRequest struct {
	BinNumber string  `json:"bin_number" binding:"required"`
	Capacity  float64 `json:"capacity" binding:"required"`
	Status    string  `json:"status"`
}

// CreateBin handles POST /api/bins. Duplicate bin numbers are a conflict.
func (h *Handler) CreateBin(c *gin.Context) {
	var req createBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	h.store.DB().Model(&model.Bin{}).Where("bin_number = ?", req.BinNumber).Count(&count)
	if count > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bin_number already exists"})
		return
	}

	bin := model.Bin{
		BinNumber: req.BinNumber,
		Capacity:  req.Capacity,
		Status:    model.BinActive,
		BranchID:  mw.BranchID(c),
	}
	if req.Status != "" {
		bin.Status = model.BinStatus(req.Status)
	}
	if err := h.store.DB().Create(&bin).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, newBinResponse(&bin))
}

// ListBins handles GET /api/bins?status=.
func (h *Handler) ListBins(c *gin.Context) {
	q := branchScoped(c, h.store.DB()).Order("bin_number ASC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var bins []model.Bin
	if err := q.Find(&bins).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bins"})
		return
	}

	out := make([]*binResponse, 0, len(bins))
	for i := range bins {
		out = append(out, newBinResponse(&bins[i]))
	}
	c.JSON(http.StatusOK, out)
}

type updateBinRequest struct {
	Capacity *float64 `json:"capacity"`
	Status   *string  `json:"status"`
}

// UpdateBin handles PUT /api/bins/:id (administrative edits).
func (h *Handler) UpdateBin(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid bin ID"})
		return
	}

	var req updateBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var bin model.Bin
	if err := h.store.DB().First(&bin, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "bin not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	updates := map[string]any{}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := h.store.DB().Model(&bin).Updates(updates).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, newBinResponse(&bin))
}

type createWasteEntryRequest struct {
	TransferSessionID *uint   `json:"transfer_session_id"`
	GodownID          uint    `json:"godown_id" binding:"required"`
	Quantity          float64 `json:"quantity" binding:"required"`
	Notes             string  `json:"notes"`
}

// CreateWasteEntry handles POST /api/waste-entries. Waste is an independent
// ledger; it does not move inventory totals.
func (h *Handler) CreateWasteEntry(c *gin.Context) {
	var req createWasteEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	h.store.DB().Model(&model.Godown{}).Where("id = ?", req.GodownID).Count(&count)
	if count == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "godown not found"})
		return
	}

	entry := model.WasteEntry{
		TransferSessionID: req.TransferSessionID,
		GodownID:          req.GodownID,
		Quantity:          req.Quantity,
		Notes:             req.Notes,
		RecordedAt:        time.Now().UTC(),
	}
	if err := h.store.DB().Create(&entry).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListWasteEntries handles GET /api/waste-entries?godown_id=.
func (h *Handler) ListWasteEntries(c *gin.Context) {
	q := h.store.DB().Preload("Godown").Order("recorded_at DESC")
	if raw := c.Query("godown_id"); raw != "" {
		q = q.Where("godown_id = ?", raw)
	}

	var entries []model.WasteEntry
	if err := q.Find(&entries).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve waste entries"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
