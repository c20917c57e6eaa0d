package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"millops-backend/internal/model"
	"millops-backend/internal/mw"
)

// gateEntryResponse renders a gate entry with the derived net weight.
type gateEntryResponse struct {
	ID            uint     `json:"id"`
	VehicleNumber string   `json:"vehicle_number"`
	SupplierID    uint     `json:"supplier_id"`
	SupplierName  string   `json:"supplier_name,omitempty"`
	GrossWeight   *float64 `json:"gross_weight"`
	TareWeight    *float64 `json:"tare_weight"`
	NetWeight     *float64 `json:"net_weight"`
	GodownID      *uint    `json:"godown_id"`
	Status        string   `json:"status"`
	Notes         string   `json:"notes,omitempty"`
	EnteredAt     istTime  `json:"entered_at"`
	UnloadedAt    *istTime `json:"unloaded_at"`
}

func newGateEntryResponse(e *model.GateEntry) gateEntryResponse {
	resp := gateEntryResponse{
		ID:            e.ID,
		VehicleNumber: e.VehicleNumber,
		SupplierID:    e.SupplierID,
		GrossWeight:   sanitizeFloat(e.GrossWeight),
		TareWeight:    sanitizeFloat(e.TareWeight),
		NetWeight:     sanitizeFloat(e.GrossWeight - e.TareWeight),
		GodownID:      e.GodownID,
		Status:        e.Status,
		Notes:         e.Notes,
		EnteredAt:     istTime(e.EnteredAt),
		UnloadedAt:    istPtr(e.UnloadedAt),
	}
	if e.Supplier != nil {
		resp.SupplierName = e.Supplier.Name
	}
	return resp
}

type createGateEntryRequest struct {
	VehicleNumber string  `json:"vehicle_number" binding:"required"`
	SupplierID    uint    `json:"supplier_id" binding:"required"`
	GrossWeight   float64 `json:"gross_weight" binding:"required"`
	TareWeight    float64 `json:"tare_weight"`
	GodownID      *uint   `json:"godown_id"`
	Notes         string  `json:"notes"`
}

// CreateGateEntry handles POST /api/gate-entries.
func (h *Handler) CreateGateEntry(c *gin.Context) {
	var req createGateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.GrossWeight <= req.TareWeight {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "gross_weight must exceed tare_weight"})
		return
	}

	var count int64
	h.store.DB().Model(&model.Supplier{}).Where("id = ?", req.SupplierID).Count(&count)
	if count == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "supplier not found"})
		return
	}

	entry := model.GateEntry{
		VehicleNumber: req.VehicleNumber,
		SupplierID:    req.SupplierID,
		GrossWeight:   req.GrossWeight,
		TareWeight:    req.TareWeight,
		GodownID:      req.GodownID,
		Status:        model.GateEntryPending,
		Notes:         req.Notes,
		EnteredAt:     time.Now().UTC(),
		BranchID:      mw.BranchID(c),
	}
	if err := h.store.DB().Create(&entry).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, newGateEntryResponse(&entry))
}

// ListGateEntries handles GET /api/gate-entries?status=, newest first.
func (h *Handler) ListGateEntries(c *gin.Context) {
	q := branchScoped(c, h.store.DB()).Preload("Supplier").Order("entered_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var entries []model.GateEntry
	if err := q.Find(&entries).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve gate entries"})
		return
	}

	out := make([]gateEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, newGateEntryResponse(&entries[i]))
	}
	c.JSON(http.StatusOK, out)
}

// UnloadGateEntry handles POST /api/gate-entries/:id/unload: books the net
// weight into the entry's godown and closes the entry.
func (h *Handler) UnloadGateEntry(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid gate entry ID"})
		return
	}

	entry, err := h.store.UnloadGateEntry(c.Request.Context(), id, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGateEntryResponse(entry))
}

type createSupplierRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CreateSupplier handles POST /api/suppliers.
func (h *Handler) CreateSupplier(c *gin.Context) {
	var req createSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	supplier := model.Supplier{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		BranchID: mw.BranchID(c),
	}
	if err := h.store.DB().Create(&supplier).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// ListSuppliers handles GET /api/suppliers.
func (h *Handler) ListSuppliers(c *gin.Context) {
	var suppliers []model.Supplier
	if err := branchScoped(c, h.store.DB()).Order("name ASC").Find(&suppliers).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve suppliers"})
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

// lookupExists reports whether a row with the given id exists for the model.
func lookupExists(db *gorm.DB, m any, id uint) bool {
	var count int64
	db.Model(m).Where("id = ?", id).Count(&count)
	return count > 0
}

type createLabTestRequest struct {
	GateEntryID uint    `json:"gate_entry_id" binding:"required"`
	Moisture    float64 `json:"moisture"`
	Gluten      float64 `json:"gluten"`
	TestWeight  float64 `json:"test_weight"`
	Notes       string  `json:"notes"`
}

// CreateLabTest handles POST /api/lab-tests.
func (h *Handler) CreateLabTest(c *gin.Context) {
	var req createLabTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !lookupExists(h.store.DB(), &model.GateEntry{}, req.GateEntryID) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "gate entry not found"})
		return
	}

	test := model.LabTest{
		GateEntryID: req.GateEntryID,
		Moisture:    req.Moisture,
		Gluten:      req.Gluten,
		TestWeight:  req.TestWeight,
		Notes:       req.Notes,
		TestedAt:    time.Now().UTC(),
	}
	if err := h.store.DB().Create(&test).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, test)
}

// ListLabTests handles GET /api/lab-tests?gate_entry_id=.
func (h *Handler) ListLabTests(c *gin.Context) {
	q := h.store.DB().Order("tested_at DESC")
	if raw := c.Query("gate_entry_id"); raw != "" {
		q = q.Where("gate_entry_id = ?", raw)
	}

	var tests []model.LabTest
	if err := q.Find(&tests).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lab tests"})
		return
	}
	c.JSON(http.StatusOK, tests)
}

type createClaimRequest struct {
	SupplierID  uint    `json:"supplier_id" binding:"required"`
	GateEntryID *uint   `json:"gate_entry_id"`
	Amount      float64 `json:"amount" binding:"required"`
	Reason      string  `json:"reason" binding:"required"`
}

// CreateClaim handles POST /api/claims.
func (h *Handler) CreateClaim(c *gin.Context) {
	var req createClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !lookupExists(h.store.DB(), &model.Supplier{}, req.SupplierID) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "supplier not found"})
		return
	}

	claim := model.Claim{
		SupplierID:  req.SupplierID,
		GateEntryID: req.GateEntryID,
		Amount:      req.Amount,
		Reason:      req.Reason,
		Status:      model.ClaimOpen,
		BranchID:    mw.BranchID(c),
	}
	if err := h.store.DB().Create(&claim).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, claim)
}

// ListClaims handles GET /api/claims?status=.
func (h *Handler) ListClaims(c *gin.Context) {
	q := branchScoped(c, h.store.DB()).Preload("Supplier").Order("id DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var claims []model.Claim
	if err := q.Find(&claims).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve claims"})
		return
	}
	c.JSON(http.StatusOK, claims)
}

// SettleClaim handles POST /api/claims/:id/settle.
func (h *Handler) SettleClaim(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid claim ID"})
		return
	}

	var claim model.Claim
	if err := h.store.DB().First(&claim, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "claim not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	if claim.Status != model.ClaimOpen {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "claim is already settled"})
		return
	}

	if err := h.store.DB().Model(&claim).Update("status", model.ClaimSettled).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, claim)
}
