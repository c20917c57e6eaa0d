package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"millops-backend/internal/mw"
	"millops-backend/internal/store"
)

type startSessionRequest struct {
	SourceGodownID        uint     `json:"source_godown_id" binding:"required"`
	DestinationBinID      uint     `json:"destination_bin_id" binding:"required"`
	MagnetID              *uint    `json:"magnet_id"`
	CleaningIntervalHours *float64 `json:"cleaning_interval_hours"`
	Notes                 string   `json:"notes"`
}

// StartSession handles POST /api/transfer-sessions/start.
func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := store.StartSessionInput{
		SourceGodownID:   req.SourceGodownID,
		DestinationBinID: req.DestinationBinID,
		MagnetID:         req.MagnetID,
		Notes:            req.Notes,
		BranchID:         mw.BranchID(c),
	}
	// Hours on the wire, seconds in storage.
	if req.CleaningIntervalHours != nil {
		in.IntervalSecs = int64(*req.CleaningIntervalHours * 3600)
	}

	session, err := h.store.StartSession(c.Request.Context(), in, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(session))
}

type divertSessionRequest struct {
	NewBinID            uint     `json:"new_bin_id" binding:"required"`
	QuantityTransferred *float64 `json:"quantity_transferred" binding:"required"`
}

// DivertSession handles POST /api/transfer-sessions/:id/divert.
func (h *Handler) DivertSession(c *gin.Context) {
	sessionID, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	var req divertSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.QuantityTransferred < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "quantity_transferred must not be negative"})
		return
	}

	session, err := h.store.DivertSession(c.Request.Context(), sessionID, req.NewBinID, *req.QuantityTransferred, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session))
}

// StopSession handles POST /api/transfer-sessions/:id/stop?transferred_quantity=<float>.
// The quantity is the session total across all bins.
func (h *Handler) StopSession(c *gin.Context) {
	sessionID, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	// ParseFloat accepts "NaN" and "Inf"; neither may reach the stock totals.
	qty, err := strconv.ParseFloat(c.Query("transferred_quantity"), 64)
	if err != nil || qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "transferred_quantity must be a non-negative number"})
		return
	}

	session, err := h.store.StopSession(c.Request.Context(), sessionID, qty, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session))
}

// CancelSession handles POST /api/transfer-sessions/:id/cancel.
func (h *Handler) CancelSession(c *gin.Context) {
	sessionID, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	session, err := h.store.CancelSession(c.Request.Context(), sessionID, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session))
}

// GetSession handles GET /api/transfer-sessions/:id.
func (h *Handler) GetSession(c *gin.Context) {
	sessionID, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	session, err := h.store.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session))
}

// ListSessions handles GET /api/transfer-sessions?status=, newest first.
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.store.ListSessions(c.Request.Context(), c.Query("status"), mw.BranchID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, newSessionResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, out)
}

// SessionMagnetStatus handles GET /api/transfer-sessions/:id/magnet-status.
// It evaluates the overdue predicate on demand; external pollers are
// expected to hit it repeatedly.
func (h *Handler) SessionMagnetStatus(c *gin.Context) {
	sessionID, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	statuses, err := h.store.SessionMagnetStatus(c.Request.Context(), sessionID, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMagnetStatusResponses(statuses))
}

func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(id), err
}
