package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"millops-backend/internal/model"
)

// CleaningHistoryReport handles GET /api/reports/cleaning-history with
// optional magnet_id, from and to (RFC3339) filters.
func (h *Handler) CleaningHistoryReport(c *gin.Context) {
	q := h.store.DB().Preload("Magnet").Order("cleaned_at DESC")

	if raw := c.Query("magnet_id"); raw != "" {
		q = q.Where("magnet_id = ?", raw)
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp format. Use RFC3339."})
			return
		}
		q = q.Where("cleaned_at >= ?", from.UTC())
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp format. Use RFC3339."})
			return
		}
		q = q.Where("cleaned_at <= ?", to.UTC())
	}

	var records []model.MagnetCleaningRecord
	if err := q.Find(&records).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to build cleaning history"})
		return
	}

	out := make([]cleaningRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, newCleaningRecordResponse(&records[i]))
	}
	c.JSON(http.StatusOK, out)
}

// TransferDetailsReport handles GET /api/reports/transfer-details with
// optional status, godown_id and bin_id filters. Sessions come back newest
// first with their full span history.
func (h *Handler) TransferDetailsReport(c *gin.Context) {
	q := h.store.DB().
		Preload("SourceGodown").
		Preload("DestinationBin").
		Preload("CurrentBin").
		Preload("Magnets").
		Preload("Magnets.Magnet").
		Preload("BinTransfers").
		Preload("BinTransfers.Bin").
		Order("started_at DESC")

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if raw := c.Query("godown_id"); raw != "" {
		q = q.Where("source_godown_id = ?", raw)
	}
	if raw := c.Query("bin_id"); raw != "" {
		q = q.Where("destination_bin_id = ? OR current_bin_id = ?", raw, raw)
	}

	var sessions []model.TransferSession
	if err := q.Find(&sessions).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to build transfer details"})
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, newSessionResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, out)
}

// OverdueMagnetsReport handles GET /api/reports/overdue-magnets: every
// magnet of every active session that is currently past its cleaning
// window.
func (h *Handler) OverdueMagnetsReport(c *gin.Context) {
	statuses, err := h.store.ActiveOverdueMagnets(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMagnetStatusResponses(statuses))
}
