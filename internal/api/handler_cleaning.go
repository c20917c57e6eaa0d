package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"millops-backend/internal/model"
	"millops-backend/internal/store"
)

// cleaningRecordResponse renders one cleaning log entry.
type cleaningRecordResponse struct {
	ID                uint    `json:"id"`
	MagnetID          uint    `json:"magnet_id"`
	MagnetName        string  `json:"magnet_name,omitempty"`
	TransferSessionID *uint   `json:"transfer_session_id"`
	CleanedAt         istTime `json:"cleaning_timestamp"`
	BeforePhoto       string  `json:"before_photo,omitempty"`
	AfterPhoto        string  `json:"after_photo,omitempty"`
	Notes             string  `json:"notes,omitempty"`
}

func newCleaningRecordResponse(rec *model.MagnetCleaningRecord) cleaningRecordResponse {
	resp := cleaningRecordResponse{
		ID:                rec.ID,
		MagnetID:          rec.MagnetID,
		TransferSessionID: rec.TransferSessionID,
		CleanedAt:         istTime(rec.CleanedAt),
		BeforePhoto:       rec.BeforePhoto,
		AfterPhoto:        rec.AfterPhoto,
		Notes:             rec.Notes,
	}
	if rec.Magnet != nil {
		resp.MagnetName = rec.Magnet.Name
	}
	return resp
}

// CreateCleaningRecord handles POST /api/magnet-cleaning-records as a
// multipart form: magnet_id, optional transfer_session_id, optional
// cleaning_timestamp, optional before/after photos.
func (h *Handler) CreateCleaningRecord(c *gin.Context) {
	magnetID, err := strconv.ParseUint(c.PostForm("magnet_id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "magnet_id is required"})
		return
	}

	rec := model.MagnetCleaningRecord{
		MagnetID:  uint(magnetID),
		CleanedAt: time.Now().UTC(),
		Notes:     c.PostForm("notes"),
	}

	if raw := c.PostForm("transfer_session_id"); raw != "" {
		sessionID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid transfer_session_id"})
			return
		}
		id := uint(sessionID)
		rec.TransferSessionID = &id
	}

	if raw := c.PostForm("cleaning_timestamp"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid cleaning_timestamp. Use RFC3339."})
			return
		}
		rec.CleanedAt = ts.UTC()
	}

	if file, err := c.FormFile("before_photo"); err == nil {
		name, err := h.savePhoto(c, file)
		if err != nil {
			respondError(c, err)
			return
		}
		rec.BeforePhoto = name
	}
	if file, err := c.FormFile("after_photo"); err == nil {
		name, err := h.savePhoto(c, file)
		if err != nil {
			respondError(c, err)
			return
		}
		rec.AfterPhoto = name
	}

	if err := h.store.CreateCleaningRecord(c.Request.Context(), &rec); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCleaningRecordResponse(&rec))
}

// savePhoto stores an uploaded photo under a UUID filename, keeping the
// original extension. Files over the configured size limit are rejected.
func (h *Handler) savePhoto(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return "", fmt.Errorf("photo %q exceeds the %d MB upload limit: %w",
			file.Filename, h.maxUploadBytes>>20, store.ErrValidation)
	}
	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(h.uploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}
	return name, nil
}

// ListCleaningRecords handles GET /api/magnet-cleaning-records?magnet_id=.
func (h *Handler) ListCleaningRecords(c *gin.Context) {
	q := h.store.DB().Preload("Magnet").Order("cleaned_at DESC")
	if raw := c.Query("magnet_id"); raw != "" {
		q = q.Where("magnet_id = ?", raw)
	}

	var records []model.MagnetCleaningRecord
	if err := q.Find(&records).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cleaning records"})
		return
	}

	out := make([]cleaningRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, newCleaningRecordResponse(&records[i]))
	}
	c.JSON(http.StatusOK, out)
}

type updateCleaningRecordRequest struct {
	CleaningTimestamp *string `json:"cleaning_timestamp"`
	Notes             *string `json:"notes"`
}

// UpdateCleaningRecord handles PUT /api/magnet-cleaning-records/:id. The log
// is append-only except through this explicit edit endpoint.
func (h *Handler) UpdateCleaningRecord(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	var req updateCleaningRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rec model.MagnetCleaningRecord
	if err := h.store.DB().First(&rec, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "cleaning record not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	updates := map[string]any{}
	if req.CleaningTimestamp != nil {
		ts, err := time.Parse(time.RFC3339, *req.CleaningTimestamp)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid cleaning_timestamp. Use RFC3339."})
			return
		}
		updates["cleaned_at"] = ts.UTC()
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := h.store.DB().Model(&rec).Updates(updates).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, newCleaningRecordResponse(&rec))
}

// DeleteCleaningRecord handles DELETE /api/magnet-cleaning-records/:id.
func (h *Handler) DeleteCleaningRecord(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	res := h.store.DB().Delete(&model.MagnetCleaningRecord{}, id)
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "cleaning record not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
