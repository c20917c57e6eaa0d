package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"millops-backend/internal/store"
)

// respondError maps the store's error taxonomy onto HTTP statuses:
// NotFound → 404, Validation and Conflict → 400, everything else → 500 with
// the underlying message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrValidation), errors.Is(err, store.ErrConflict):
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
