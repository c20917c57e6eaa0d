package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"millops-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store          store.Store
	webpush        *webpush.Options
	uploadDir      string
	maxUploadBytes int64
}

// NewHandler creates a new API handler. maxUploadMB caps the size of each
// uploaded photo; zero disables the check.
func NewHandler(s store.Store, webpushOptions *webpush.Options, uploadDir string, maxUploadMB int) *Handler {
	return &Handler{
		store:          s,
		webpush:        webpushOptions,
		uploadDir:      uploadDir,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}
