package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupTransferRouter() *gin.Engine {
	r := gin.Default()
	handler := NewHandler(nil, nil, "", 10)
	r.POST("/api/transfer-sessions/start", handler.StartSession)
	r.POST("/api/transfer-sessions/:id/divert", handler.DivertSession)
	r.POST("/api/transfer-sessions/:id/stop", handler.StopSession)
	return r
}

func TestStartSessionRejectsMissingFields(t *testing.T) {
	router := setupTransferRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/transfer-sessions/start",
		strings.NewReader(`{"source_godown_id": 1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDivertSessionRejectsBadID(t *testing.T) {
	router := setupTransferRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/transfer-sessions/abc/divert",
		strings.NewReader(`{"new_bin_id": 2, "quantity_transferred": 10}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid session ID"}`, w.Body.String())
}

func TestDivertSessionRejectsNegativeQuantity(t *testing.T) {
	router := setupTransferRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/transfer-sessions/1/divert",
		strings.NewReader(`{"new_bin_id": 2, "quantity_transferred": -5}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"quantity_transferred must not be negative"}`, w.Body.String())
}

func TestStopSessionRejectsNonFiniteQuantity(t *testing.T) {
	router := setupTransferRouter()

	// ParseFloat happily parses these; the handler must not.
	for _, raw := range []string{"NaN", "Inf", "+Inf", "-Inf"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/transfer-sessions/1/stop?transferred_quantity="+raw, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "quantity %q", raw)
		assert.JSONEq(t, `{"error":"transferred_quantity must be a non-negative number"}`, w.Body.String())
	}
}

func TestStopSessionRequiresQuantity(t *testing.T) {
	router := setupTransferRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/transfer-sessions/1/stop", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"transferred_quantity must be a non-negative number"}`, w.Body.String())
}
