package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateCleaningRecordRejectsOversizedPhoto caps photo uploads at the
// configured size before anything touches disk or the database.
func TestCreateCleaningRecordRejectsOversizedPhoto(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(nil, nil, t.TempDir(), 1)
	r.POST("/api/magnet-cleaning-records", handler.CreateCleaningRecord)

	var form bytes.Buffer
	mp := multipart.NewWriter(&form)
	require.NoError(t, mp.WriteField("magnet_id", "1"))
	part, err := mp.CreateFormFile("before_photo", "intake-magnet.jpg")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0xff}, 1<<20+1))
	require.NoError(t, err)
	require.NoError(t, mp.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/magnet-cleaning-records", &form)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds the 1 MB upload limit")
}
