package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"millops-backend/config"
	"millops-backend/internal/api"
	"millops-backend/internal/db"
	"millops-backend/internal/store"
)

// setupServer boots the full HTTP stack over an in-memory database.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(db.Models()...))

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 10000
	cfg.Uploads.Dir = t.TempDir()

	return api.NewRouter(cfg, store.NewGormStore(testDB), nil)
}

// doJSON performs a request with an optional JSON body and decodes the
// response into a generic map.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func idOf(t *testing.T, resp map[string]any) uint {
	t.Helper()
	raw, ok := resp["id"].(float64)
	require.True(t, ok, "response has no numeric id: %v", resp)
	return uint(raw)
}

// TestTransferSessionLifecycle drives a full transfer over HTTP: start
// against a godown and bin, divert mid-way, post a cleaning record, and stop.
// Stock totals are verified after every movement.
func TestTransferSessionLifecycle(t *testing.T) {
	router := setupServer(t)

	code, godown := doJSON(t, router, http.MethodPost, "/api/godowns",
		gin.H{"name": "Raw Wheat Godown", "type": "RAW", "current_storage": 1000.0})
	require.Equal(t, http.StatusCreated, code)
	godownID := idOf(t, godown)

	code, bin1 := doJSON(t, router, http.MethodPost, "/api/bins",
		gin.H{"bin_number": "B-01", "capacity": 500.0})
	require.Equal(t, http.StatusCreated, code)
	bin1ID := idOf(t, bin1)

	code, bin2 := doJSON(t, router, http.MethodPost, "/api/bins",
		gin.H{"bin_number": "B-02", "capacity": 500.0})
	require.Equal(t, http.StatusCreated, code)
	bin2ID := idOf(t, bin2)

	code, magnet := doJSON(t, router, http.MethodPost, "/api/magnets",
		gin.H{"name": "Intake Magnet"})
	require.Equal(t, http.StatusCreated, code)
	magnetID := idOf(t, magnet)

	// Start: one hour cleaning interval on the fallback magnet.
	code, session := doJSON(t, router, http.MethodPost, "/api/transfer-sessions/start", gin.H{
		"source_godown_id":        godownID,
		"destination_bin_id":      bin1ID,
		"magnet_id":               magnetID,
		"cleaning_interval_hours": 1.0,
	})
	require.Equal(t, http.StatusCreated, code)
	sessionID := idOf(t, session)
	assert.Equal(t, "active", session["status"])

	magnets, ok := session["magnets"].([]any)
	require.True(t, ok)
	require.Len(t, magnets, 1)
	assert.Equal(t, 1.0, magnets[0].(map[string]any)["interval_hours"])

	// Freshly started: nothing is overdue yet.
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/transfer-sessions/%d/magnet-status", sessionID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var statuses []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statuses))
	require.Len(t, statuses, 1)
	assert.Equal(t, false, statuses[0]["overdue"])

	// Divert 200t to the second bin.
	code, session = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/transfer-sessions/%d/divert", sessionID),
		gin.H{"new_bin_id": bin2ID, "quantity_transferred": 200.0})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(bin2ID), session["current_bin"].(map[string]any)["id"])

	code, godown = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/godowns/%d", godownID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 800.0, *jsonFloat(godown["current_storage"]))

	// Log a cleaning for the magnet mid-session.
	var form bytes.Buffer
	mp := multipart.NewWriter(&form)
	require.NoError(t, mp.WriteField("magnet_id", fmt.Sprint(magnetID)))
	require.NoError(t, mp.WriteField("transfer_session_id", fmt.Sprint(sessionID)))
	require.NoError(t, mp.WriteField("notes", "mid-transfer wipe down"))
	require.NoError(t, mp.Close())
	cleanReq := httptest.NewRequest(http.MethodPost, "/api/magnet-cleaning-records", &form)
	cleanReq.Header.Set("Content-Type", mp.FormDataContentType())
	cw := httptest.NewRecorder()
	router.ServeHTTP(cw, cleanReq)
	require.Equal(t, http.StatusCreated, cw.Code, cw.Body.String())

	// Stop with a session total of 300t: the 100t remainder lands in the
	// current bin.
	code, session = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/transfer-sessions/%d/stop?transferred_quantity=300", sessionID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", session["status"])
	assert.NotNil(t, session["stopped_at"])
	assert.Equal(t, 300.0, *jsonFloat(session["transferred_quantity"]))

	spans, ok := session["bin_transfers"].([]any)
	require.True(t, ok)
	require.Len(t, spans, 2)
	assert.Equal(t, 200.0, *jsonFloat(spans[0].(map[string]any)["quantity"]))
	assert.Equal(t, 100.0, *jsonFloat(spans[1].(map[string]any)["quantity"]))

	code, godown = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/godowns/%d", godownID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 700.0, *jsonFloat(godown["current_storage"]))

	// A completed session rejects further lifecycle calls.
	code, _ = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/transfer-sessions/%d/stop?transferred_quantity=1", sessionID), nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

// TestOrderDispatchReconciliation drives an order from PENDING through
// PARTIAL to DELIVERED and verifies over-dispatch is rejected.
func TestOrderDispatchReconciliation(t *testing.T) {
	router := setupServer(t)

	code, customer := doJSON(t, router, http.MethodPost, "/api/customers",
		gin.H{"name": "Shree Traders", "phone": "9000000001"})
	require.Equal(t, http.StatusCreated, code)
	customerID := idOf(t, customer)

	code, order := doJSON(t, router, http.MethodPost, "/api/orders", gin.H{
		"order_number": "ORD-1001",
		"customer_id":  customerID,
		"items": []gin.H{
			{"product_name": "Maida", "quantity_ton": 10.0},
		},
	})
	require.Equal(t, http.StatusCreated, code)
	orderID := idOf(t, order)
	assert.Equal(t, "PENDING", order["status"])

	items, ok := order["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	itemID := uint(items[0].(map[string]any)["id"].(float64))

	// First dispatch: 4 of 10 tons.
	code, _ = doJSON(t, router, http.MethodPost, "/api/dispatches", gin.H{
		"order_id":       orderID,
		"vehicle_number": "MH12AB1234",
		"items": []gin.H{
			{"order_item_id": itemID, "dispatched_qty_ton": 4.0},
		},
	})
	require.Equal(t, http.StatusCreated, code)

	code, summary := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/orders/%d/summary", orderID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "PARTIAL", summary["status"])

	// Second dispatch completes the order.
	code, _ = doJSON(t, router, http.MethodPost, "/api/dispatches", gin.H{
		"order_id": orderID,
		"items": []gin.H{
			{"order_item_id": itemID, "dispatched_qty_ton": 6.0},
		},
	})
	require.Equal(t, http.StatusCreated, code)

	code, summary = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/orders/%d/summary", orderID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "DELIVERED", summary["status"])

	// Nothing remains; further dispatch is rejected outright.
	code, resp := doJSON(t, router, http.MethodPost, "/api/dispatches", gin.H{
		"order_id": orderID,
		"items": []gin.H{
			{"order_item_id": itemID, "dispatched_qty_ton": 0.5},
		},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, fmt.Sprint(resp["error"]), "exceed")
}

// TestGateEntryUnloadFlow books a gate entry's net weight into a godown.
func TestGateEntryUnloadFlow(t *testing.T) {
	router := setupServer(t)

	code, godown := doJSON(t, router, http.MethodPost, "/api/godowns",
		gin.H{"name": "Intake Godown", "current_storage": 100.0})
	require.Equal(t, http.StatusCreated, code)
	godownID := idOf(t, godown)

	code, supplier := doJSON(t, router, http.MethodPost, "/api/suppliers",
		gin.H{"name": "Agro Mills Pvt Ltd"})
	require.Equal(t, http.StatusCreated, code)
	supplierID := idOf(t, supplier)

	code, entry := doJSON(t, router, http.MethodPost, "/api/gate-entries", gin.H{
		"vehicle_number": "MH14XY9876",
		"supplier_id":    supplierID,
		"gross_weight":   25000.0,
		"tare_weight":    10000.0,
		"godown_id":      godownID,
	})
	require.Equal(t, http.StatusCreated, code)
	entryID := idOf(t, entry)
	assert.Equal(t, 15000.0, *jsonFloat(entry["net_weight"]))

	code, entry = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/gate-entries/%d/unload", entryID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "unloaded", entry["status"])

	// 15,000 kg lands as 15 tons on top of the opening 100.
	code, godown = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/godowns/%d", godownID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 115.0, *jsonFloat(godown["current_storage"]))

	// Unloading twice is rejected.
	code, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/gate-entries/%d/unload", entryID), nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

// TestProductionOrderBlendValidation checks that a production order is only
// accepted when its blend percentages total 100.
func TestProductionOrderBlendValidation(t *testing.T) {
	router := setupServer(t)

	code, g1 := doJSON(t, router, http.MethodPost, "/api/godowns",
		gin.H{"name": "MP Sharbati Godown", "current_storage": 500.0})
	require.Equal(t, http.StatusCreated, code)
	code, g2 := doJSON(t, router, http.MethodPost, "/api/godowns",
		gin.H{"name": "Lokwan Godown", "current_storage": 500.0})
	require.Equal(t, http.StatusCreated, code)

	// 60 + 30 leaves 10% of the blend unaccounted for.
	code, resp := doJSON(t, router, http.MethodPost, "/api/production-orders", gin.H{
		"code":        "PO-2001",
		"target_tons": 50.0,
		"items": []gin.H{
			{"godown_id": idOf(t, g1), "percentage": 60.0},
			{"godown_id": idOf(t, g2), "percentage": 30.0},
		},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "blend percentages must sum to 100", resp["error"])

	code, order := doJSON(t, router, http.MethodPost, "/api/production-orders", gin.H{
		"code":        "PO-2001",
		"target_tons": 50.0,
		"items": []gin.H{
			{"godown_id": idOf(t, g1), "percentage": 60.0},
			{"godown_id": idOf(t, g2), "percentage": 40.0},
		},
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "planned", order["status"])
}

// TestOrderStatusManualOverride verifies that only the DISPATCHED status can
// be set by hand; the rest stay derived from the dispatch ledger.
func TestOrderStatusManualOverride(t *testing.T) {
	router := setupServer(t)

	code, customer := doJSON(t, router, http.MethodPost, "/api/customers",
		gin.H{"name": "Patil Agencies", "phone": "9000000002"})
	require.Equal(t, http.StatusCreated, code)

	code, order := doJSON(t, router, http.MethodPost, "/api/orders", gin.H{
		"order_number": "ORD-1002",
		"customer_id":  idOf(t, customer),
		"items": []gin.H{
			{"product_name": "Atta", "quantity_ton": 5.0},
		},
	})
	require.Equal(t, http.StatusCreated, code)
	orderID := idOf(t, order)

	for _, status := range []string{"DELIVERED", "PARTIAL", "PENDING", "CLOSED"} {
		code, resp := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/orders/%d/status", orderID), gin.H{"status": status})
		assert.Equal(t, http.StatusBadRequest, code, status)
		assert.Equal(t, "only the DISPATCHED status can be set manually", resp["error"])
	}

	code, order = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/orders/%d/status", orderID), gin.H{"status": "DISPATCHED"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "DISPATCHED", order["status"])
}

func jsonFloat(v any) *float64 {
	if v == nil {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}
