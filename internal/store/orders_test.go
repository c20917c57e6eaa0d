package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millops-backend/internal/model"
)

func seedOrder(t *testing.T, s Store, items ...model.OrderItem) model.Order {
	t.Helper()
	db := s.DB()

	customer := model.Customer{Name: "Sharma Traders"}
	require.NoError(t, db.Create(&customer).Error)

	order := model.Order{
		OrderNumber: "ORD-" + t.Name(),
		CustomerID:  customer.ID,
		Status:      model.OrderPending,
		Items:       items,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestCreateDispatch_StatusProgression(t *testing.T) {
	s := NewGormStore(openTestDB(t))
	ctx := context.Background()
	qty := 10.0
	order := seedOrder(t, s, model.OrderItem{ProductName: "Maida", QuantityTon: &qty})
	itemID := order.Items[0].ID

	summary, err := s.OrderSummary(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, summary.Status)
	assert.InDelta(t, 10, summary.RemainingTons, 1e-9)

	_, err = s.CreateDispatch(ctx, DispatchInput{
		OrderID:       order.ID,
		VehicleNumber: "MH12AB1234",
		Items:         []DispatchItemInput{{OrderItemID: itemID, DispatchedQtyTon: 4}},
	}, time.Now().UTC())
	require.NoError(t, err)

	summary, err = s.OrderSummary(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPartial, summary.Status)
	assert.InDelta(t, 6, summary.RemainingTons, 1e-9)

	_, err = s.CreateDispatch(ctx, DispatchInput{
		OrderID: order.ID,
		Items:   []DispatchItemInput{{OrderItemID: itemID, DispatchedQtyTon: 6}},
	}, time.Now().UTC())
	require.NoError(t, err)

	summary, err = s.OrderSummary(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderDelivered, summary.Status)
	assert.InDelta(t, 0, summary.RemainingTons, 1e-9)

	// Any further dispatch overshoots the remaining quantity.
	_, err = s.CreateDispatch(ctx, DispatchInput{
		OrderID: order.ID,
		Items:   []DispatchItemInput{{OrderItemID: itemID, DispatchedQtyTon: 0.5}},
	}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateDispatch_BagSpecifiedItem(t *testing.T) {
	s := NewGormStore(openTestDB(t))
	ctx := context.Background()
	db := s.DB()

	bagSize := model.BagSize{Label: "50kg PP", WeightKg: 50}
	require.NoError(t, db.Create(&bagSize).Error)

	bags := 200 // 200 x 50kg = 10 tons ordered
	order := seedOrder(t, s, model.OrderItem{
		ProductName:  "Atta",
		NumberOfBags: &bags,
		BagSizeID:    &bagSize.ID,
	})
	itemID := order.Items[0].ID

	summary, err := s.OrderSummary(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.InDelta(t, 10, summary.Items[0].OrderedTons, 1e-9)

	// Bag count deviating from the tonnage by more than 50kg is rejected.
	badBags := 100 // 5 tons of bags against 6 stated tons
	_, err = s.CreateDispatch(ctx, DispatchInput{
		OrderID: order.ID,
		Items: []DispatchItemInput{
			{OrderItemID: itemID, DispatchedQtyTon: 6, NumberOfBags: &badBags},
		},
	}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrValidation)

	goodBags := 120
	_, err = s.CreateDispatch(ctx, DispatchInput{
		OrderID: order.ID,
		Items: []DispatchItemInput{
			{OrderItemID: itemID, DispatchedQtyTon: 6, NumberOfBags: &goodBags},
		},
	}, time.Now().UTC())
	require.NoError(t, err)

	summary, err = s.OrderSummary(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPartial, summary.Status)
	assert.InDelta(t, 4, summary.RemainingTons, 1e-9)
}

func TestCreateDispatch_RollbackOnBadItem(t *testing.T) {
	s := NewGormStore(openTestDB(t))
	ctx := context.Background()
	qty1, qty2 := 5.0, 5.0
	order := seedOrder(t, s,
		model.OrderItem{ProductName: "Maida", QuantityTon: &qty1},
		model.OrderItem{ProductName: "Suji", QuantityTon: &qty2},
	)

	// Second line references a foreign order item; the whole dispatch,
	// including the valid first line, must roll back.
	_, err := s.CreateDispatch(ctx, DispatchInput{
		OrderID: order.ID,
		Items: []DispatchItemInput{
			{OrderItemID: order.Items[0].ID, DispatchedQtyTon: 2},
			{OrderItemID: 9999, DispatchedQtyTon: 1},
		},
	}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, s.DB().Model(&model.DispatchItem{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	summary, err := s.OrderSummary(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, summary.Status)
}

func TestCreateDispatch_EmptyAndMissingOrder(t *testing.T) {
	s := NewGormStore(openTestDB(t))
	ctx := context.Background()

	_, err := s.CreateDispatch(ctx, DispatchInput{OrderID: 1}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateDispatch(ctx, DispatchInput{
		OrderID: 9999,
		Items:   []DispatchItemInput{{OrderItemID: 1, DispatchedQtyTon: 1}},
	}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnloadGateEntry(t *testing.T) {
	s := NewGormStore(openTestDB(t))
	ctx := context.Background()
	db := s.DB()

	godown := model.Godown{Name: "Raw Godown", CurrentStorage: 10}
	require.NoError(t, db.Create(&godown).Error)
	supplier := model.Supplier{Name: "Agro Suppliers"}
	require.NoError(t, db.Create(&supplier).Error)

	entry := model.GateEntry{
		VehicleNumber: "RJ14GA7001",
		SupplierID:    supplier.ID,
		GrossWeight:   25000,
		TareWeight:    10000,
		GodownID:      &godown.ID,
		Status:        model.GateEntryPending,
		EnteredAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(&entry).Error)

	unloaded, err := s.UnloadGateEntry(ctx, entry.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, model.GateEntryUnloaded, unloaded.Status)
	require.NotNil(t, unloaded.UnloadedAt)

	var g model.Godown
	require.NoError(t, db.First(&g, godown.ID).Error)
	assert.InDelta(t, 25, g.CurrentStorage, 1e-9) // 10 + 15t net

	// Unloading twice is rejected.
	_, err = s.UnloadGateEntry(ctx, entry.ID, time.Now().UTC())
	assert.ErrorIs(t, err, ErrValidation)
}
