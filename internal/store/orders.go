package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"millops-backend/internal/model"
	"millops-backend/internal/quantity"
)

// OrderSummary is the reconciled fulfilment view of an order.
type OrderSummary struct {
	OrderID       uint               `json:"order_id"`
	OrderNumber   string             `json:"order_number"`
	Status        model.OrderStatus  `json:"status"`
	OrderedTons   float64            `json:"ordered_tons"`
	DispatchedTon float64            `json:"dispatched_tons"`
	RemainingTons float64            `json:"remaining_tons"`
	Items         []OrderItemSummary `json:"items"`
}

// OrderItemSummary is the per-line reconciliation.
type OrderItemSummary struct {
	OrderItemID   uint    `json:"order_item_id"`
	ProductName   string  `json:"product_name"`
	OrderedTons   float64 `json:"ordered_tons"`
	DispatchedTon float64 `json:"dispatched_tons"`
	RemainingTons float64 `json:"remaining_tons"`
}

// CreateDispatch validates and books one dispatch against an order, then
// re-derives the order's status inside the same transaction. Any item
// failing validation rolls back the whole dispatch.
func (s *gormStore) CreateDispatch(ctx context.Context, in DispatchInput, now time.Time) (*model.Dispatch, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("dispatch has no items: %w", ErrValidation)
	}

	var dispatch model.Dispatch

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.Preload("Items").Preload("Items.BagSize").First(&order, in.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d: %w", in.OrderID, ErrNotFound)
			}
			return err
		}

		itemsByID := make(map[uint]*model.OrderItem, len(order.Items))
		for i := range order.Items {
			itemsByID[order.Items[i].ID] = &order.Items[i]
		}

		dispatch = model.Dispatch{
			OrderID:       order.ID,
			VehicleNumber: in.VehicleNumber,
			DispatchedAt:  now,
			Notes:         in.Notes,
		}
		if err := tx.Create(&dispatch).Error; err != nil {
			return fmt.Errorf("failed to create dispatch: %w", err)
		}

		for _, itemIn := range in.Items {
			orderItem, ok := itemsByID[itemIn.OrderItemID]
			if !ok {
				return fmt.Errorf("order item %d does not belong to order %d: %w", itemIn.OrderItemID, order.ID, ErrNotFound)
			}
			if itemIn.DispatchedQtyTon <= 0 {
				return fmt.Errorf("order item %d: dispatched quantity must be positive: %w", itemIn.OrderItemID, ErrValidation)
			}

			ordered := quantity.OrderedTons(orderItem)
			dispatched, err := dispatchedTons(tx, orderItem.ID)
			if err != nil {
				return err
			}
			if quantity.ExceedsRemaining(ordered, dispatched, itemIn.DispatchedQtyTon) {
				return fmt.Errorf("order item %d: dispatch of %.4f t exceeds remaining %.4f t: %w",
					orderItem.ID, itemIn.DispatchedQtyTon, quantity.Remaining(ordered, dispatched), ErrValidation)
			}

			if itemIn.NumberOfBags != nil {
				weightKg := 0.0
				if orderItem.BagSize != nil {
					weightKg = orderItem.BagSize.WeightKg
				} else if orderItem.BagSizeWeightKg != nil {
					weightKg = *orderItem.BagSizeWeightKg
				}
				if !quantity.BagsConsistent(itemIn.DispatchedQtyTon, *itemIn.NumberOfBags, weightKg) {
					return fmt.Errorf("order item %d: bag count disagrees with tonnage by more than %.0f kg: %w",
						orderItem.ID, quantity.BagToleranceKg, ErrValidation)
				}
			}

			di := model.DispatchItem{
				DispatchID:       dispatch.ID,
				OrderItemID:      orderItem.ID,
				DispatchedQtyTon: itemIn.DispatchedQtyTon,
				NumberOfBags:     itemIn.NumberOfBags,
			}
			if err := tx.Create(&di).Error; err != nil {
				return fmt.Errorf("failed to create dispatch item: %w", err)
			}
		}

		return recomputeOrderStatus(tx, &order)
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("Items").First(&dispatch, dispatch.ID).Error; err != nil {
		return nil, err
	}
	return &dispatch, nil
}

// OrderSummary reconciles ordered against dispatched quantities per item and
// for the order as a whole.
func (s *gormStore) OrderSummary(ctx context.Context, orderID uint) (*OrderSummary, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("Items").Preload("Items.BagSize").First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return nil, err
	}

	summary := OrderSummary{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
	}

	for i := range order.Items {
		item := &order.Items[i]
		ordered := quantity.OrderedTons(item)
		dispatched, err := dispatchedTons(s.db.WithContext(ctx), item.ID)
		if err != nil {
			return nil, err
		}

		summary.Items = append(summary.Items, OrderItemSummary{
			OrderItemID:   item.ID,
			ProductName:   item.ProductName,
			OrderedTons:   ordered,
			DispatchedTon: dispatched,
			RemainingTons: quantity.Remaining(ordered, dispatched),
		})
		summary.OrderedTons += ordered
		summary.DispatchedTon += dispatched
	}
	summary.RemainingTons = quantity.Remaining(summary.OrderedTons, summary.DispatchedTon)

	return &summary, nil
}

// recomputeOrderStatus derives and persists the order's status from its
// dispatch ledger: PENDING with no dispatches at all, DELIVERED once every
// item is covered within tolerance, PARTIAL in between.
func recomputeOrderStatus(tx *gorm.DB, order *model.Order) error {
	anyDispatch := false
	allFulfilled := true

	for i := range order.Items {
		item := &order.Items[i]
		ordered := quantity.OrderedTons(item)
		dispatched, err := dispatchedTons(tx, item.ID)
		if err != nil {
			return err
		}
		if dispatched > 0 {
			anyDispatch = true
		}
		if !quantity.Fulfilled(ordered, dispatched) {
			allFulfilled = false
		}
	}

	status := model.OrderPending
	switch {
	case anyDispatch && allFulfilled:
		status = model.OrderDelivered
	case anyDispatch:
		status = model.OrderPartial
	}

	if status == order.Status {
		return nil
	}
	order.Status = status
	if err := tx.Model(&model.Order{}).Where("id = ?", order.ID).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update order %d status: %w", order.ID, err)
	}
	return nil
}

// dispatchedTons sums the dispatched quantity across all dispatch items for
// one order item.
func dispatchedTons(tx *gorm.DB, orderItemID uint) (float64, error) {
	var total float64
	err := tx.Model(&model.DispatchItem{}).
		Where("order_item_id = ?", orderItemID).
		Select("COALESCE(SUM(dispatched_qty_ton), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum dispatched quantity for item %d: %w", orderItemID, err)
	}
	return total, nil
}
