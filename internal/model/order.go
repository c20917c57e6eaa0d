package model

import "time"

// OrderStatus is the derived fulfilment state of a customer order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderPartial    OrderStatus = "PARTIAL"
	OrderDispatched OrderStatus = "DISPATCHED"
	OrderDelivered  OrderStatus = "DELIVERED"
)

// Customer is a buyer of finished product.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null;index" json:"name"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Address   string    `gorm:"size:512" json:"address"`
	BranchID  *uint     `gorm:"index" json:"branch_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// BagSize is a named bag weight (e.g. "50kg PP") referenced by order items.
type BagSize struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Label    string  `gorm:"uniqueIndex;size:64;not null" json:"label"`
	WeightKg float64 `gorm:"not null" json:"weight_kg"`
}

// Order is a customer order. Status is derived from dispatched quantities,
// never written directly by clients.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;size:64;not null" json:"order_number"`
	CustomerID  uint        `gorm:"index;not null" json:"customer_id"`
	Status      OrderStatus `gorm:"size:16;not null;default:'PENDING'" json:"status"`
	Notes       string      `gorm:"size:512" json:"notes"`
	BranchID    *uint       `gorm:"index" json:"branch_id"`
	CreatedAt   time.Time   `json:"-"`
	UpdatedAt   time.Time   `json:"-"`

	Customer *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one order line. Quantity is specified either directly in tons
// (QuantityTon) or as NumberOfBags times a bag weight, taken from the
// referenced BagSize or the ad-hoc BagSizeWeightKg.
type OrderItem struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	OrderID         uint     `gorm:"index;not null" json:"order_id"`
	ProductName     string   `gorm:"size:128;not null" json:"product_name"`
	QuantityTon     *float64 `json:"quantity_ton"`
	NumberOfBags    *int     `json:"number_of_bags"`
	BagSizeID       *uint    `json:"bag_size_id"`
	BagSizeWeightKg *float64 `json:"bag_size_weight"`

	BagSize *BagSize `gorm:"foreignKey:BagSizeID" json:"bag_size,omitempty"`
}

// Dispatch is one outbound vehicle load against an order.
type Dispatch struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       uint      `gorm:"index;not null" json:"order_id"`
	VehicleNumber string    `gorm:"size:32" json:"vehicle_number"`
	DispatchedAt  time.Time `gorm:"not null;index" json:"-"`
	Notes         string    `gorm:"size:512" json:"notes"`
	CreatedAt     time.Time `json:"-"`

	Items []DispatchItem `gorm:"foreignKey:DispatchID;constraint:OnDelete:CASCADE" json:"items"`
}

// DispatchItem records how much of one order item left on a dispatch.
type DispatchItem struct {
	ID               uint     `gorm:"primaryKey" json:"id"`
	DispatchID       uint     `gorm:"index;not null" json:"dispatch_id"`
	OrderItemID      uint     `gorm:"index;not null" json:"order_item_id"`
	DispatchedQtyTon float64  `gorm:"not null" json:"dispatched_qty_ton"`
	NumberOfBags     *int     `json:"number_of_bags"`
}
