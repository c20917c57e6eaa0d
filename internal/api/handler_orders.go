package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"millops-backend/internal/model"
	"millops-backend/internal/mw"
)

type createCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CreateCustomer handles POST /api/customers.
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer := model.Customer{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		BranchID: mw.BranchID(c),
	}
	if err := h.store.DB().Create(&customer).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// ListCustomers handles GET /api/customers.
func (h *Handler) ListCustomers(c *gin.Context) {
	var customers []model.Customer
	if err := branchScoped(c, h.store.DB()).Order("name ASC").Find(&customers).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve customers"})
		return
	}
	c.JSON(http.StatusOK, customers)
}

type createBagSizeRequest struct {
	Label    string  `json:"label" binding:"required"`
	WeightKg float64 `json:"weight_kg" binding:"required"`
}

// CreateBagSize handles POST /api/bag-sizes.
func (h *Handler) CreateBagSize(c *gin.Context) {
	var req createBagSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	h.store.DB().Model(&model.BagSize{}).Where("label = ?", req.Label).Count(&count)
	if count > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bag size label already exists"})
		return
	}

	bagSize := model.BagSize{Label: req.Label, WeightKg: req.WeightKg}
	if err := h.store.DB().Create(&bagSize).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, bagSize)
}

// ListBagSizes handles GET /api/bag-sizes.
func (h *Handler) ListBagSizes(c *gin.Context) {
	var sizes []model.BagSize
	if err := h.store.DB().Order("weight_kg ASC").Find(&sizes).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bag sizes"})
		return
	}
	c.JSON(http.StatusOK, sizes)
}

type orderItemRequest struct {
	ProductName     string   `json:"product_name" binding:"required"`
	QuantityTon     *float64 `json:"quantity_ton"`
	NumberOfBags    *int     `json:"number_of_bags"`
	BagSizeID       *uint    `json:"bag_size_id"`
	BagSizeWeightKg *float64 `json:"bag_size_weight"`
}

type createOrderRequest struct {
	OrderNumber string             `json:"order_number" binding:"required"`
	CustomerID  uint               `json:"customer_id" binding:"required"`
	Notes       string             `json:"notes"`
	Items       []orderItemRequest `json:"items" binding:"required,min=1"`
}

// CreateOrder handles POST /api/orders. Each item must specify its quantity
// either directly in tons or as bags with a resolvable bag weight.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !lookupExists(h.store.DB(), &model.Customer{}, req.CustomerID) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}
	var count int64
	h.store.DB().Model(&model.Order{}).Where("order_number = ?", req.OrderNumber).Count(&count)
	if count > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "order_number already exists"})
		return
	}

	order := model.Order{
		OrderNumber: req.OrderNumber,
		CustomerID:  req.CustomerID,
		Status:      model.OrderPending,
		Notes:       req.Notes,
		BranchID:    mw.BranchID(c),
	}
	for _, item := range req.Items {
		hasTons := item.QuantityTon != nil && *item.QuantityTon > 0
		hasBags := item.NumberOfBags != nil && *item.NumberOfBags > 0 &&
			(item.BagSizeID != nil || (item.BagSizeWeightKg != nil && *item.BagSizeWeightKg > 0))
		if !hasTons && !hasBags {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "each item needs quantity_ton or number_of_bags with a bag weight"})
			return
		}
		if item.BagSizeID != nil && !lookupExists(h.store.DB(), &model.BagSize{}, *item.BagSizeID) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "bag size not found"})
			return
		}

		order.Items = append(order.Items, model.OrderItem{
			ProductName:     item.ProductName,
			QuantityTon:     item.QuantityTon,
			NumberOfBags:    item.NumberOfBags,
			BagSizeID:       item.BagSizeID,
			BagSizeWeightKg: item.BagSizeWeightKg,
		})
	}

	if err := h.store.DB().Create(&order).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /api/orders?status=, newest first.
func (h *Handler) ListOrders(c *gin.Context) {
	q := branchScoped(c, h.store.DB()).
		Preload("Customer").
		Preload("Items").
		Preload("Items.BagSize").
		Order("id DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []model.Order
	if err := q.Find(&orders).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrderSummary handles GET /api/orders/:id/summary. It returns the
// reconciled ordered/dispatched/remaining view per item and overall.
func (h *Handler) GetOrderSummary(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	summary, err := h.store.OrderSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type markDispatchedRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles POST /api/orders/:id/status. Only the
// administrative DISPATCHED override is accepted here; the other statuses
// are derived from the dispatch ledger.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req markDispatchedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if model.OrderStatus(req.Status) != model.OrderDispatched {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "only the DISPATCHED status can be set manually"})
		return
	}

	var order model.Order
	if err := h.store.DB().First(&order, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "order not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if err := h.store.DB().Model(&order).Update("status", model.OrderDispatched).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}
