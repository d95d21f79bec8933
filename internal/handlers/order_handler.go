package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-ecommerce-api/internal/metrics"
	"github.com/Keoroanthony/go-ecommerce-api/internal/models"
	"github.com/Keoroanthony/go-ecommerce-api/internal/notifier"
)

const (
	msgOrderFieldsRequired = "Customer ID and Product ID/s are required"
	msgProductIDsNotList   = "Product IDs must be a list"
	msgProductIDsNotInts   = "Product IDs must be integers"
	msgProductIDsEmpty     = "Product ID list cannot be empty"
	msgNoValidProducts     = "No valid products found"
)

// PlaceOrderRequest is the decoded order placement body.
type PlaceOrderRequest struct {
	CustomerID           uint
	ProductIDs           []uint
	Date                 models.Date
	ExpectedDeliveryDate *models.Date
	Status               string
}

// orderRejection is a 400 answer produced while reading the body.
type orderRejection struct {
	message string
	fields  FieldErrors
}

func (r *orderRejection) body() any {
	if r.fields != nil {
		return r.fields
	}
	return gin.H{"message": r.message}
}

// PlaceOrder validates the customer and product ids, then creates the order
// and its product associations in one transaction. Ids that match no product
// are dropped as long as at least one matches.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, FieldErrors{schemaKey: {msgInvalidInput}})
		return
	}

	req, rejection := parsePlaceOrder(raw)
	if rejection != nil {
		c.JSON(http.StatusBadRequest, rejection.body())
		return
	}

	store := h.store(c)

	var customer models.Customer
	if err := store.First(&customer, req.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c, "customer")
			return
		}
		h.placeOrderFailed(c, err)
		return
	}

	var products []models.Product
	if err := store.Where("id IN ?", req.ProductIDs).Order("id").Find(&products).Error; err != nil {
		h.placeOrderFailed(c, err)
		return
	}
	if len(products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgNoValidProducts})
		return
	}

	order := models.Order{
		OrderFields: models.OrderFields{
			Date:                 req.Date,
			ExpectedDeliveryDate: req.ExpectedDeliveryDate,
			Status:               req.Status,
			CustomerID:           customer.ID,
		},
		Products: products,
	}

	err := store.Transaction(func(tx *gorm.DB) error {
		// products already exist; only the join rows are written
		return tx.Omit("Products.*").Create(&order).Error
	})
	if err != nil {
		h.placeOrderFailed(c, err)
		return
	}

	metrics.RecordOrderPlaced(len(products))
	h.logger(c).WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": customer.ID,
		"products":    len(products),
	}).Info("order placed")

	if h.notifier != nil {
		go h.notifier.NotifyOrderPlaced(context.WithoutCancel(c.Request.Context()), confirmation(order, customer))
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders := []models.Order{}
	if err := h.store(c).Preload("Products", orderedProducts).Order("id").Find(&orders).Error; err != nil {
		h.storeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

// TrackOrder serves the reduced view: dates, status and products only.
func (h *Handler) TrackOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order.Tracking())
}

func (h *Handler) loadOrder(c *gin.Context) (models.Order, bool) {
	var order models.Order

	id, ok := parseID(c)
	if !ok {
		notFound(c, "order")
		return order, false
	}

	if err := h.store(c).Preload("Products", orderedProducts).First(&order, id).Error; err != nil {
		h.lookupFailed(c, "order", err)
		return order, false
	}
	if order.Products == nil {
		order.Products = []models.Product{}
	}
	return order, true
}

func (h *Handler) placeOrderFailed(c *gin.Context, err error) {
	h.logger(c).WithError(err).Error("order placement failed")
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error", "error": err.Error()})
}

func orderedProducts(db *gorm.DB) *gorm.DB {
	return db.Order("products.id")
}

func confirmation(order models.Order, customer models.Customer) notifier.OrderConfirmation {
	conf := notifier.OrderConfirmation{
		OrderID:      order.ID,
		CustomerName: customer.Name,
		Email:        customer.Email,
		Phone:        customer.Phone,
		OrderDate:    order.Date.String(),
		Items:        make([]notifier.LineItem, 0, len(order.Products)),
	}
	if order.ExpectedDeliveryDate != nil {
		conf.ExpectedDelivery = order.ExpectedDeliveryDate.String()
	}
	for _, p := range order.Products {
		conf.Items = append(conf.Items, notifier.LineItem{Name: p.Name, Price: p.Price})
		conf.Total += p.Price
	}
	return conf
}

// parsePlaceOrder applies the body checks in order: both ids truthy, the
// product ids a non-empty list of integers, then the order's own fields.
func parsePlaceOrder(raw map[string]json.RawMessage) (PlaceOrderRequest, *orderRejection) {
	var req PlaceOrderRequest

	customerRaw, productsRaw := raw["customer_id"], raw["product_ids"]
	if isFalsy(customerRaw) || isFalsy(productsRaw) {
		return req, &orderRejection{message: msgOrderFieldsRequired}
	}

	if err := json.Unmarshal(customerRaw, &req.CustomerID); err != nil {
		return req, &orderRejection{fields: FieldErrors{"customer_id": {msgInvalidInt}}}
	}

	if !bytes.HasPrefix(bytes.TrimSpace(productsRaw), []byte("[")) {
		return req, &orderRejection{message: msgProductIDsNotList}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(productsRaw, &items); err != nil {
		return req, &orderRejection{message: msgProductIDsNotList}
	}
	if len(items) == 0 {
		return req, &orderRejection{message: msgProductIDsEmpty}
	}
	req.ProductIDs = make([]uint, 0, len(items))
	for _, item := range items {
		var id uint
		if err := json.Unmarshal(item, &id); err != nil || id == 0 {
			return req, &orderRejection{message: msgProductIDsNotInts}
		}
		req.ProductIDs = append(req.ProductIDs, id)
	}

	fields := FieldErrors{}

	if isNull(raw["date"]) {
		fields.Add("date", msgRequired)
	} else if err := json.Unmarshal(raw["date"], &req.Date); err != nil {
		fields.Add("date", msgInvalidDate)
	}

	if !isNull(raw["expected_delivery_date"]) {
		var due models.Date
		if err := json.Unmarshal(raw["expected_delivery_date"], &due); err != nil {
			fields.Add("expected_delivery_date", msgInvalidDate)
		} else {
			req.ExpectedDeliveryDate = &due
		}
	}

	req.Status = models.DefaultOrderStatus
	if !isNull(raw["status"]) {
		if err := json.Unmarshal(raw["status"], &req.Status); err != nil {
			fields.Add("status", msgInvalidString)
		} else if len(req.Status) > 50 {
			fields.Add("status", "Longer than maximum length 50.")
		}
	}

	if len(fields) > 0 {
		return req, &orderRejection{fields: fields}
	}
	return req, nil
}

// isFalsy reports absent, null, false, 0, "" and {}. An empty list is not
// falsy here; it gets its own message.
func isFalsy(raw json.RawMessage) bool {
	if isNull(raw) {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
