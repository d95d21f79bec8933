package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-ecommerce-api/internal/models"
)

var errCustomerHasOrders = errors.New("customer has orders")

func (h *Handler) ListCustomers(c *gin.Context) {
	customers := []models.Customer{}
	if err := h.store(c).Order("id").Find(&customers).Error; err != nil {
		h.storeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, "customer")
		return
	}

	var customer models.Customer
	if err := h.store(c).First(&customer, id).Error; err != nil {
		h.lookupFailed(c, "customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var in models.CustomerInput
	if !bindJSON(c, &in) {
		return
	}

	customer := models.Customer{CustomerFields: in.Fields()}
	if err := h.store(c).Create(&customer).Error; err != nil {
		h.storeFailed(c, err)
		return
	}

	h.logger(c).WithField("customer_id", customer.ID).Info("customer created")
	c.JSON(http.StatusCreated, gin.H{"message": "A new customer has been added!", "id": customer.ID})
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, "customer")
		return
	}

	store := h.store(c)

	var customer models.Customer
	if err := store.First(&customer, id).Error; err != nil {
		h.lookupFailed(c, "customer", err)
		return
	}

	var in models.CustomerInput
	if !bindJSON(c, &in) {
		return
	}

	customer.CustomerFields = in.Fields()
	if err := store.Save(&customer).Error; err != nil {
		h.storeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "The customer has been successfully updated!"})
}

// DeleteCustomer refuses customers that still have orders. Accounts linked to
// the customer are detached, not deleted.
func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, "customer")
		return
	}

	store := h.store(c)

	var customer models.Customer
	if err := store.First(&customer, id).Error; err != nil {
		h.lookupFailed(c, "customer", err)
		return
	}

	err := store.Transaction(func(tx *gorm.DB) error {
		var orders int64
		if err := tx.Model(&models.Order{}).Where("customer_id = ?", customer.ID).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return errCustomerHasOrders
		}
		if err := tx.Model(&models.CustomerAccount{}).
			Where("customer_id = ?", customer.ID).
			Update("customer_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	})
	if errors.Is(err, errCustomerHasOrders) {
		c.JSON(http.StatusConflict, gin.H{"error": errCustomerHasOrders.Error()})
		return
	}
	if err != nil {
		h.storeFailed(c, err)
		return
	}

	h.logger(c).WithField("customer_id", customer.ID).Info("customer deleted")
	c.JSON(http.StatusOK, gin.H{"message": "The specified customer has been deleted"})
}
