package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-ecommerce-api/internal/models"
)

func (h *Handler) ListProducts(c *gin.Context) {
	products := []models.Product{}
	if err := h.store(c).Order("id").Find(&products).Error; err != nil {
		h.storeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, "product")
		return
	}

	var product models.Product
	if err := h.store(c).First(&product, id).Error; err != nil {
		h.lookupFailed(c, "product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var in models.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	product := models.Product{ProductFields: in.Fields()}
	if err := h.store(c).Create(&product).Error; err != nil {
		h.storeFailed(c, err)
		return
	}

	h.logger(c).WithField("product_id", product.ID).Info("product created")
	c.JSON(http.StatusCreated, gin.H{"message": "A new product has been added!", "id": product.ID})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, "product")
		return
	}

	store := h.store(c)

	var product models.Product
	if err := store.First(&product, id).Error; err != nil {
		h.lookupFailed(c, "product", err)
		return
	}

	var in models.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	product.ProductFields = in.Fields()
	if err := store.Save(&product).Error; err != nil {
		h.storeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "The product and its price have been updated!"})
}

// DeleteProduct removes the product from every order that contains it.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, "product")
		return
	}

	store := h.store(c)

	var product models.Product
	if err := store.First(&product, id).Error; err != nil {
		h.lookupFailed(c, "product", err)
		return
	}

	err := store.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.OrderProduct{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		h.storeFailed(c, err)
		return
	}

	h.logger(c).WithField("product_id", product.ID).Info("product deleted")
	c.JSON(http.StatusOK, gin.H{"message": "The product has been deleted!"})
}
