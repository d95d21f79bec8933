package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-ecommerce-api/internal/models"
)

const msgUsernameTaken = "username already exists"

func (h *Handler) ListAccounts(c *gin.Context) {
	accounts := []models.CustomerAccount{}
	if err := h.store(c).Order("id").Find(&accounts).Error; err != nil {
		h.storeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *Handler) GetAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, "account")
		return
	}

	var account models.CustomerAccount
	if err := h.store(c).First(&account, id).Error; err != nil {
		h.lookupFailed(c, "account", err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var in models.AccountInput
	if !bindJSON(c, &in) {
		return
	}

	account := models.CustomerAccount{}
	if !h.applyAccountFields(c, &account, in.Fields()) {
		return
	}

	if err := h.store(c).Create(&account).Error; err != nil {
		h.accountWriteFailed(c, err)
		return
	}

	h.logger(c).WithField("account_id", account.ID).Info("account created")
	c.JSON(http.StatusCreated, gin.H{"message": "A new account has been created!", "id": account.ID})
}

func (h *Handler) UpdateAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, "account")
		return
	}

	var account models.CustomerAccount
	if err := h.store(c).First(&account, id).Error; err != nil {
		h.lookupFailed(c, "account", err)
		return
	}

	var in models.AccountInput
	if !bindJSON(c, &in) {
		return
	}
	if !h.applyAccountFields(c, &account, in.Fields()) {
		return
	}

	if err := h.store(c).Save(&account).Error; err != nil {
		h.accountWriteFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "The account information has been updated!"})
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, "account")
		return
	}

	store := h.store(c)

	var account models.CustomerAccount
	if err := store.First(&account, id).Error; err != nil {
		h.lookupFailed(c, "account", err)
		return
	}
	if err := store.Delete(&account).Error; err != nil {
		h.storeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "The account with the specified ID has been deleted!"})
}

// applyAccountFields checks the linked customer and username, then replaces
// the account's fields with a hashed password. It answers the request itself
// when it returns false.
func (h *Handler) applyAccountFields(c *gin.Context, account *models.CustomerAccount, fields models.AccountFields) bool {
	store := h.store(c)

	if fields.CustomerID != nil {
		var customer models.Customer
		if err := store.Select("id").First(&customer, *fields.CustomerID).Error; err != nil {
			h.lookupFailed(c, "customer", err)
			return false
		}
	}

	taken := store.Model(&models.CustomerAccount{}).Where("username = ?", fields.Username)
	if account.ID != 0 {
		taken = taken.Where("id <> ?", account.ID)
	}
	var count int64
	if err := taken.Count(&count).Error; err != nil {
		h.storeFailed(c, err)
		return false
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": msgUsernameTaken})
		return false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(fields.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, FieldErrors{"password": {err.Error()}})
		return false
	}

	fields.Password = string(hash)
	account.AccountFields = fields
	return true
}

// accountWriteFailed covers a concurrent insert that slipped past the
// username check and hit the unique index.
func (h *Handler) accountWriteFailed(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusConflict, gin.H{"error": msgUsernameTaken})
		return
	}
	h.storeFailed(c, err)
}
