package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-ecommerce-api/internal/middleware"
	"github.com/Keoroanthony/go-ecommerce-api/internal/notifier"
)

// Handler serves the customer, account, product and order routes. The store
// is injected and narrowed to the request context on every call.
type Handler struct {
	db       *gorm.DB
	log      *logrus.Logger
	notifier notifier.Notifier
}

func New(db *gorm.DB, log *logrus.Logger, n notifier.Notifier) *Handler {
	return &Handler{db: db, log: log, notifier: n}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/customers", h.ListCustomers)
	r.GET("/customers/:id", h.GetCustomer)
	r.POST("/customers", h.CreateCustomer)
	r.PUT("/customers/:id", h.UpdateCustomer)
	r.DELETE("/customers/:id", h.DeleteCustomer)

	r.GET("/Customer_Accounts", h.ListAccounts)
	r.GET("/Customer_Accounts/:id", h.GetAccount)
	r.POST("/Customer_Accounts", h.CreateAccount)
	r.PUT("/Customer_Accounts/:id", h.UpdateAccount)
	r.DELETE("/Customer_Accounts/:id", h.DeleteAccount)

	r.GET("/Products", h.ListProducts)
	r.GET("/Products/:id", h.GetProduct)
	r.POST("/Products", h.CreateProduct)
	r.PUT("/Products/:id", h.UpdateProduct)
	r.DELETE("/Products/:id", h.DeleteProduct)

	r.GET("/Orders", h.ListOrders)
	r.POST("/Orders", h.PlaceOrder)
	r.GET("/Orders/:id", h.GetOrder)
	r.GET("/Orders/:id/track", h.TrackOrder)
}

func (h *Handler) store(c *gin.Context) *gorm.DB {
	return h.db.WithContext(c.Request.Context())
}

func (h *Handler) logger(c *gin.Context) *logrus.Entry {
	return middleware.Logger(c, h.log)
}

// parseID reads the :id path parameter. Anything that is not a positive
// integer can never match a row.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func notFound(c *gin.Context, entity string) {
	c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
}

// lookupFailed answers a failed First: 404 for a missing row, 500 otherwise.
func (h *Handler) lookupFailed(c *gin.Context, entity string, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c, entity)
		return
	}
	h.storeFailed(c, err)
}

func (h *Handler) storeFailed(c *gin.Context, err error) {
	h.logger(c).WithError(err).Error("store operation failed")
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
