package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-ecommerce-api/internal/db"
	"github.com/Keoroanthony/go-ecommerce-api/internal/handlers"
	"github.com/Keoroanthony/go-ecommerce-api/internal/middleware"
	"github.com/Keoroanthony/go-ecommerce-api/internal/models"
	"github.com/Keoroanthony/go-ecommerce-api/internal/notifier"
)

type fakeNotifier struct {
	sent chan notifier.OrderConfirmation
}

func (f *fakeNotifier) NotifyOrderPlaced(ctx context.Context, conf notifier.OrderConfirmation) {
	f.sent <- conf
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// setupTestRouter gives every test its own in-memory database.
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *fakeNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := quietLogger()

	dsn := db.SQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	testDB, err := gorm.Open(sqlite.Open(dsn), db.GormConfig(log))
	require.NoError(t, err, "failed to connect test database")
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // shared-cache sqlite locks tables across connections
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(testDB), "failed to auto-migrate models")

	n := &fakeNotifier{sent: make(chan notifier.OrderConfirmation, 8)}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	handlers.New(testDB, log, n).Register(r)

	return r, testDB, n
}

func performRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = []byte(b)
	default:
		reqBody, _ = json.Marshal(b)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out), recorder.Body.String())
	return out
}

func seedCustomer(t *testing.T, testDB *gorm.DB, name string) models.Customer {
	t.Helper()
	customer := models.Customer{CustomerFields: models.CustomerFields{
		Name:  name,
		Email: strings.ToLower(name) + "@example.com",
		Phone: "0700000000",
	}}
	require.NoError(t, testDB.Create(&customer).Error)
	return customer
}

func seedProduct(t *testing.T, testDB *gorm.DB, name string, price float64) models.Product {
	t.Helper()
	product := models.Product{ProductFields: models.ProductFields{Name: name, Price: price}}
	require.NoError(t, testDB.Create(&product).Error)
	return product
}
