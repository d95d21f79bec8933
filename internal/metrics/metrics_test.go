package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOrderPlaced(t *testing.T) {
	before := testutil.ToFloat64(OrdersPlaced)

	RecordOrderPlaced(3)

	assert.Equal(t, before+1, testutil.ToFloat64(OrdersPlaced))
}

func TestRecordNotification(t *testing.T) {
	okBefore := testutil.ToFloat64(Notifications.WithLabelValues("sms", "true"))
	failBefore := testutil.ToFloat64(Notifications.WithLabelValues("sms", "false"))

	RecordNotification("sms", nil)
	RecordNotification("sms", errors.New("gateway down"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(Notifications.WithLabelValues("sms", "true")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(Notifications.WithLabelValues("sms", "false")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordOrderPlaced(1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ecommerce_orders_placed_total")
}
