package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestObserveBill(t *testing.T) {
	m := New()
	m.ObserveBill(decimal.RequireFromString("885.60"))
	m.ObserveBill(decimal.RequireFromString("100.40"))

	require.Equal(t, 2.0, testutil.ToFloat64(m.BillsSaved))
	require.InDelta(t, 986.0, testutil.ToFloat64(m.RevenueTotal), 0.0001)
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.BillsFailed.WithLabelValues("empty_order").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `billing_bills_failed_total{reason="empty_order"} 1`)
	require.Contains(t, string(body), "billing_bills_saved_total 0")
}
