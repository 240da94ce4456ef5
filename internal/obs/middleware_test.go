package obs_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("packklite", nil, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req = req.WithContext(obs.WithRoute(req.Context(), "/health/ready"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/health/ready", "204")))
	require.NotZero(t, testutil.CollectAndCount(metrics.ReqDur))
	require.Zero(t, testutil.ToFloat64(metrics.InFlight))
}

func TestHTTPMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewHTTPMetrics("packklite", nil, registry)
	second := obs.NewHTTPMetrics("packklite", nil, registry)
	require.Same(t, first.ReqTotal, second.ReqTotal)
}

func TestDomainMetricsNilSafe(t *testing.T) {
	var m *obs.DomainMetrics
	m.OrderCreated()
	m.Mismatch("total")
	m.EmailResult("order.created", nil)

	registry := prometheus.NewRegistry()
	m = obs.NewDomainMetrics("packklite", registry)
	m.Mismatch("total")
	m.Mismatch("total")
	m.EmailResult("", errTest)
	require.Equal(t, 2.0, testutil.ToFloat64(m.PriceMismatch.WithLabelValues("total")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("other", "failed")))
}

type testErr string

func (e testErr) Error() string { return string(e) }

const errTest = testErr("boom")

func TestRequestLoggerIncludesPrincipal(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	handler := obs.RequestLogger{Logger: logger}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		obs.SetPrincipal(w, common.Principal{ID: "c-1", Kind: common.PrincipalCustomer})
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account/orders", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, float64(http.StatusNotFound), line["status"])
	require.Equal(t, "customer", line["principal_kind"])
	require.Equal(t, "c-1", line["principal_id"])
}
