package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/vendordesk/internal/config"
)

func TestPrometheusHandlerExposesMeterData(t *testing.T) {
	mgr, err := Build(context.Background(), config.Observability{
		ServiceName:     "vendordesk-test",
		EnableMetrics:   true,
		MetricsExporter: "prometheus",
		PrometheusPath:  "/metrics",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer mgr.Shutdown(context.Background())

	if !mgr.MetricsEnabled() || mgr.TracingEnabled() {
		t.Fatalf("metrics=%v tracing=%v", mgr.MetricsEnabled(), mgr.TracingEnabled())
	}

	counter, err := mgr.MeterProvider().Meter("test").Int64Counter("vendordesk.test.events")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	mgr.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, "vendordesk_test_events") {
		t.Fatalf("scrape status=%d body=%s", rec.Code, body)
	}
}

func TestBuildTwiceDoesNotCollide(t *testing.T) {
	cfg := config.Observability{EnableMetrics: true, MetricsExporter: "prometheus"}
	for i := 0; i < 2; i++ {
		mgr, err := Build(context.Background(), cfg, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Build #%d: %v", i+1, err)
		}
		_ = mgr.Shutdown(context.Background())
	}
}

func TestUnknownExportersDisableQuietly(t *testing.T) {
	mgr, err := Build(context.Background(), config.Observability{
		EnableTracing:   true,
		TraceExporter:   "zipkin",
		EnableMetrics:   true,
		MetricsExporter: "statsd",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if mgr.TracingEnabled() || mgr.MetricsEnabled() || mgr.MetricsHandler() != nil {
		t.Fatal("unknown exporters should leave providers unset")
	}
}
