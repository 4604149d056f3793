package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/vendordesk/internal/config"
	"github.com/Additional-Code/vendordesk/internal/health"
	"github.com/Additional-Code/vendordesk/pkg/errorbank"
)

func TestHealthReflectsRefreshState(t *testing.T) {
	state := health.New()
	e := NewEcho(Params{Config: config.Config{}, Health: state, Logger: zaptest.NewLogger(t)})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	state.ReportRefresh(errors.New("vendor API unreachable"))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "vendor API unreachable") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestErrorHandlerRendersAppErrors(t *testing.T) {
	e := NewEcho(Params{Config: config.Config{}, Logger: zaptest.NewLogger(t)})
	e.GET("/boom", func(echo.Context) error {
		return errorbank.Unauthorized("Vendor ID not found. Please log in again.")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), `"kind":"unauthorized"`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}
