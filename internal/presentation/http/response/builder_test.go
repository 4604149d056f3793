package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/vendordesk/pkg/errorbank"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func TestBuildSuccessWrapsData(t *testing.T) {
	c, rec := newContext()
	if err := New(c).WithData(map[string]int{"count": 2}).WithMeta("filter", "pending").Build(); err != nil {
		t.Fatal(err)
	}

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
		Meta    map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || !body.Success || body.Data["count"] != 2 || body.Meta["filter"] != "pending" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestBuildErrorCarriesRetryable(t *testing.T) {
	c, rec := newContext()
	if err := New(c).WithError(errorbank.Upstream("Failed to load orders: timeout")).Build(); err != nil {
		t.Fatal(err)
	}

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Kind      string `json:"kind"`
			Message   string `json:"message"`
			Retryable bool   `json:"retryable"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadGateway || body.Success || body.Error.Kind != "upstream" || !body.Error.Retryable {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestBuildErrorWrapsUnknownErrors(t *testing.T) {
	c, rec := newContext()
	_ = New(c).WithError(errors.New("disk on fire")).Build()
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestNoContent(t *testing.T) {
	c, rec := newContext()
	_ = New(c).WithNoContent().Build()
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}
