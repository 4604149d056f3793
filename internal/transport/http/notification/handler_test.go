package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/vendordesk/internal/notify"
)

func TestListAndDismiss(t *testing.T) {
	queue := notify.NewQueue(time.Minute)
	defer queue.Close()
	n := queue.Push("Order #1 status updated to Completed", notify.KindSuccess)

	e := echo.New()
	Register(e, NewHandler(queue))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	var body struct {
		Data []notify.Notification `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data) != 1 || body.Data[0].ID != n.ID || body.Data[0].Kind != notify.KindSuccess {
		t.Fatalf("list = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications/"+n.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("dismiss status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications/"+n.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second dismiss status = %d", rec.Code)
	}
}
