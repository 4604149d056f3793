package health

import (
	"errors"
	"testing"

	"github.com/Additional-Code/vendordesk/pkg/errorbank"
)

func TestReportRefreshFlipsServing(t *testing.T) {
	state := New()
	var seen []bool
	state.Subscribe(func(s Status) { seen = append(seen, s.Serving) })

	state.ReportRefresh(nil)
	state.ReportRefresh(errorbank.Upstream("Failed to load orders: timeout"))
	state.ReportRefresh(errorbank.Upstream("Failed to load orders: timeout"))
	state.ReportRefresh(nil)

	want := []bool{true, false, true}
	if len(seen) != len(want) {
		t.Fatalf("notifications = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notifications = %v, want %v", seen, want)
		}
	}
}

func TestMissingSessionStillServing(t *testing.T) {
	state := New()
	state.ReportRefresh(errorbank.Unauthorized("Vendor ID not found. Please log in again."))

	status := state.Status()
	if !status.Serving || status.LastError == "" || status.LastRefresh.IsZero() {
		t.Fatalf("status = %+v", status)
	}

	state.ReportRefresh(errors.New("dial tcp: refused"))
	if state.Status().Serving {
		t.Fatal("plain failures should stop serving")
	}
}
