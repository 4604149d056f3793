// Package health tracks whether the dashboard can still reach the vendor API.
package health

import (
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/Additional-Code/vendordesk/pkg/errorbank"
)

// Status is the latest refresh outcome.
type Status struct {
	Serving     bool      `json:"serving"`
	LastRefresh time.Time `json:"last_refresh,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// State records refresh outcomes and fans changes out to subscribers.
type State struct {
	mu       sync.Mutex
	status   Status
	watchers []func(Status)
	now      func() time.Time
}

// Module provides the shared health State.
var Module = fx.Provide(New)

// New returns a State that reports serving until told otherwise.
func New() *State {
	return &State{status: Status{Serving: true}, now: time.Now}
}

// ReportRefresh records the result of a scheduled refresh. A missing session
// keeps the state serving.
func (s *State) ReportRefresh(err error) {
	s.mu.Lock()
	next := Status{Serving: true, LastRefresh: s.now()}
	if err != nil {
		next.LastError = err.Error()
		next.Serving = errorbank.Is(err, errorbank.KindUnauthorized)
	}
	changed := next.Serving != s.status.Serving
	s.status = next
	watchers := append([](func(Status))(nil), s.watchers...)
	s.mu.Unlock()

	if changed {
		for _, fn := range watchers {
			fn(next)
		}
	}
}

// Status returns the latest status.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe registers fn to run whenever Serving flips. fn is called once
// immediately with the current status.
func (s *State) Subscribe(fn func(Status)) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	current := s.status
	s.mu.Unlock()
	fn(current)
}
