// Package notify holds the short-lived messages that tell a vendor how an
// action turned out.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"

	"github.com/Additional-Code/vendordesk/internal/config"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a single user-facing message. IDs are UUIDv7 and therefore
// sort by creation time.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Queue keeps notifications in insertion order and drops each one after a
// fixed TTL. Identical messages are not merged.
type Queue struct {
	ttl time.Duration

	mu     sync.Mutex
	items  []Notification
	timers map[string]*time.Timer
	closed bool

	pushed metric.Int64Counter
}

// Module provides the notification queue to Fx.
var Module = fx.Provide(NewModuleQueue)

// NewModuleQueue builds a Queue from configuration and stops its timers on
// shutdown.
func NewModuleQueue(lc fx.Lifecycle, cfg config.Config) *Queue {
	q := NewQueue(cfg.Dashboard.NotificationTTL)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			q.Close()
			return nil
		},
	})
	return q
}

// NewQueue returns an empty Queue whose entries expire after ttl.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	pushed, _ := otel.Meter("github.com/Additional-Code/vendordesk/notify").Int64Counter(
		"vendordesk.notifications.pushed",
		metric.WithDescription("Notifications shown to the vendor"),
	)
	return &Queue{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
		pushed: pushed,
	}
}

// Push appends a notification and schedules its removal.
func (q *Queue) Push(message string, kind Kind) Notification {
	n := Notification{
		ID:        newID(),
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	if !q.closed {
		id := n.ID
		q.timers[id] = time.AfterFunc(q.ttl, func() { q.Dismiss(id) })
	}
	if q.pushed != nil {
		q.pushed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", string(kind))))
	}
	return n
}

// Dismiss removes a notification early. It reports whether id was present.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the live notifications, oldest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Close stops all pending expiry timers. Notifications pushed afterwards are
// kept until dismissed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
