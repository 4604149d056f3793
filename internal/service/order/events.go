package order

import (
	"time"

	"github.com/Additional-Code/vendordesk/internal/entity"
)

// EventStatusChanged is the bus event type for a completed status transition.
const EventStatusChanged = "order.status_changed"

// StatusChangedEvent is emitted after the vendor API accepts a transition.
// Source is the InstanceID of the publishing Service.
type StatusChangedEvent struct {
	OrderID   int64              `json:"order_id"`
	VendorID  string             `json:"vendor_id,omitempty"`
	Status    entity.OrderStatus `json:"order_status"`
	ChangedAt time.Time          `json:"changed_at"`
	Source    string             `json:"source,omitempty"`
}
