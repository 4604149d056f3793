package entity

// OrderStatus is the lifecycle state of an order as reported by the vendor API.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in_progress"
	StatusAssigned   OrderStatus = "assigned"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// KnownStatuses lists every status the dashboard offers as a filter, in
// display order.
var KnownStatuses = []OrderStatus{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusAssigned,
	StatusCancelled,
}

// Known reports whether s is one of the five statuses the platform defines.
func (s OrderStatus) Known() bool {
	for _, known := range KnownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Actions returns the transitions a vendor is offered for an order in status
// s. Legality is enforced by the API, not here.
func Actions(s OrderStatus) []OrderStatus {
	switch s {
	case StatusPending:
		return []OrderStatus{StatusInProgress, StatusCancelled}
	case StatusInProgress, StatusAssigned:
		return []OrderStatus{StatusCompleted, StatusCancelled}
	default:
		return nil
	}
}
