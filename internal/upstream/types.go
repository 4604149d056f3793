package upstream

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/vendordesk/internal/entity"
)

// Order is the vendor API's projection of a customer order. Amounts arrive as
// JSON numbers or numeric strings; decimal accepts both.
type Order struct {
	ID            int64              `json:"id"`
	Status        entity.OrderStatus `json:"order_status"`
	OrderedAt     time.Time          `json:"order_datetime"`
	RequestedAt   time.Time          `json:"requested_datetime"`
	RequestedASAP bool               `json:"requested_asap"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	DeliveryFee   decimal.Decimal    `json:"delivery_fee"`
	Items         []OrderItem        `json:"items,omitempty"`
}

// OrderItem is one line of an order; Name is only present when the API
// inlines it.
type OrderItem struct {
	MenuItemID  int64           `json:"menu_item_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Name        string          `json:"name,omitempty"`
}

// MenuItem is returned by the item lookup endpoint.
type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	IsAvailable bool            `json:"is_available"`
}

// NewMenuItem is the multipart payload for adding a dish.
type NewMenuItem struct {
	VendorID    string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	IsAvailable bool
	ImageName   string
	Image       []byte
}

// StatusUpdate is the body of the status transition call.
type StatusUpdate struct {
	OrderStatus entity.OrderStatus `json:"order_status"`
}

// Credentials are used to sign a vendor in.
type Credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResult carries the identity the API hands back on sign-in.
type LoginResult struct {
	VendorID FlexibleID `json:"vendorId"`
	Token    string     `json:"token"`
}

// Geolocation is a vendor's shop position.
type Geolocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Registration is the sign-up payload.
type Registration struct {
	Name        string      `json:"name"`
	OwnerName   string      `json:"ownerName"`
	CollegeID   string      `json:"collegeId"`
	Geolocation Geolocation `json:"geolocation"`
	Password    string      `json:"password"`
}

// Vendor is the profile document.
type Vendor struct {
	Name        string      `json:"name"`
	OwnerName   string      `json:"owner_name"`
	CollegeID   string      `json:"college_id"`
	Geolocation Geolocation `json:"geolocation"`
}

// VendorUpdate carries the profile fields to change; empty fields are left
// untouched.
type VendorUpdate struct {
	Name      string `json:"name,omitempty"`
	OwnerName string `json:"ownerName,omitempty"`
	CollegeID string `json:"collegeId,omitempty"`
	Password  string `json:"password,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u VendorUpdate) Empty() bool {
	return u.Name == "" && u.OwnerName == "" && u.CollegeID == "" && u.Password == ""
}

// PushToken registers a device for push notifications.
type PushToken struct {
	UserID   string `json:"userId"`
	FCMToken string `json:"fcmToken"`
	Role     string `json:"role"`
}
