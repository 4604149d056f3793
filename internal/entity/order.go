package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Order represents a customer order stored by the development API.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID            int64           `bun:",pk,autoincrement"`
	VendorID      int64           `bun:"vendor_id,notnull"`
	Status        OrderStatus     `bun:"order_status,notnull"`
	OrderedAt     time.Time       `bun:"order_datetime,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	RequestedAt   time.Time       `bun:"requested_datetime,nullzero"`
	RequestedASAP bool            `bun:"requested_asap,notnull"`
	TotalAmount   decimal.Decimal `bun:"total_amount,type:numeric(12,2),notnull"`
	DeliveryFee   decimal.Decimal `bun:"delivery_fee,type:numeric(12,2),notnull"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero"`

	Items []*OrderItem `bun:"rel:has-many,join:id=order_id"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID          int64           `bun:",pk,autoincrement"`
	OrderID     int64           `bun:"order_id,notnull"`
	MenuItemID  int64           `bun:"menu_item_id,notnull"`
	Quantity    int             `bun:"quantity,notnull"`
	TotalAmount decimal.Decimal `bun:"total_amount,type:numeric(12,2),notnull"`
}

// MenuItem is a dish a vendor offers.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items"`

	ID          int64           `bun:",pk,autoincrement"`
	VendorID    int64           `bun:"vendor_id,notnull"`
	Name        string          `bun:"name,notnull"`
	Description string          `bun:"description"`
	Category    string          `bun:"category"`
	Price       decimal.Decimal `bun:"price,type:numeric(12,2),notnull"`
	ImageURL    string          `bun:"image_url"`
	IsAvailable bool            `bun:"is_available,notnull"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// Vendor is a seller account.
type Vendor struct {
	bun.BaseModel `bun:"table:vendors"`

	ID           int64     `bun:",pk,autoincrement"`
	Name         string    `bun:"name,notnull,unique"`
	OwnerName    string    `bun:"owner_name"`
	CollegeID    string    `bun:"college_id"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Latitude     float64   `bun:"lat"`
	Longitude    float64   `bun:"lng"`
	FCMToken     string    `bun:"fcm_token"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
