// Package seeder fills the development database with a demo vendor, its menu
// and a spread of orders in every status.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/vendordesk/internal/entity"
	menurepo "github.com/Additional-Code/vendordesk/internal/repository/menuitem"
	orderrepo "github.com/Additional-Code/vendordesk/internal/repository/order"
	vendorrepo "github.com/Additional-Code/vendordesk/internal/repository/vendor"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Demo credentials created by Seed.
const (
	DemoVendorName = "Mama Ntilie"
	DemoPassword   = "password123"
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	vendors *vendorrepo.Repository
	menu    *menurepo.Repository
	orders  *orderrepo.Repository
	logger  *zap.Logger
	now     func() time.Time
}

// New constructs a Seeder on top of the repositories.
func New(vendors *vendorrepo.Repository, menu *menurepo.Repository, orders *orderrepo.Repository, logger *zap.Logger) *Seeder {
	return &Seeder{vendors: vendors, menu: menu, orders: orders, logger: logger, now: time.Now}
}

// Seed creates the demo vendor with menu and orders. It does nothing when the
// vendor already exists.
func (s *Seeder) Seed(ctx context.Context) (*entity.Vendor, error) {
	existing, err := s.vendors.GetByName(ctx, DemoVendorName)
	if err == nil {
		if s.logger != nil {
			s.logger.Info("seed data already present", zap.Int64("vendor_id", existing.ID))
		}
		return existing, nil
	}
	if !errors.Is(err, vendorrepo.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	vendor := &entity.Vendor{
		Name:         DemoVendorName,
		OwnerName:    "Neema Joseph",
		CollegeID:    "1",
		PasswordHash: string(hash),
		Latitude:     -6.7924,
		Longitude:    39.2083,
	}
	if err := s.vendors.Create(ctx, vendor); err != nil {
		return nil, fmt.Errorf("seed vendor: %w", err)
	}

	menu := []*entity.MenuItem{
		{Name: "Chips Mayai", Category: "Mains", Price: decimal.NewFromInt(3000)},
		{Name: "Pilau", Category: "Mains", Price: decimal.NewFromInt(4500)},
		{Name: "Chapati", Category: "Sides", Price: decimal.NewFromInt(500)},
		{Name: "Passion Juice", Category: "Drinks", Price: decimal.NewFromInt(1500)},
	}
	for _, item := range menu {
		item.VendorID = vendor.ID
		item.IsAvailable = true
		if err := s.menu.Create(ctx, item); err != nil {
			return nil, fmt.Errorf("seed menu item %s: %w", item.Name, err)
		}
	}

	now := s.now().UTC()
	samples := []struct {
		status entity.OrderStatus
		age    time.Duration
		asap   bool
		lines  [][2]int
	}{
		{entity.StatusPending, 2 * time.Minute, true, [][2]int{{0, 2}, {3, 1}}},
		{entity.StatusPending, 25 * time.Minute, false, [][2]int{{1, 1}}},
		{entity.StatusInProgress, 50 * time.Minute, true, [][2]int{{1, 2}, {2, 4}}},
		{entity.StatusAssigned, 3 * time.Hour, true, [][2]int{{0, 1}}},
		{entity.StatusCompleted, 26 * time.Hour, false, [][2]int{{2, 3}, {3, 3}}},
		{entity.StatusCancelled, 72 * time.Hour, true, [][2]int{{1, 1}}},
	}

	fee := decimal.NewFromInt(1000)
	for _, sample := range samples {
		ordered := now.Add(-sample.age)
		order := &entity.Order{
			VendorID:      vendor.ID,
			Status:        sample.status,
			OrderedAt:     ordered,
			RequestedASAP: sample.asap,
			DeliveryFee:   fee,
		}
		if !sample.asap {
			order.RequestedAt = ordered.Add(45 * time.Minute)
		}
		total := fee
		for _, l := range sample.lines {
			idx, qty := l[0], l[1]
			line := menu[idx].Price.Mul(decimal.NewFromInt(int64(qty)))
			total = total.Add(line)
			order.Items = append(order.Items, &entity.OrderItem{
				MenuItemID:  menu[idx].ID,
				Quantity:    qty,
				TotalAmount: line,
			})
		}
		order.TotalAmount = total
		if err := s.orders.Create(ctx, order); err != nil {
			return nil, fmt.Errorf("seed order: %w", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded demo vendor",
			zap.Int64("vendor_id", vendor.ID),
			zap.Int("menu_items", len(menu)),
			zap.Int("orders", len(samples)),
		)
	}
	return vendor, nil
}
