package devapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/vendordesk/internal/config"
	"github.com/Additional-Code/vendordesk/internal/entity"
	"github.com/Additional-Code/vendordesk/internal/messaging"
	menurepo "github.com/Additional-Code/vendordesk/internal/repository/menuitem"
	orderrepo "github.com/Additional-Code/vendordesk/internal/repository/order"
	vendorrepo "github.com/Additional-Code/vendordesk/internal/repository/vendor"
	"github.com/Additional-Code/vendordesk/internal/upstream"
)

type memVendors struct {
	mu   sync.Mutex
	rows []*entity.Vendor
}

func (m *memVendors) Create(_ context.Context, v *entity.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = int64(len(m.rows) + 1)
	cp := *v
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memVendors) GetByID(_ context.Context, id int64) (*entity.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.rows {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, vendorrepo.ErrNotFound
}

func (m *memVendors) GetByName(_ context.Context, name string) (*entity.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.rows {
		if v.Name == name {
			cp := *v
			return &cp, nil
		}
	}
	return nil, vendorrepo.ErrNotFound
}

func (m *memVendors) Update(_ context.Context, v *entity.Vendor, _ ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == v.ID {
			cp := *v
			m.rows[i] = &cp
			return nil
		}
	}
	return vendorrepo.ErrNotFound
}

type memMenu struct {
	mu   sync.Mutex
	rows []*entity.MenuItem
}

func (m *memMenu) Create(_ context.Context, item *entity.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = int64(len(m.rows) + 1)
	cp := *item
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memMenu) GetByID(_ context.Context, id int64) (*entity.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.rows {
		if item.ID == id {
			cp := *item
			return &cp, nil
		}
	}
	return nil, menurepo.ErrNotFound
}

type memOrders struct {
	mu   sync.Mutex
	rows []*entity.Order
}

func (m *memOrders) Create(_ context.Context, o *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, o)
	return nil
}

func (m *memOrders) ListByVendor(_ context.Context, vendorID int64, status entity.OrderStatus) ([]*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Order
	for _, o := range m.rows {
		if o.VendorID == vendorID && (status == "" || o.Status == status) {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Order) int { return b.OrderedAt.Compare(a.OrderedAt) })
	return out, nil
}

func (m *memOrders) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.rows {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, orderrepo.ErrNotFound
}

func (m *memOrders) UpdateStatus(_ context.Context, id int64, status entity.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.rows {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return orderrepo.ErrNotFound
}

type fixture struct {
	router  *echo.Echo
	client  *upstream.Client
	vendors *memVendors
	menu    *memMenu
	orders  *memOrders
	bus     *messaging.MemoryClient
	vendor  *entity.Vendor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		vendors: &memVendors{},
		menu:    &memMenu{},
		orders:  &memOrders{},
		bus:     messaging.NewMemoryClient("vendor.events", 8),
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	f.vendor = &entity.Vendor{Name: "Shop", OwnerName: "Asha", CollegeID: "2", PasswordHash: string(hash)}
	_ = f.vendors.Create(context.Background(), f.vendor)
	_ = f.menu.Create(context.Background(), &entity.MenuItem{VendorID: f.vendor.ID, Name: "Pilau", Price: decimal.NewFromInt(4500), IsAvailable: true})

	f.router = echo.New()
	Register(f.router, New(f.vendors, f.menu, f.orders, f.bus, zaptest.NewLogger(t)), "/api")
	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)

	f.client = upstream.New(config.Upstream{BaseURL: srv.URL, APIPath: "/api"}, srv.Client(), zaptest.NewLogger(t))
	return f
}

func (f *fixture) addOrder(status entity.OrderStatus, age time.Duration) *entity.Order {
	o := &entity.Order{
		VendorID:    f.vendor.ID,
		Status:      status,
		OrderedAt:   time.Now().Add(-age).UTC(),
		TotalAmount: decimal.NewFromInt(5500),
		DeliveryFee: decimal.NewFromInt(1000),
		Items:       []*entity.OrderItem{{MenuItemID: 1, Quantity: 1, TotalAmount: decimal.NewFromInt(4500)}},
	}
	_ = f.orders.Create(context.Background(), o)
	return o
}

func TestLoginIssuesNumericVendorID(t *testing.T) {
	f := newFixture(t)

	result, err := f.client.Login(context.Background(), upstream.Credentials{Name: "Shop", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.VendorID.String() != "1" || result.Token == "" {
		t.Fatalf("result = %+v", result)
	}

	_, err = f.client.Login(context.Background(), upstream.Credentials{Name: "Shop", Password: "wrong"})
	if !upstream.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("wrong password err = %v", err)
	}
	_, err = f.client.Login(context.Background(), upstream.Credentials{Name: "Nobody", Password: "secret"})
	if !upstream.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("unknown vendor err = %v", err)
	}
}

func TestOrdersListFilterAndStatusUpdate(t *testing.T) {
	f := newFixture(t)
	older := f.addOrder(entity.StatusPending, time.Hour)
	newer := f.addOrder(entity.StatusPending, time.Minute)
	f.addOrder(entity.StatusCompleted, 2*time.Hour)
	ctx := context.Background()

	pending, err := f.client.ListVendorOrders(ctx, "1", "pending")
	if err != nil {
		t.Fatalf("ListVendorOrders: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != newer.ID || pending[1].ID != older.ID {
		t.Fatalf("pending = %+v", pending)
	}

	if err := f.client.UpdateOrderStatus(ctx, older.ID, entity.StatusInProgress); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	got, err := f.client.GetOrder(ctx, older.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Status != entity.StatusInProgress || len(got.Items) != 1 || !got.TotalAmount.Equal(decimal.NewFromInt(5500)) {
		t.Fatalf("order = %+v", got)
	}

	if err := f.client.UpdateOrderStatus(ctx, older.ID, "teleported"); !upstream.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("unknown status err = %v", err)
	}
	if _, err := f.client.ListVendorOrders(ctx, "1", "teleported"); !upstream.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("unknown filter err = %v", err)
	}
	if _, err := f.client.GetOrder(ctx, 99); !upstream.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("missing order err = %v", err)
	}
}

func TestMenuItemRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.client.CreateMenuItem(ctx, upstream.NewMenuItem{
		VendorID:    "1",
		Name:        "Chapati",
		Category:    "Sides",
		Price:       decimal.NewFromInt(500),
		IsAvailable: true,
		ImageName:   "chapati.png",
		Image:       []byte("png"),
	})
	if err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}
	item, err := f.client.GetMenuItem(ctx, 2)
	if err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}
	if item.Name != "Chapati" || item.Image == "" || !item.IsAvailable {
		t.Fatalf("item = %+v", item)
	}

	err = f.client.CreateMenuItem(ctx, upstream.NewMenuItem{VendorID: "1", Name: "Free", Price: decimal.Zero})
	if !upstream.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("zero price err = %v", err)
	}
}

func TestRegisterAndProfileUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg := upstream.Registration{Name: "Juice Bar", OwnerName: "Baraka", CollegeID: "3", Password: "pw"}
	if err := f.client.Register(ctx, reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := f.client.Register(ctx, reg); !upstream.IsStatus(err, http.StatusConflict) {
		t.Fatalf("duplicate register err = %v", err)
	}

	if err := f.client.UpdateVendor(ctx, "2", upstream.VendorUpdate{OwnerName: "Baraka M."}); err != nil {
		t.Fatalf("UpdateVendor: %v", err)
	}
	vendor, err := f.client.GetVendor(ctx, "2")
	if err != nil {
		t.Fatalf("GetVendor: %v", err)
	}
	if vendor.Name != "Juice Bar" || vendor.OwnerName != "Baraka M." {
		t.Fatalf("vendor = %+v", vendor)
	}
	if err := f.client.UpdateVendor(ctx, "2", upstream.VendorUpdate{Name: "Shop"}); !upstream.IsStatus(err, http.StatusConflict) {
		t.Fatalf("rename conflict err = %v", err)
	}
}

func TestPushTokenStored(t *testing.T) {
	f := newFixture(t)
	if err := f.client.SubmitPushToken(context.Background(), "1", "device-token"); err != nil {
		t.Fatalf("SubmitPushToken: %v", err)
	}
	v, _ := f.vendors.GetByID(context.Background(), 1)
	if v.FCMToken != "device-token" {
		t.Fatalf("token = %q", v.FCMToken)
	}
}

func TestCreateOrderPublishesPush(t *testing.T) {
	f := newFixture(t)

	body := `{"vendor_id":1,"requested_asap":true,"delivery_fee":"1000","items":[{"menu_item_id":1,"quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	created, _ := f.orders.GetByID(context.Background(), 1)
	if !created.TotalAmount.Equal(decimal.NewFromInt(10000)) || created.Status != entity.StatusPending {
		t.Fatalf("order = %+v", created)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got := make(chan messaging.Message, 1)
	go func() {
		_ = f.bus.Consume(ctx, func(_ context.Context, msg messaging.Message) error {
			got <- msg
			cancel()
			return nil
		})
	}()
	select {
	case msg := <-got:
		if msg.EventType() != messaging.EventPush {
			t.Fatalf("event type = %q", msg.EventType())
		}
	case <-time.After(time.Second):
		t.Fatal("no push published")
	}
}
