// Package devapi emulates the remote vendor API on top of a local database so
// the dashboard can be developed without the hosted backend.
package devapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/vendordesk/internal/entity"
	"github.com/Additional-Code/vendordesk/internal/messaging"
	menurepo "github.com/Additional-Code/vendordesk/internal/repository/menuitem"
	orderrepo "github.com/Additional-Code/vendordesk/internal/repository/order"
	vendorrepo "github.com/Additional-Code/vendordesk/internal/repository/vendor"
	"github.com/Additional-Code/vendordesk/internal/upstream"
)

const maxUploadBytes = 5 << 20

// VendorStore persists vendor accounts.
type VendorStore interface {
	Create(ctx context.Context, vendor *entity.Vendor) error
	GetByID(ctx context.Context, id int64) (*entity.Vendor, error)
	GetByName(ctx context.Context, name string) (*entity.Vendor, error)
	Update(ctx context.Context, vendor *entity.Vendor, columns ...string) error
}

// MenuStore persists menu items.
type MenuStore interface {
	Create(ctx context.Context, item *entity.MenuItem) error
	GetByID(ctx context.Context, id int64) (*entity.MenuItem, error)
}

// OrderStore persists orders.
type OrderStore interface {
	Create(ctx context.Context, order *entity.Order) error
	ListByVendor(ctx context.Context, vendorID int64, status entity.OrderStatus) ([]*entity.Order, error)
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error
}

// Handler serves the vendor API contract.
type Handler struct {
	vendors   VendorStore
	menu      MenuStore
	orders    OrderStore
	publisher messaging.Client
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler wires the handler against the bun repositories.
func NewHandler(vendors *vendorrepo.Repository, menu *menurepo.Repository, orders *orderrepo.Repository, publisher messaging.Client, logger *zap.Logger) *Handler {
	return New(vendors, menu, orders, publisher, logger)
}

// New builds a Handler around any store implementations. publisher may be nil.
func New(vendors VendorStore, menu MenuStore, orders OrderStore, publisher messaging.Client, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{vendors: vendors, menu: menu, orders: orders, publisher: publisher, logger: logger, now: time.Now}
}

// Register mounts the contract routes under prefix.
func Register(e *echo.Echo, h *Handler, prefix string) {
	g := e.Group(prefix)

	g.GET("/orders/vendor/:vendorId", h.listOrders)
	g.POST("/orders", h.createOrder)
	g.GET("/orders/:id", h.getOrder)
	g.PATCH("/orders/:id/status", h.updateStatus)

	g.GET("/menuItems/item/:id", h.getMenuItem)
	g.POST("/menuItems", h.createMenuItem)

	g.POST("/vendor/login", h.login)
	g.POST("/vendor/register", h.register)
	g.GET("/vendor/:id", h.getVendor)
	g.PUT("/vendor/:id", h.updateVendor)

	g.POST("/auth/fcm-token", h.pushToken)
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

func (h *Handler) internal(c echo.Context, op string, err error) error {
	h.logger.Error("dev api failure", zap.String("op", op), zap.Error(err))
	return fail(c, http.StatusInternalServerError, "Internal server error")
}

func idParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) listOrders(c echo.Context) error {
	vendorID, ok := idParam(c, "vendorId")
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid vendor id")
	}
	status := entity.OrderStatus(c.QueryParam("status"))
	if status != "" && !status.Known() {
		return fail(c, http.StatusBadRequest, "Invalid order status")
	}

	ctx := c.Request().Context()
	if _, err := h.vendors.GetByID(ctx, vendorID); err != nil {
		if errors.Is(err, vendorrepo.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Vendor not found")
		}
		return h.internal(c, "listOrders", err)
	}
	orders, err := h.orders.ListByVendor(ctx, vendorID, status)
	if err != nil {
		return h.internal(c, "listOrders", err)
	}
	out := make([]upstream.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderJSON(o))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) getOrder(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid order id")
	}
	order, err := h.orders.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Order not found")
		}
		return h.internal(c, "getOrder", err)
	}
	return c.JSON(http.StatusOK, orderJSON(order))
}

func (h *Handler) updateStatus(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid order id")
	}
	var payload upstream.StatusUpdate
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if !payload.OrderStatus.Known() {
		return fail(c, http.StatusBadRequest, "Invalid order status")
	}
	if err := h.orders.UpdateStatus(c.Request().Context(), id, payload.OrderStatus); err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Order not found")
		}
		return h.internal(c, "updateStatus", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Order status updated"})
}

type newOrderLine struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type newOrder struct {
	VendorID      int64           `json:"vendor_id"`
	RequestedASAP bool            `json:"requested_asap"`
	RequestedAt   time.Time       `json:"requested_datetime"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Items         []newOrderLine  `json:"items"`
}

// createOrder plays the customer side: it places a pending order and pushes a
// notification to the vendor over the bus.
func (h *Handler) createOrder(c echo.Context) error {
	var payload newOrder
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if payload.VendorID <= 0 || len(payload.Items) == 0 {
		return fail(c, http.StatusBadRequest, "vendor_id and items are required")
	}

	ctx := c.Request().Context()
	if _, err := h.vendors.GetByID(ctx, payload.VendorID); err != nil {
		if errors.Is(err, vendorrepo.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Vendor not found")
		}
		return h.internal(c, "createOrder", err)
	}

	order := &entity.Order{
		VendorID:      payload.VendorID,
		Status:        entity.StatusPending,
		OrderedAt:     h.now().UTC(),
		RequestedASAP: payload.RequestedASAP,
		RequestedAt:   payload.RequestedAt,
		DeliveryFee:   payload.DeliveryFee,
	}
	total := payload.DeliveryFee
	for _, line := range payload.Items {
		if line.Quantity <= 0 {
			return fail(c, http.StatusBadRequest, "Quantity must be positive")
		}
		item, err := h.menu.GetByID(ctx, line.MenuItemID)
		if err != nil {
			if errors.Is(err, menurepo.ErrNotFound) {
				return fail(c, http.StatusBadRequest, "Unknown menu item "+strconv.FormatInt(line.MenuItemID, 10))
			}
			return h.internal(c, "createOrder", err)
		}
		if item.VendorID != payload.VendorID || !item.IsAvailable {
			return fail(c, http.StatusBadRequest, item.Name+" is not available")
		}
		amount := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(amount)
		order.Items = append(order.Items, &entity.OrderItem{
			MenuItemID:  item.ID,
			Quantity:    line.Quantity,
			TotalAmount: amount,
		})
	}
	order.TotalAmount = total

	if err := h.orders.Create(ctx, order); err != nil {
		return h.internal(c, "createOrder", err)
	}
	h.announce(ctx, order)
	return c.JSON(http.StatusCreated, orderJSON(order))
}

func (h *Handler) announce(ctx context.Context, order *entity.Order) {
	if h.publisher == nil {
		return
	}
	vendorID := strconv.FormatInt(order.VendorID, 10)
	msg, err := messaging.NewPush(vendorID, "New order", "Order #"+strconv.FormatInt(order.ID, 10)+" received",
		map[string]string{"url": "/orders/" + strconv.FormatInt(order.ID, 10)})
	if err == nil {
		err = h.publisher.Publish(ctx, msg)
	}
	if err != nil {
		h.logger.Warn("order push not published", zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

func (h *Handler) getMenuItem(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid menu item id")
	}
	item, err := h.menu.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, menurepo.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Menu item not found")
		}
		return h.internal(c, "getMenuItem", err)
	}
	return c.JSON(http.StatusOK, upstream.MenuItem{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Category:    item.Category,
		Price:       item.Price,
		Image:       item.ImageURL,
		IsAvailable: item.IsAvailable,
	})
}

func (h *Handler) createMenuItem(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	price, err := decimal.NewFromString(c.FormValue("price"))
	if name == "" || err != nil {
		return fail(c, http.StatusBadRequest, "Name and price are required")
	}
	if !price.IsPositive() {
		return fail(c, http.StatusBadRequest, "Price must be greater than zero")
	}
	vendorID, err := strconv.ParseInt(c.FormValue("vendorId"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid vendor id")
	}
	available := true
	if raw := c.FormValue("is_available"); raw != "" {
		if available, err = strconv.ParseBool(raw); err != nil {
			return fail(c, http.StatusBadRequest, "is_available must be a boolean")
		}
	}

	ctx := c.Request().Context()
	if _, err := h.vendors.GetByID(ctx, vendorID); err != nil {
		if errors.Is(err, vendorrepo.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Vendor not found")
		}
		return h.internal(c, "createMenuItem", err)
	}

	item := &entity.MenuItem{
		VendorID:    vendorID,
		Name:        name,
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Price:       price,
		IsAvailable: available,
	}
	// Uploaded images are not stored; only the name is kept for display.
	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxUploadBytes {
			return fail(c, http.StatusBadRequest, "Image is too large")
		}
		item.ImageURL = "/uploads/" + uuid.NewString() + "-" + file.Filename
	}

	if err := h.menu.Create(ctx, item); err != nil {
		return h.internal(c, "createMenuItem", err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": upstream.MenuItemAdded})
}

type loginResponse struct {
	VendorID int64  `json:"vendorId"`
	Token    string `json:"token"`
}

func (h *Handler) login(c echo.Context) error {
	var creds upstream.Credentials
	if err := c.Bind(&creds); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	vendor, err := h.vendors.GetByName(c.Request().Context(), strings.TrimSpace(creds.Name))
	if err != nil {
		if errors.Is(err, vendorrepo.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Vendor not found")
		}
		return h.internal(c, "login", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(vendor.PasswordHash), []byte(creds.Password)) != nil {
		return fail(c, http.StatusBadRequest, "Invalid credentials")
	}
	return c.JSON(http.StatusOK, loginResponse{VendorID: vendor.ID, Token: uuid.NewString()})
}

func (h *Handler) register(c echo.Context) error {
	var reg upstream.Registration
	if err := c.Bind(&reg); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	reg.Name = strings.TrimSpace(reg.Name)
	if reg.Name == "" || reg.OwnerName == "" || reg.CollegeID == "" || reg.Password == "" {
		return fail(c, http.StatusBadRequest, "Missing required fields")
	}

	ctx := c.Request().Context()
	if _, err := h.vendors.GetByName(ctx, reg.Name); err == nil {
		return fail(c, http.StatusConflict, "Vendor name already taken")
	} else if !errors.Is(err, vendorrepo.ErrNotFound) {
		return h.internal(c, "register", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return h.internal(c, "register", err)
	}
	vendor := &entity.Vendor{
		Name:         reg.Name,
		OwnerName:    reg.OwnerName,
		CollegeID:    reg.CollegeID,
		PasswordHash: string(hash),
		Latitude:     reg.Geolocation.Lat,
		Longitude:    reg.Geolocation.Lng,
	}
	if err := h.vendors.Create(ctx, vendor); err != nil {
		return h.internal(c, "register", err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"message": "Vendor registered successfully", "vendorId": vendor.ID})
}

func (h *Handler) getVendor(c echo.Context) error {
	vendor, err := h.vendorFromParam(c)
	if err != nil {
		return err
	}
	if vendor == nil {
		return nil
	}
	return c.JSON(http.StatusOK, upstream.Vendor{
		Name:        vendor.Name,
		OwnerName:   vendor.OwnerName,
		CollegeID:   vendor.CollegeID,
		Geolocation: upstream.Geolocation{Lat: vendor.Latitude, Lng: vendor.Longitude},
	})
}

func (h *Handler) updateVendor(c echo.Context) error {
	var update upstream.VendorUpdate
	if err := c.Bind(&update); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if update.Empty() {
		return fail(c, http.StatusBadRequest, "No fields to update")
	}
	vendor, err := h.vendorFromParam(c)
	if err != nil || vendor == nil {
		return err
	}

	ctx := c.Request().Context()
	var columns []string
	if update.Name != "" && update.Name != vendor.Name {
		if _, err := h.vendors.GetByName(ctx, update.Name); err == nil {
			return fail(c, http.StatusConflict, "Vendor name already taken")
		} else if !errors.Is(err, vendorrepo.ErrNotFound) {
			return h.internal(c, "updateVendor", err)
		}
		vendor.Name = update.Name
		columns = append(columns, "name")
	}
	if update.OwnerName != "" {
		vendor.OwnerName = update.OwnerName
		columns = append(columns, "owner_name")
	}
	if update.CollegeID != "" {
		vendor.CollegeID = update.CollegeID
		columns = append(columns, "college_id")
	}
	if update.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(update.Password), bcrypt.DefaultCost)
		if err != nil {
			return h.internal(c, "updateVendor", err)
		}
		vendor.PasswordHash = string(hash)
		columns = append(columns, "password_hash")
	}
	if err := h.vendors.Update(ctx, vendor, columns...); err != nil {
		return h.internal(c, "updateVendor", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Vendor updated successfully"})
}

func (h *Handler) pushToken(c echo.Context) error {
	var payload upstream.PushToken
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if payload.Role != "vendor" || payload.FCMToken == "" {
		return fail(c, http.StatusBadRequest, "A vendor role and token are required")
	}
	id, err := strconv.ParseInt(payload.UserID, 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user id")
	}

	ctx := c.Request().Context()
	vendor, err := h.vendors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, vendorrepo.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Vendor not found")
		}
		return h.internal(c, "pushToken", err)
	}
	vendor.FCMToken = payload.FCMToken
	if err := h.vendors.Update(ctx, vendor, "fcm_token"); err != nil {
		return h.internal(c, "pushToken", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Token saved"})
}

// vendorFromParam loads the vendor named by :id. A nil vendor with a nil error
// means the response has already been written.
func (h *Handler) vendorFromParam(c echo.Context) (*entity.Vendor, error) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, fail(c, http.StatusBadRequest, "Invalid vendor id")
	}
	vendor, err := h.vendors.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, vendorrepo.ErrNotFound) {
			return nil, fail(c, http.StatusNotFound, "Vendor not found")
		}
		return nil, h.internal(c, "vendor", err)
	}
	return vendor, nil
}

func orderJSON(o *entity.Order) upstream.Order {
	out := upstream.Order{
		ID:            o.ID,
		Status:        o.Status,
		OrderedAt:     o.OrderedAt,
		RequestedAt:   o.RequestedAt,
		RequestedASAP: o.RequestedASAP,
		TotalAmount:   o.TotalAmount,
		DeliveryFee:   o.DeliveryFee,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, upstream.OrderItem{
			MenuItemID:  item.MenuItemID,
			Quantity:    item.Quantity,
			TotalAmount: item.TotalAmount,
		})
	}
	return out
}
