package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/vendordesk/internal/config"
	"github.com/Additional-Code/vendordesk/internal/entity"
)

var clientTracer = otel.Tracer("github.com/Additional-Code/vendordesk/upstream")

const (
	maxResponseBytes = 4 << 20

	// MenuItemAdded is the acknowledgement the API sends for a new dish.
	MenuItemAdded = "Menu item added successfully"
)

// StatusError is returned for any non-2xx response, even when the body is
// valid JSON.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// Client talks to the remote vendor API.
type Client struct {
	cfg    config.Upstream
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a traced client from configuration.
func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	httpClient := &http.Client{
		Timeout:   cfg.Upstream.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return New(cfg.Upstream, httpClient, logger)
}

// New wires a client around an existing http.Client.
func New(cfg config.Upstream, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// ListVendorOrders returns the vendor's orders, optionally restricted to one
// status token. Ordering is whatever the API returns.
func (c *Client) ListVendorOrders(ctx context.Context, vendorID string, status string) ([]Order, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var orders []Order
	err := c.do(ctx, request{
		op:     "ListVendorOrders",
		method: http.MethodGet,
		path:   "/orders/vendor/" + url.PathEscape(vendorID),
		query:  query,
		attrs:  []attribute.KeyValue{attribute.String("vendor.id", vendorID), attribute.String("order.status_filter", status)},
	}, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order with its items.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	err := c.do(ctx, request{
		op:     "GetOrder",
		method: http.MethodGet,
		path:   "/orders/" + strconv.FormatInt(orderID, 10),
		attrs:  []attribute.KeyValue{attribute.Int64("order.id", orderID)},
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus asks the API to move an order to status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error {
	body, err := jsonBody(StatusUpdate{OrderStatus: status})
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          "UpdateOrderStatus",
		method:      http.MethodPatch,
		path:        "/orders/" + strconv.FormatInt(orderID, 10) + "/status",
		body:        body,
		contentType: "application/json",
		attrs:       []attribute.KeyValue{attribute.Int64("order.id", orderID), attribute.String("order.status", string(status))},
	}, nil)
}

// GetMenuItem looks up a dish by id.
func (c *Client) GetMenuItem(ctx context.Context, menuItemID int64) (*MenuItem, error) {
	var item MenuItem
	err := c.do(ctx, request{
		op:     "GetMenuItem",
		method: http.MethodGet,
		path:   "/menuItems/item/" + strconv.FormatInt(menuItemID, 10),
		attrs:  []attribute.KeyValue{attribute.Int64("menu_item.id", menuItemID)},
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateMenuItem uploads a new dish as multipart form data.
func (c *Client) CreateMenuItem(ctx context.Context, item NewMenuItem) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"name", item.Name},
		{"description", item.Description},
		{"category", item.Category},
		{"price", item.Price.String()},
		{"vendorId", item.VendorID},
		{"is_available", strconv.FormatBool(item.IsAvailable)},
	}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return fmt.Errorf("write field %s: %w", field[0], err)
		}
	}
	if len(item.Image) > 0 {
		name := item.ImageName
		if name == "" {
			name = "image"
		}
		part, err := form.CreateFormFile("image", name)
		if err != nil {
			return fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(item.Image); err != nil {
			return fmt.Errorf("write image part: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("close multipart form: %w", err)
	}

	var result struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	err := c.do(ctx, request{
		op:          "CreateMenuItem",
		method:      http.MethodPost,
		path:        "/menuItems",
		body:        &buf,
		contentType: form.FormDataContentType(),
		attrs:       []attribute.KeyValue{attribute.String("vendor.id", item.VendorID)},
	}, &result)
	if err != nil {
		return err
	}
	if result.Message != MenuItemAdded {
		reason := result.Error
		if reason == "" {
			reason = "Unknown error"
		}
		return fmt.Errorf("menu item rejected: %s", reason)
	}
	return nil
}

// Login exchanges credentials for a vendor id and token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	body, err := jsonBody(creds)
	if err != nil {
		return nil, err
	}
	var result LoginResult
	err = c.do(ctx, request{
		op:          "Login",
		method:      http.MethodPost,
		path:        "/vendor/login",
		body:        body,
		contentType: "application/json",
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.VendorID == "" {
		return nil, errors.New("login response carried no vendor id")
	}
	return &result, nil
}

// Register creates a vendor account.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	body, err := jsonBody(reg)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          "Register",
		method:      http.MethodPost,
		path:        "/vendor/register",
		body:        body,
		contentType: "application/json",
	}, nil)
}

// GetVendor loads a vendor profile.
func (c *Client) GetVendor(ctx context.Context, vendorID string) (*Vendor, error) {
	var vendor Vendor
	err := c.do(ctx, request{
		op:     "GetVendor",
		method: http.MethodGet,
		path:   "/vendor/" + url.PathEscape(vendorID),
		attrs:  []attribute.KeyValue{attribute.String("vendor.id", vendorID)},
	}, &vendor)
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// UpdateVendor changes profile fields.
func (c *Client) UpdateVendor(ctx context.Context, vendorID string, update VendorUpdate) error {
	body, err := jsonBody(update)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          "UpdateVendor",
		method:      http.MethodPut,
		path:        "/vendor/" + url.PathEscape(vendorID),
		body:        body,
		contentType: "application/json",
		attrs:       []attribute.KeyValue{attribute.String("vendor.id", vendorID)},
	}, nil)
}

// SubmitPushToken registers a device token for vendor push notifications.
func (c *Client) SubmitPushToken(ctx context.Context, vendorID, token string) error {
	body, err := jsonBody(PushToken{UserID: vendorID, FCMToken: token, Role: "vendor"})
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          "SubmitPushToken",
		method:      http.MethodPost,
		path:        "/auth/fcm-token",
		body:        body,
		contentType: "application/json",
		attrs:       []attribute.KeyValue{attribute.String("vendor.id", vendorID)},
	}, nil)
}

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	attrs       []attribute.KeyValue
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	ctx, span := clientTracer.Start(ctx, "VendorAPI."+r.op, trace.WithAttributes(r.attrs...))
	defer span.End()

	endpoint := c.cfg.APIURL(r.path)
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, r.body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read error")
		return fmt.Errorf("read %s %s: %w", r.method, r.path, err)
	}

	c.logger.Debug("vendor api call",
		zap.String("op", r.op),
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Method: r.method, Path: r.path, StatusCode: resp.StatusCode, Reason: reasonFrom(payload)}
		span.SetStatus(codes.Error, statusErr.Error())
		return statusErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode error")
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(data), nil
}

// reasonFrom pulls a human-readable reason out of an error body.
func reasonFrom(payload []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
