package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Additional-Code/vendordesk/internal/config"
	"github.com/Additional-Code/vendordesk/internal/entity"
	"github.com/Additional-Code/vendordesk/internal/format"
	"github.com/Additional-Code/vendordesk/internal/messaging"
	"github.com/Additional-Code/vendordesk/internal/notify"
	"github.com/Additional-Code/vendordesk/internal/session"
	"github.com/Additional-Code/vendordesk/internal/upstream"
	"github.com/Additional-Code/vendordesk/pkg/errorbank"
)

const instrumentationName = "github.com/Additional-Code/vendordesk/service/order"

var serviceTracer = otel.Tracer(instrumentationName)

// API is the part of the vendor API the order view depends on.
type API interface {
	ItemLookup
	ListVendorOrders(ctx context.Context, vendorID string, status string) ([]upstream.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*upstream.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error
}

// Modal is the state of the order detail view.
type Modal struct {
	OrderID int64           `json:"order_id"`
	Order   *upstream.Order `json:"order,omitempty"`
	Loading bool            `json:"loading"`
	Error   string          `json:"error,omitempty"`
}

// View is a snapshot of everything the dashboard renders.
type View struct {
	Filter      string           `json:"filter"`
	FilterLabel string           `json:"filter_label"`
	Orders      []upstream.Order `json:"orders"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
	Retryable   bool             `json:"retryable"`
	RefreshedAt time.Time        `json:"refreshed_at"`
	Modal       *Modal           `json:"modal,omitempty"`
}

// Service is the order view controller. It owns the list, the active filter
// and the detail modal, and is safe for concurrent use by the poller, the
// event worker and HTTP handlers.
type Service struct {
	api         API
	names       *NameCache
	sessions    session.Provider
	queue       *notify.Queue
	publisher   messaging.Client
	detailLimit int
	instanceID  string
	logger      *zap.Logger

	root context.Context
	stop context.CancelFunc

	mu           sync.Mutex
	filter       string
	orders       []upstream.Order
	loading      bool
	errMsg       string
	retryable    bool
	refreshedAt  time.Time
	listGen      uint64
	listCancel   context.CancelFunc
	modal        *Modal
	detailSeq    uint64
	detailCancel context.CancelFunc

	refreshes   metric.Int64Counter
	transitions metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Logger    *zap.Logger
	Client    *upstream.Client
	Sessions  session.Provider
	Queue     *notify.Queue
	Publisher messaging.Client
}

// NewService wires a Service and cancels its outstanding requests on stop.
func NewService(p Params) *Service {
	svc := New(p.Client, p.Sessions, p.Queue, p.Publisher, p.Config.Dashboard, p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			svc.Close()
			return nil
		},
	})
	return svc
}

// New builds a Service. publisher may be nil.
func New(api API, sessions session.Provider, queue *notify.Queue, publisher messaging.Client, cfg config.Dashboard, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.DetailConcurrency
	if limit <= 0 {
		limit = 1
	}
	meter := otel.Meter(instrumentationName)
	refreshes, _ := meter.Int64Counter("vendordesk.orders.refreshes",
		metric.WithDescription("Order list fetches by outcome"))
	transitions, _ := meter.Int64Counter("vendordesk.orders.transitions",
		metric.WithDescription("Order status transitions by target status and outcome"))

	root, stop := context.WithCancel(context.Background())
	return &Service{
		api:         api,
		names:       NewNameCache(api, logger),
		sessions:    sessions,
		queue:       queue,
		publisher:   publisher,
		detailLimit: limit,
		instanceID:  uuid.NewString(),
		logger:      logger,
		root:        root,
		stop:        stop,
		refreshes:   refreshes,
		transitions: transitions,
	}
}

// InstanceID identifies this Service on the event bus.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Names exposes the item name cache.
func (s *Service) Names() *NameCache {
	return s.names
}

// Refresh re-fetches the list under the active filter.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	status := s.filter
	s.mu.Unlock()
	return s.Fetch(ctx, status)
}

// SetFilter switches to the filter with the given label ("All", "In
// Progress", ...) and fetches the matching list.
func (s *Service) SetFilter(ctx context.Context, label string) error {
	return s.Fetch(ctx, format.FilterToken(label))
}

// Fetch loads the vendor's orders with an optional status token and makes
// them the active filter. A newer fetch cancels this one; a superseded fetch
// leaves the view alone and returns nil.
func (s *Service) Fetch(ctx context.Context, status string) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Fetch", trace.WithAttributes(attribute.String("order.status_filter", status)))
	defer span.End()

	fetchCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(s.root, cancel)
	defer func() {
		stopAfter()
		cancel()
	}()

	s.mu.Lock()
	if s.listCancel != nil {
		s.listCancel()
	}
	s.listGen++
	gen := s.listGen
	s.listCancel = cancel
	s.filter = status
	s.loading = true
	s.mu.Unlock()

	sess, err := s.sessions.Current(fetchCtx)
	if err != nil {
		span.RecordError(err)
		if errorbank.Is(err, errorbank.KindUnauthorized) {
			appErr := errorbank.From(err)
			span.SetStatus(codes.Error, "no session")
			if s.finishList(gen, func() {
				s.orders = nil
				s.errMsg = appErr.Message()
				s.retryable = false
			}) {
				s.recordRefresh(ctx, "unauthorized")
				return appErr
			}
			return nil
		}

		// The session store failed; the identity may still be there.
		span.SetStatus(codes.Error, "session read failed")
		msg := "Failed to load orders: " + errorbank.From(err).Message()
		if s.finishList(gen, func() {
			s.errMsg = msg
			s.retryable = true
		}) {
			s.logger.Warn("session read failed", zap.Error(err))
			s.recordRefresh(ctx, "error")
			return errorbank.Upstream(msg, errorbank.WithCause(err))
		}
		return nil
	}

	orders, err := s.api.ListVendorOrders(fetchCtx, sess.VendorID, status)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Superseded or torn down; whoever cancelled owns the view now.
			s.finishList(gen, func() {})
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		msg := "Failed to load orders: " + reasonOf(err)
		if s.finishList(gen, func() {
			s.errMsg = msg
			s.retryable = true
		}) {
			s.logger.Warn("order list fetch failed", zap.String("vendor_id", sess.VendorID), zap.String("status", status), zap.Error(err))
			s.recordRefresh(ctx, "error")
			return errorbank.Upstream(msg, errorbank.WithCause(err))
		}
		return nil
	}

	slices.SortStableFunc(orders, func(a, b upstream.Order) int {
		return b.OrderedAt.Compare(a.OrderedAt)
	})

	s.finishList(gen, func() {
		s.orders = orders
		s.errMsg = ""
		s.retryable = false
		s.refreshedAt = time.Now()
	})
	span.SetAttributes(attribute.Int("order.count", len(orders)))
	s.recordRefresh(ctx, "ok")
	return nil
}

// finishList applies update if gen is still the latest fetch.
func (s *Service) finishList(gen uint64, update func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.listGen {
		return false
	}
	s.loading = false
	s.listCancel = nil
	update()
	return true
}

// OpenOrder shows the detail modal for id. Items without an inline name are
// resolved through the name cache. If another order is opened before this one
// loads, the result is discarded.
func (s *Service) OpenOrder(ctx context.Context, id int64) (*upstream.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.OpenOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	detailCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(s.root, cancel)
	defer func() {
		stopAfter()
		cancel()
	}()

	s.mu.Lock()
	if s.detailCancel != nil {
		s.detailCancel()
	}
	s.detailSeq++
	seq := s.detailSeq
	s.detailCancel = cancel
	s.modal = &Modal{OrderID: id, Loading: true}
	s.mu.Unlock()

	order, err := s.loadDetail(detailCtx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.detailSeq || s.modal == nil || s.modal.OrderID != id {
		return nil, errorbank.Conflict(fmt.Sprintf("order #%d is no longer open", id))
	}
	s.detailCancel = nil

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "detail failed")
		msg := "Failed to load order details: " + reasonOf(err)
		s.modal = &Modal{OrderID: id, Error: msg}
		s.queue.Push(msg, notify.KindError)
		s.logger.Warn("order detail fetch failed", zap.Int64("order_id", id), zap.Error(err))
		if upstream.IsStatus(err, 404) {
			return nil, errorbank.NotFound(msg, errorbank.WithCause(err))
		}
		return nil, errorbank.Upstream(msg, errorbank.WithCause(err))
	}

	s.modal = &Modal{OrderID: id, Order: order}
	return order, nil
}

func (s *Service) loadDetail(ctx context.Context, id int64) (*upstream.Order, error) {
	order, err := s.api.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	items := slices.Clone(order.Items)
	var g errgroup.Group
	g.SetLimit(s.detailLimit)
	for i := range items {
		if items[i].Name != "" {
			continue
		}
		g.Go(func() error {
			items[i].Name = s.names.Resolve(ctx, items[i].MenuItemID)
			return nil
		})
	}
	_ = g.Wait()

	resolved := *order
	resolved.Items = items
	return &resolved, nil
}

// CloseModal hides the detail modal and drops any in-flight detail request.
func (s *Service) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detailCancel != nil {
		s.detailCancel()
		s.detailCancel = nil
	}
	s.detailSeq++
	s.modal = nil
}

// UpdateStatus asks the vendor API to move order id to status. Nothing local
// changes until the API accepts; on success the modal closes and the list is
// re-fetched under the active filter.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error {
	if status == "" {
		return errorbank.BadRequest("order_status is required")
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	if err := s.api.UpdateOrderStatus(ctx, id, status); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition failed")
		msg := "Failed to update order status: " + reasonOf(err)
		s.queue.Push(msg, notify.KindError)
		s.recordTransition(ctx, status, "error")
		s.logger.Warn("order status update failed", zap.Int64("order_id", id), zap.String("status", string(status)), zap.Error(err))
		return errorbank.Upstream(msg, errorbank.WithCause(err), errorbank.WithDetail("order_id", id))
	}

	s.queue.Push(fmt.Sprintf("Order #%d status updated to %s", id, format.StatusLabel(string(status))), notify.KindSuccess)
	s.recordTransition(ctx, status, "ok")
	s.CloseModal()
	s.publishStatusChanged(ctx, id, status)

	if err := s.Refresh(ctx); err != nil {
		s.logger.Debug("refresh after status update failed", zap.Int64("order_id", id), zap.Error(err))
	}
	return nil
}

func (s *Service) publishStatusChanged(ctx context.Context, id int64, status entity.OrderStatus) {
	if s.publisher == nil {
		return
	}
	event := StatusChangedEvent{
		OrderID:   id,
		Status:    status,
		ChangedAt: time.Now().UTC(),
		Source:    s.instanceID,
	}
	if sess, err := s.sessions.Current(ctx); err == nil {
		event.VendorID = sess.VendorID
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal status changed", zap.Error(err))
		return
	}
	msg := messaging.NewEvent(EventStatusChanged, []byte(fmt.Sprintf("order-%d", id)), payload)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Error("publish status changed", zap.Int64("order_id", id), zap.Error(err))
	}
}

// View returns a copy of the current view state.
func (s *Service) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Filter:      s.filter,
		FilterLabel: filterLabel(s.filter),
		Orders:      slices.Clone(s.orders),
		Loading:     s.loading,
		Error:       s.errMsg,
		Retryable:   s.retryable,
		RefreshedAt: s.refreshedAt,
	}
	if s.modal != nil {
		modal := *s.modal
		v.Modal = &modal
	}
	return v
}

// Close cancels every outstanding request. Requests started afterwards are
// cancelled immediately.
func (s *Service) Close() {
	s.stop()
}

func (s *Service) recordRefresh(ctx context.Context, outcome string) {
	if s.refreshes != nil {
		s.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (s *Service) recordTransition(ctx context.Context, status entity.OrderStatus, outcome string) {
	if s.transitions != nil {
		s.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("status", string(status)),
			attribute.String("outcome", outcome),
		))
	}
}

func filterLabel(token string) string {
	if token == "" {
		return format.FilterAll
	}
	return format.StatusLabel(token)
}

func reasonOf(err error) string {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) && statusErr.Reason != "" {
		return statusErr.Reason
	}
	return err.Error()
}
