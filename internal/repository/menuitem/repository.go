package menuitem

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/vendordesk/internal/database"
	"github.com/Additional-Code/vendordesk/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/vendordesk/repository/menuitem")

// ErrNotFound is returned when a menu item is missing.
var ErrNotFound = errors.New("menu item not found")

// Repository encapsulates read/write access for menu items.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// Create persists a new menu item.
func (r *Repository) Create(ctx context.Context, item *entity.MenuItem) error {
	if item == nil {
		return errors.New("nil menu item")
	}
	ctx, span := repoTracer.Start(ctx, "MenuItemRepository.Create", trace.WithAttributes(
		attribute.Int64("vendor.id", item.VendorID),
		attribute.String("menu_item.name", item.Name),
	))
	defer span.End()

	_, err := r.writer.NewInsert().Model(item).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a menu item by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "MenuItemRepository.GetByID", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	item := new(entity.MenuItem)
	err := r.reader.NewSelect().Model(item).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return item, nil
}

// ListByVendor returns a vendor's menu in insertion order.
func (r *Repository) ListByVendor(ctx context.Context, vendorID int64) ([]*entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "MenuItemRepository.ListByVendor", trace.WithAttributes(attribute.Int64("vendor.id", vendorID)))
	defer span.End()

	var items []*entity.MenuItem
	if err := r.reader.NewSelect().Model(&items).Where("vendor_id = ?", vendorID).Order("id").Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return items, nil
}
