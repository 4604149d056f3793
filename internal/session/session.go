// Package session owns the signed-in vendor identity that every order
// operation needs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vendordesk/internal/cache"
	"github.com/Additional-Code/vendordesk/internal/config"
	"github.com/Additional-Code/vendordesk/pkg/errorbank"
)

// MissingVendorMessage is shown when no vendor is signed in.
const MissingVendorMessage = "Vendor ID not found. Please log in again."

// Session is the persisted identity of the signed-in vendor.
type Session struct {
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name,omitempty"`
	Token      string `json:"token,omitempty"`
}

// Provider is the single access point to session state.
type Provider interface {
	Current(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// Module provides the session Provider to Fx.
var Module = fx.Provide(NewProvider)

// NewProvider returns a static provider when the vendor is pinned in
// configuration and a store-backed one otherwise.
func NewProvider(cfg config.Config, store cache.Store, logger *zap.Logger) Provider {
	if cfg.Session.VendorID != "" {
		logger.Info("using static vendor session", zap.String("vendor_id", cfg.Session.VendorID))
		return Static(Session{
			VendorID:   cfg.Session.VendorID,
			VendorName: cfg.Session.VendorName,
			Token:      cfg.Session.Token,
		})
	}
	return NewStoreProvider(store, cfg.Session.StoreKey)
}

// StoreProvider keeps the session as JSON in a cache.Store.
type StoreProvider struct {
	store cache.Store
	key   string
}

// NewStoreProvider builds a StoreProvider.
func NewStoreProvider(store cache.Store, key string) *StoreProvider {
	return &StoreProvider{store: store, key: key}
}

// Current returns the stored session or an unauthorized error.
func (p *StoreProvider) Current(ctx context.Context) (Session, error) {
	raw, err := p.store.Get(ctx, p.key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return Session{}, errorbank.Unauthorized(MissingVendorMessage)
	}
	if err != nil {
		return Session{}, errorbank.Internal("failed to read session", errorbank.WithCause(err))
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, errorbank.Unauthorized(MissingVendorMessage, errorbank.WithCause(err))
	}
	if s.VendorID == "" {
		return Session{}, errorbank.Unauthorized(MissingVendorMessage)
	}
	return s, nil
}

// Save persists s without expiry.
func (p *StoreProvider) Save(ctx context.Context, s Session) error {
	if s.VendorID == "" {
		return errorbank.BadRequest("vendor id is required")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return p.store.Set(ctx, p.key, raw, 0)
}

// Clear forgets the session.
func (p *StoreProvider) Clear(ctx context.Context) error {
	return p.store.Delete(ctx, p.key)
}

type staticProvider struct {
	session Session
}

// Static returns a read-only provider that always yields s.
func Static(s Session) Provider {
	return staticProvider{session: s}
}

func (p staticProvider) Current(context.Context) (Session, error) {
	if p.session.VendorID == "" {
		return Session{}, errorbank.Unauthorized(MissingVendorMessage)
	}
	return p.session, nil
}

func (p staticProvider) Save(context.Context, Session) error {
	return errorbank.Conflict("session is pinned by configuration")
}

func (p staticProvider) Clear(context.Context) error {
	return errorbank.Conflict("session is pinned by configuration")
}
