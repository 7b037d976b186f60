package services

import (
	"context"
	"sync/atomic"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/metrics"
	"travel-discovery-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// NetworkGate wraps a document store with an online/offline switch driven by
// the host environment. Identities can be gated by the same switch. While
// offline every call fails immediately with baas.ErrUnavailable; calls
// already in flight are not interrupted.
type NetworkGate struct {
	store   baas.DocumentStore
	offline atomic.Bool
}

// NewNetworkGate creates an online gate around store
func NewNetworkGate(store baas.DocumentStore) *NetworkGate {
	metrics.NetworkOnline.Set(1)
	return &NetworkGate{store: store}
}

// EnableNetwork brings the store back online
func (g *NetworkGate) EnableNetwork(_ context.Context) error {
	if g.offline.Swap(false) {
		log.Info().Msg("Document store network enabled")
	}
	metrics.NetworkOnline.Set(1)
	return nil
}

// DisableNetwork takes the store offline
func (g *NetworkGate) DisableNetwork(_ context.Context) error {
	if !g.offline.Swap(true) {
		log.Warn().Msg("Document store network disabled")
	}
	metrics.NetworkOnline.Set(0)
	return nil
}

// Online reports whether the gate is open
func (g *NetworkGate) Online() bool {
	return !g.offline.Load()
}

// GetDocument forwards to the wrapped store when online
func (g *NetworkGate) GetDocument(ctx context.Context, collection, id string) (baas.Document, bool, error) {
	if g.offline.Load() {
		return nil, false, baas.ErrUnavailable
	}
	return g.store.GetDocument(ctx, collection, id)
}

// SetDocument forwards to the wrapped store when online
func (g *NetworkGate) SetDocument(ctx context.Context, collection, id string, data baas.Document, opts baas.SetOptions) error {
	if g.offline.Load() {
		return baas.ErrUnavailable
	}
	return g.store.SetDocument(ctx, collection, id, data, opts)
}

// Identities returns store gated by the same switch, so auth calls fail
// while offline too
func (g *NetworkGate) Identities(store IdentityStore) IdentityStore {
	return &gatedIdentities{gate: g, store: store}
}

type gatedIdentities struct {
	gate  *NetworkGate
	store IdentityStore
}

func (i *gatedIdentities) Create(ctx context.Context, identity *models.Identity) error {
	if !i.gate.Online() {
		return baas.ErrUnavailable
	}
	return i.store.Create(ctx, identity)
}

func (i *gatedIdentities) GetByID(ctx context.Context, uid string) (*models.Identity, error) {
	if !i.gate.Online() {
		return nil, baas.ErrUnavailable
	}
	return i.store.GetByID(ctx, uid)
}

func (i *gatedIdentities) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	if !i.gate.Online() {
		return nil, baas.ErrUnavailable
	}
	return i.store.GetByEmail(ctx, email)
}

func (i *gatedIdentities) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	if !i.gate.Online() {
		return baas.ErrUnavailable
	}
	return i.store.UpdateDisplayName(ctx, uid, displayName)
}
