// Package orders reads and transitions backend-owned orders, scoped by the
// caller's role. Status is never patched locally: after a requested
// transition the caller refetches and renders whatever the backend says.
package orders

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/auth"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/policy"
)

var (
	// ErrAdminCancel: admins monitor orders, they do not cancel them.
	ErrAdminCancel = errors.New("admins cannot cancel orders")
	// ErrNotCancelable: the order left CREATED and its status is terminal.
	ErrNotCancelable = errors.New("order can only be canceled while CREATED")
	// ErrCancelInFlight rejects a second cancel while one is outstanding.
	ErrCancelInFlight = errors.New("a cancellation is already in flight")
)

// Backend is the slice of the REST client this manager depends on.
type Backend interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListMyOrders(ctx context.Context) ([]domain.Order, error)
	CancelOrder(ctx context.Context, id int64) error
	OrderStats(ctx context.Context) (domain.OrderStats, error)
	MyOrderStats(ctx context.Context) (domain.CustomerStats, error)
	ProductStats(ctx context.Context) (domain.ProductStats, error)
}

// Stats is the role-shaped aggregate view: exactly one of the two fields is
// set. The shapes are distinct reads, never cross-populated from each other.
type Stats struct {
	Admin    *domain.AdminStats
	Customer *domain.CustomerStats
}

type Manager struct {
	backend        Backend
	session        auth.Session
	cancelInFlight atomic.Bool
}

func NewManager(backend Backend, session auth.Session) *Manager {
	return &Manager{backend: backend, session: session}
}

// List fetches the order history for the session: the global set for ADMIN,
// otherwise only the caller's own orders. The scoping is enforced by the
// endpoint choice; no client-side filtering happens on top of it.
func (m *Manager) List(ctx context.Context) ([]domain.Order, error) {
	if m.session.Role() == auth.RoleAdmin {
		return m.backend.ListOrders(ctx)
	}
	return m.backend.ListMyOrders(ctx)
}

// Cancel requests the CREATED -> CANCELED transition for o. The request is
// only sent when the local view still shows CREATED and the caller is not an
// admin; otherwise it is rejected here without touching the network. On
// success the caller must refetch, the in-memory order is not updated.
func (m *Manager) Cancel(ctx context.Context, o domain.Order) error {
	role := m.session.Role()
	if !policy.Can(role, policy.ActionCancelOrder, o.Status) {
		if role == auth.RoleAdmin {
			return ErrAdminCancel
		}
		return ErrNotCancelable
	}
	if !m.cancelInFlight.CompareAndSwap(false, true) {
		return ErrCancelInFlight
	}
	defer m.cancelInFlight.Store(false)

	return m.backend.CancelOrder(ctx, o.ID)
}

// Stats returns the dashboard aggregates for the session's role. For ADMIN
// the two global reads are fetched concurrently and joined; if either leg
// fails the whole read fails, so a half-populated dashboard is never shown.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	if m.session.Role() != auth.RoleAdmin {
		cs, err := m.backend.MyOrderStats(ctx)
		if err != nil {
			return Stats{}, err
		}
		return Stats{Customer: &cs}, nil
	}

	var (
		ps domain.ProductStats
		os domain.OrderStats
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ps, err = m.backend.ProductStats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		os, err = m.backend.OrderStats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return Stats{Admin: &domain.AdminStats{Products: ps, Orders: os}}, nil
}
