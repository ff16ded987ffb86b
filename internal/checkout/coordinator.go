// Package checkout turns the session cart into a durable order. This is the
// one place client-perceived consistency matters: success is only ever
// concluded from a positive acknowledgment, and a rejection means the backend
// changed nothing, so the cart is kept for the user to adjust and retry.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/api"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/cart"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
)

// ErrSubmitInFlight rejects a second submission while one is outstanding, so
// a double-keyed command cannot place the same order twice.
var ErrSubmitInFlight = errors.New("an order submission is already in flight")

type Outcome int

const (
	// OutcomeEmptyCart: nothing to submit; no network call was made.
	OutcomeEmptyCart Outcome = iota
	// OutcomeOK: the backend atomically validated and decremented stock and
	// created the order. The cart has been cleared and the catalog refreshed.
	OutcomeOK
	// OutcomeStockConflict: rejected by business rules with no partial
	// mutation server-side. The cart is untouched.
	OutcomeStockConflict
	// OutcomeForbidden: the caller's role may not submit orders.
	OutcomeForbidden
	// OutcomeUnavailable: transport or server failure; server state unknown,
	// local state unchanged.
	OutcomeUnavailable
)

type Result struct {
	Outcome Outcome
	Order   domain.Order // set on OutcomeOK
	Err     error        // underlying failure for non-OK outcomes
}

// Submitter is the backend write this coordinator depends on.
type Submitter interface {
	SubmitOrder(ctx context.Context, items []domain.OrderRequestItem, idempotencyKey string) (domain.Order, error)
}

// Refresher corrects the displayed stock after a confirmed decrement.
type Refresher interface {
	Refresh(ctx context.Context) ([]domain.Product, error)
}

type Coordinator struct {
	backend  Submitter
	catalog  Refresher
	log      *slog.Logger
	inFlight atomic.Bool
}

func NewCoordinator(backend Submitter, catalog Refresher, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{backend: backend, catalog: catalog, log: log}
}

// Submit projects the cart into an order request and submits it once. On
// success the cart is cleared and the catalog refreshed, strictly in that
// order. On any failure the cart is left exactly as it was. An empty cart is
// a no-op, not an error.
func (co *Coordinator) Submit(ctx context.Context, crt *cart.Cart) (Result, error) {
	if crt.Empty() {
		return Result{Outcome: OutcomeEmptyCart}, nil
	}
	if !co.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrSubmitInFlight
	}
	defer co.inFlight.Store(false)

	key := uuid.NewString()
	order, err := co.backend.SubmitOrder(ctx, crt.Items(), key)
	switch {
	case err == nil:
	case errors.Is(err, api.ErrConflict):
		co.log.Info("order rejected by backend", "reason", err)
		return Result{Outcome: OutcomeStockConflict, Err: err}, nil
	case errors.Is(err, api.ErrForbidden):
		return Result{Outcome: OutcomeForbidden, Err: err}, nil
	default:
		co.log.Warn("order submission failed", "error", err)
		return Result{Outcome: OutcomeUnavailable, Err: err}, nil
	}

	co.log.Info("order created", "order_id", order.ID, "total", order.TotalAmount)
	crt.Clear()
	if _, err := co.catalog.Refresh(ctx); err != nil {
		// The order stands; only the displayed stock is stale until the next
		// refresh succeeds.
		co.log.Warn("catalog refresh after checkout failed", "error", err)
	}
	return Result{Outcome: OutcomeOK, Order: order}, nil
}
