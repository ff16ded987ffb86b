package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/auth"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSession struct {
	subject string
	role    auth.Role
}

func (f fakeSession) Token(context.Context) (string, error) { return "tok", nil }
func (f fakeSession) Subject() string                       { return f.subject }
func (f fakeSession) Role() auth.Role                       { return f.role }

type mockBackend struct {
	mu sync.Mutex

	listAllCalls int
	listMyCalls  int
	cancelCalls  []int64

	orders   []domain.Order
	myOrders []domain.Order

	orderStats    domain.OrderStats
	orderStatsErr error
	productStats  domain.ProductStats
	prodStatsErr  error
	customerStats domain.CustomerStats
	cancelErr     error
	blockCancel   chan struct{}
	cancelStarted chan struct{}
}

func (m *mockBackend) ListOrders(context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listAllCalls++
	return m.orders, nil
}

func (m *mockBackend) ListMyOrders(context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listMyCalls++
	return m.myOrders, nil
}

func (m *mockBackend) CancelOrder(_ context.Context, id int64) error {
	m.mu.Lock()
	m.cancelCalls = append(m.cancelCalls, id)
	started := m.cancelStarted
	m.mu.Unlock()
	if started != nil {
		close(started)
		m.mu.Lock()
		m.cancelStarted = nil
		m.mu.Unlock()
	}
	if m.blockCancel != nil {
		<-m.blockCancel
	}
	return m.cancelErr
}

func (m *mockBackend) OrderStats(context.Context) (domain.OrderStats, error) {
	return m.orderStats, m.orderStatsErr
}

func (m *mockBackend) MyOrderStats(context.Context) (domain.CustomerStats, error) {
	return m.customerStats, nil
}

func (m *mockBackend) ProductStats(context.Context) (domain.ProductStats, error) {
	return m.productStats, m.prodStatsErr
}

func (m *mockBackend) cancels() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.cancelCalls...)
}

func TestList_ClientOnlyEverHitsMyOrders(t *testing.T) {
	backend := &mockBackend{myOrders: []domain.Order{{ID: 1, CustomerID: "U1"}}}
	mgr := NewManager(backend, fakeSession{subject: "U1", role: auth.RoleClient})

	got, err := mgr.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, got, 1)
	assert.Equal(t, 1, backend.listMyCalls)
	assert.Equal(t, 0, backend.listAllCalls)
}

func TestList_AdminFetchesGlobalSet(t *testing.T) {
	backend := &mockBackend{orders: []domain.Order{{ID: 1}, {ID: 2}}}
	mgr := NewManager(backend, fakeSession{subject: "A1", role: auth.RoleAdmin})

	got, err := mgr.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, 1, backend.listAllCalls)
	assert.Equal(t, 0, backend.listMyCalls)
}

func TestCancel_SendsRequestOnlyWhileCreated(t *testing.T) {
	backend := &mockBackend{}
	mgr := NewManager(backend, fakeSession{subject: "U1", role: auth.RoleClient})

	err := mgr.Cancel(context.Background(), domain.Order{ID: 5, Status: domain.OrderStatusCreated})
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, backend.cancels())
}

func TestCancel_RejectedLocallyForTerminalStatus(t *testing.T) {
	backend := &mockBackend{}
	mgr := NewManager(backend, fakeSession{subject: "U1", role: auth.RoleClient})

	for _, status := range []domain.OrderStatus{domain.OrderStatusCanceled, domain.OrderStatusCompleted} {
		err := mgr.Cancel(context.Background(), domain.Order{ID: 5, Status: status})
		assert.ErrorIs(t, err, ErrNotCancelable, "status %q", status)
	}
	assert.Empty(t, backend.cancels(), "no request may be sent")
}

func TestCancel_RejectedLocallyForAdmin(t *testing.T) {
	backend := &mockBackend{}
	mgr := NewManager(backend, fakeSession{subject: "A1", role: auth.RoleAdmin})

	err := mgr.Cancel(context.Background(), domain.Order{ID: 5, Status: domain.OrderStatusCreated})
	assert.ErrorIs(t, err, ErrAdminCancel)
	assert.Empty(t, backend.cancels())
}

func TestCancel_DoubleClickIsRejectedWhileInFlight(t *testing.T) {
	backend := &mockBackend{
		blockCancel:   make(chan struct{}),
		cancelStarted: make(chan struct{}),
	}
	mgr := NewManager(backend, fakeSession{subject: "U1", role: auth.RoleClient})
	order := domain.Order{ID: 5, Status: domain.OrderStatusCreated}

	started := backend.cancelStarted
	done := make(chan error, 1)
	go func() {
		done <- mgr.Cancel(context.Background(), order)
	}()
	<-started

	err := mgr.Cancel(context.Background(), order)
	assert.ErrorIs(t, err, ErrCancelInFlight)

	close(backend.blockCancel)
	require.NoError(t, <-done)
	assert.Equal(t, []int64{5}, backend.cancels())
}

func TestCancel_BackendFailureIsSurfaced(t *testing.T) {
	backendErr := errors.New("cannot cancel")
	backend := &mockBackend{cancelErr: backendErr}
	mgr := NewManager(backend, fakeSession{subject: "U1", role: auth.RoleClient})

	err := mgr.Cancel(context.Background(), domain.Order{ID: 5, Status: domain.OrderStatusCreated})
	assert.ErrorIs(t, err, backendErr)
}

func TestStats_AdminJoinsBothGlobalReads(t *testing.T) {
	backend := &mockBackend{
		productStats: domain.ProductStats{LowStock: 3},
		orderStats:   domain.OrderStats{TotalRevenue: 1200, TotalOrders: 8},
	}
	mgr := NewManager(backend, fakeSession{subject: "A1", role: auth.RoleAdmin})

	stats, err := mgr.Stats(context.Background())
	require.NoError(t, err)

	require.NotNil(t, stats.Admin)
	assert.Nil(t, stats.Customer)
	assert.Equal(t, 3, stats.Admin.Products.LowStock)
	assert.Equal(t, float64(1200), stats.Admin.Orders.TotalRevenue)
	assert.Equal(t, int64(8), stats.Admin.Orders.TotalOrders)
}

func TestStats_AdminJoinFailsAsAUnit(t *testing.T) {
	legErr := errors.New("stats endpoint down")
	for name, backend := range map[string]*mockBackend{
		"product leg fails": {prodStatsErr: legErr, orderStats: domain.OrderStats{TotalOrders: 8}},
		"order leg fails":   {orderStatsErr: legErr, productStats: domain.ProductStats{LowStock: 3}},
	} {
		t.Run(name, func(t *testing.T) {
			mgr := NewManager(backend, fakeSession{subject: "A1", role: auth.RoleAdmin})
			_, err := mgr.Stats(context.Background())
			assert.ErrorIs(t, err, legErr)
		})
	}
}

func TestStats_ClientGetsPersonalShape(t *testing.T) {
	backend := &mockBackend{customerStats: domain.CustomerStats{Spent: 300, Count: 4, Active: 1}}
	mgr := NewManager(backend, fakeSession{subject: "U1", role: auth.RoleClient})

	stats, err := mgr.Stats(context.Background())
	require.NoError(t, err)

	require.NotNil(t, stats.Customer)
	assert.Nil(t, stats.Admin)
	assert.Equal(t, float64(300), stats.Customer.Spent)
	assert.Equal(t, int64(4), stats.Customer.Count)
	assert.Equal(t, int64(1), stats.Customer.Active)
}
