package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"app/internal/domain/model"
	"app/internal/gateway"
	repo "app/internal/repository"
)

// =====================
// Mocks
// =====================

type ShippingGwMock struct{ mock.Mock }

func (m *ShippingGwMock) CheckServiceability(ctx context.Context, postalCode string) (bool, error) {
	args := m.Called(ctx, postalCode)
	return args.Bool(0), args.Error(1)
}

func (m *ShippingGwMock) ListCouriers(ctx context.Context) ([]model.Courier, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Courier)
	return items, args.Error(1)
}

func (m *ShippingGwMock) QuoteRate(ctx context.Context, courierID int64, postalCode string, weightGrams int64) (gateway.RateQuote, error) {
	args := m.Called(ctx, courierID, postalCode, weightGrams)
	q, _ := args.Get(0).(gateway.RateQuote)
	return q, args.Error(1)
}

type CartGwMock struct{ mock.Mock }

func (m *CartGwMock) GetCart(ctx context.Context, token string) (gateway.Cart, error) {
	args := m.Called(ctx, token)
	cart, _ := args.Get(0).(gateway.Cart)
	return cart, args.Error(1)
}

type OrderGwMock struct{ mock.Mock }

func (m *OrderGwMock) CreateOrder(ctx context.Context, shippingAddress string, method model.PaymentMethod, amount int64, token string) (gateway.CreatedOrder, error) {
	args := m.Called(ctx, shippingAddress, method, amount, token)
	o, _ := args.Get(0).(gateway.CreatedOrder)
	return o, args.Error(1)
}

type PaymentGwMock struct{ mock.Mock }

func (m *PaymentGwMock) CreateSession(ctx context.Context, orderID string, amount int64) (gateway.PaymentSessionData, error) {
	args := m.Called(ctx, orderID, amount)
	d, _ := args.Get(0).(gateway.PaymentSessionData)
	return d, args.Error(1)
}

// インメモリのセッションリポジトリ
type memSessions struct {
	mu sync.Mutex
	m  map[string]model.CheckoutSession
}

func newMemSessions() *memSessions {
	return &memSessions{m: map[string]model.CheckoutSession{}}
}

func (r *memSessions) Create(ctx context.Context, s model.CheckoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[s.ID] = s
	return nil
}

func (r *memSessions) FindByID(ctx context.Context, id string) (model.CheckoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return model.CheckoutSession{}, repo.ErrNotFound
	}
	return s, nil
}

func (r *memSessions) Save(ctx context.Context, s model.CheckoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[s.ID] = s
	return nil
}

func (r *memSessions) UpdateIfGeneration(ctx context.Context, id string, generation int64, apply func(*model.CheckoutSession)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return false, repo.ErrNotFound
	}
	if s.PostalGeneration != generation {
		return false, nil
	}
	apply(&s)
	r.m[id] = s
	return true, nil
}

func (r *memSessions) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

// 発火した通知を記録するバス
type busRecorder struct {
	mu    sync.Mutex
	names []string
}

func (b *busRecorder) Publish(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.names = append(b.names, name)
}

func (b *busRecorder) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.names...)
}
