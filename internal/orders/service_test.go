package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/outbox"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/pagination"
)

type stubOrderRepo struct {
	orders  map[uuid.UUID]*models.Order
	updates []map[string]any
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (r *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *order
	return &cloned, nil
}

func (r *stubOrderRepo) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	for _, order := range r.orders {
		if order.OrderNumber == number {
			cloned := *order
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range r.orders {
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		if filters.CustomerID != nil && order.CustomerID != *filters.CustomerID {
			continue
		}
		rows = append(rows, *order)
	}
	return rows, "", nil
}

func (r *stubOrderRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	order, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.updates = append(r.updates, updates)
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		order.Status = status
	}
	if ref, ok := updates["referencia_pagamento"].(string); ok {
		order.PaymentRef = &ref
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubStockRecorder struct {
	movements []models.InventoryMovement
}

func (s *stubStockRecorder) RecordOrderMovements(ctx context.Context, tx *gorm.DB, movements []models.InventoryMovement) error {
	s.movements = append(s.movements, movements...)
	return nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type orderFixture struct {
	repo   *stubOrderRepo
	stock  *stubStockRecorder
	events *stubEmitter
	svc    Service
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		repo:   newStubOrderRepo(),
		stock:  &stubStockRecorder{},
		events: &stubEmitter{},
	}
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(f.repo, stubTxRunner{}, f.stock, f.events, logg)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *orderFixture) seedOrder(status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: "SB000077",
		CustomerID:  uuid.New(),
		Status:      status,
		Total:       decimal.RequireFromString("199.90"),
		CreatedAt:   time.Now().Add(-time.Hour),
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Saia Plissada", Quantity: 2, UnitPrice: decimal.RequireFromString("79.90")},
			{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Cinto Fino", Quantity: 1, UnitPrice: decimal.RequireFromString("40.10")},
		},
	}
	f.repo.orders[order.ID] = order
	return order
}

func TestCancelReturnsStockAndEmitsEvent(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(enums.OrderStatusPending)
	actor := uuid.New()

	canceled, err := f.svc.Cancel(context.Background(), order.ID, &actor)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCanceled, canceled.Status)

	require.Len(t, f.stock.movements, 2)
	for _, movement := range f.stock.movements {
		require.Equal(t, enums.MovementTypeEntrada, movement.Type)
		require.Equal(t, order.ID, *movement.OrderID)
		require.Equal(t, actor, *movement.ActorID)
	}
	require.Equal(t, 2, f.stock.movements[0].Quantity)

	require.Len(t, f.events.events, 1)
	require.Equal(t, enums.EventOrderCanceled, f.events.events[0].EventType)
	require.Equal(t, actor, f.events.events[0].Actor.UserID)
}

func TestCancelPaidOrderAllowed(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(enums.OrderStatusPaid)

	canceled, err := f.svc.Cancel(context.Background(), order.ID, nil)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCanceled, canceled.Status)
	require.Nil(t, f.events.events[0].Actor)
}

func TestCancelShippedOrderRefused(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(enums.OrderStatusShipped)

	_, err := f.svc.Cancel(context.Background(), order.ID, nil)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	require.Empty(t, f.stock.movements)
	require.Empty(t, f.events.events)
}

func TestCancelUnknownOrder(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Cancel(context.Background(), uuid.New(), nil)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestConfirmPaymentTransitionsToPaid(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(enums.OrderStatusPending)
	ref := "mp-789"

	paid, err := f.svc.ConfirmPayment(context.Background(), order.OrderNumber, &ref)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPaid, paid.Status)
	require.Equal(t, "mp-789", *paid.PaymentRef)

	require.Len(t, f.events.events, 1)
	require.Equal(t, enums.EventOrderPaid, f.events.events[0].EventType)
}

func TestConfirmPaymentIsIdempotentForPaidOrders(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(enums.OrderStatusPaid)

	paid, err := f.svc.ConfirmPayment(context.Background(), order.OrderNumber, nil)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPaid, paid.Status)
	require.Empty(t, f.events.events)
	require.Empty(t, f.repo.updates)
}

func TestConfirmPaymentRefusesCanceledOrder(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(enums.OrderStatusCanceled)

	_, err := f.svc.ConfirmPayment(context.Background(), order.OrderNumber, nil)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestListByCustomerFilters(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(enums.OrderStatusPending)
	other := f.seedOrder(enums.OrderStatusPending)
	other.CustomerID = uuid.New()

	rows, next, err := f.svc.ListByCustomer(context.Background(), order.CustomerID, pagination.Params{})
	require.NoError(t, err)
	require.Empty(t, next)
	require.Len(t, rows, 1)
	require.Equal(t, order.ID, rows[0].ID)
}
