package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/outbox"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/pagination"
)

// Service exposes order queries and the admin status transitions.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, string, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*models.Order, error)
	ConfirmPayment(ctx context.Context, orderNumber string, paymentRef *string) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockRecorder interface {
	RecordOrderMovements(ctx context.Context, tx *gorm.DB, movements []models.InventoryMovement) error
}

type eventEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo   Repository
	dbc    txRunner
	stock  stockRecorder
	events eventEmitter
	logg   *logger.Logger
	now    func() time.Time
}

// NewService constructs the order service.
func NewService(repo Repository, dbc txRunner, stock stockRecorder, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbc == nil {
		return nil, fmt.Errorf("db client required")
	}
	if stock == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbc: dbc, stock: stock, events: events, logg: logg, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, string, error) {
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return rows, next, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	return s.List(ctx, params, Filters{CustomerID: &customerID})
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

func (s *service) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	order, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

type orderStatusPayload struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	CustomerID  uuid.UUID `json:"customerId"`
	Status      string    `json:"status"`
}

// Cancel moves the order to cancelado and returns every sold unit to
// stock as entrada movements in the same transaction.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}
		if !loaded.Status.CanCancel() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pedido não pode ser cancelado").
				WithDetails(map[string]any{"status": loaded.Status.String()})
		}

		if err := repo.Update(ctx, loaded.ID, map[string]any{"status": enums.OrderStatusCanceled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		loaded.Status = enums.OrderStatusCanceled

		movements := make([]models.InventoryMovement, 0, len(loaded.Items))
		reason := "cancelamento " + loaded.OrderNumber
		for _, line := range loaded.Items {
			movements = append(movements, models.InventoryMovement{
				ProductID: line.ProductID,
				Type:      enums.MovementTypeEntrada,
				Quantity:  line.Quantity,
				Reason:    &reason,
				OrderID:   &loaded.ID,
				ActorID:   actorID,
			})
		}
		if err := s.stock.RecordOrderMovements(ctx, tx, movements); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record movements")
		}

		order = loaded
		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   loaded.ID,
			Actor:         actorRef(actorID),
			Data: orderStatusPayload{
				OrderID:     loaded.ID,
				OrderNumber: loaded.OrderNumber,
				CustomerID:  loaded.CustomerID,
				Status:      loaded.Status.String(),
			},
			OccurredAt: s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
	})
	s.logg.Info(logCtx, "order canceled")
	return order, nil
}

// ConfirmPayment marks a pending order as pago. The payment webhook only
// knows the external reference, so lookup is by order number.
func (s *service) ConfirmPayment(ctx context.Context, orderNumber string, paymentRef *string) (*models.Order, error) {
	var order *models.Order
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindByNumber(ctx, orderNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}
		if loaded.Status == enums.OrderStatusPaid {
			order = loaded
			return nil
		}
		if loaded.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pedido não está aguardando pagamento").
				WithDetails(map[string]any{"status": loaded.Status.String()})
		}

		updates := map[string]any{"status": enums.OrderStatusPaid}
		if paymentRef != nil {
			updates["referencia_pagamento"] = *paymentRef
		}
		if err := repo.Update(ctx, loaded.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		loaded.Status = enums.OrderStatusPaid
		if paymentRef != nil {
			loaded.PaymentRef = paymentRef
		}

		order = loaded
		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   loaded.ID,
			Data: orderStatusPayload{
				OrderID:     loaded.ID,
				OrderNumber: loaded.OrderNumber,
				CustomerID:  loaded.CustomerID,
				Status:      loaded.Status.String(),
			},
			OccurredAt: s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithField(ctx, "order_number", order.OrderNumber)
	s.logg.Info(logCtx, "order payment confirmed")
	return order, nil
}

func actorRef(actorID *uuid.UUID) *outbox.ActorRef {
	if actorID == nil {
		return nil
	}
	return &outbox.ActorRef{UserID: *actorID}
}
