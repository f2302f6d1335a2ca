package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
)

// Repository persists orders produced by checkout. Order creation always
// happens inside the caller's transaction; the payment link update runs
// after commit and therefore takes the pooled connection.
type Repository interface {
	NextOrderNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	InsertOrder(ctx context.Context, tx *gorm.DB, order *models.Order) error
	SetPaymentLink(ctx context.Context, orderID uuid.UUID, ref, url string) error
}

type repository struct {
	conn *gorm.DB
}

// NewRepository constructs the checkout repository.
func NewRepository(conn *gorm.DB) (Repository, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &repository{conn: conn}, nil
}

func (r *repository) NextOrderNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction required")
	}
	var next int64
	if err := tx.WithContext(ctx).Raw("SELECT nextval('pedidos_numero_seq')").Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repository) InsertOrder(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	return tx.WithContext(ctx).Create(order).Error
}

func (r *repository) SetPaymentLink(ctx context.Context, orderID uuid.UUID, ref, url string) error {
	return r.conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"referencia_pagamento": ref,
			"url_pagamento":        url,
		}).Error
}
