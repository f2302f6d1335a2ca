package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating on a product, 1 to 5 stars with an
// optional comment. Deleting a product removes its reviews in the
// same transaction.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:produto_id;type:uuid;not null;index"`
	CustomerID uuid.UUID `gorm:"column:cliente_id;type:uuid;not null;index"`
	Rating     int       `gorm:"column:nota;not null"`
	Comment    *string   `gorm:"column:comentario"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Review) TableName() string { return "avaliacoes" }
