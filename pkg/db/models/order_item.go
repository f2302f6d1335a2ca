package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a frozen snapshot of a cart line at checkout time. Product
// name and unit price are copied so catalog edits never mutate past
// orders.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:pedido_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:produto_id;type:uuid;not null"`
	ProductName string          `gorm:"column:nome_produto;not null"`
	Size        *string         `gorm:"column:tamanho"`
	Color       *string         `gorm:"column:cor"`
	Material    *string         `gorm:"column:material"`
	ImageURL    *string         `gorm:"column:imagem_url"`
	Quantity    int             `gorm:"column:quantidade;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:preco_unitario;type:numeric(12,2);not null"`
	LineTotal   decimal.Decimal `gorm:"column:total_linha;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (OrderItem) TableName() string { return "itens_pedido" }
