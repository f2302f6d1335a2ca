package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
)

// InventoryMovement is an append-only ledger entry. Stock on hand for a
// product is the signed sum of its movements; rows are never updated or
// deleted, and corrections are recorded as ajuste entries.
type InventoryMovement struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID          `gorm:"column:produto_id;type:uuid;not null;index"`
	Type         enums.MovementType `gorm:"column:tipo;not null"`
	Quantity     int                `gorm:"column:quantidade;not null"`
	Reason       *string            `gorm:"column:motivo"`
	UnitValue    *decimal.Decimal   `gorm:"column:valor_unitario;type:numeric(12,2)"`
	TotalValue   *decimal.Decimal   `gorm:"column:valor_total;type:numeric(12,2)"`
	SupplierName *string            `gorm:"column:fornecedor_nome"`
	OrderID      *uuid.UUID         `gorm:"column:pedido_id;type:uuid;index"`
	ActorID      *uuid.UUID         `gorm:"column:usuario_id;type:uuid"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (InventoryMovement) TableName() string { return "movimentacoes_estoque" }

// SignedQuantity applies the movement direction to the quantity.
func (m *InventoryMovement) SignedQuantity() int {
	return m.Type.Sign() * m.Quantity
}
