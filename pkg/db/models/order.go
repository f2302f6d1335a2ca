package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/types"
)

// Order is a placed order. OrderNumber comes from a database sequence so
// concurrent checkouts never collide. The shipping address is snapshotted
// as jsonb; later edits to the customer's address book do not rewrite
// order history.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string                `gorm:"column:numero_pedido;not null;uniqueIndex"`
	CustomerID      uuid.UUID             `gorm:"column:cliente_id;type:uuid;not null;index"`
	Customer        *Customer             `gorm:"foreignKey:CustomerID"`
	Status          enums.OrderStatus     `gorm:"column:status;not null;default:pendente"`
	PaymentMethod   enums.PaymentMethod   `gorm:"column:forma_pagamento;not null"`
	ShippingAddress types.AddressSnapshot `gorm:"column:endereco_entrega;type:jsonb;serializer:json"`
	Subtotal        decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount        decimal.Decimal       `gorm:"column:desconto;type:numeric(12,2);not null;default:0"`
	ShippingFee     decimal.Decimal       `gorm:"column:frete;type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null"`
	CouponID        *uuid.UUID            `gorm:"column:cupom_id;type:uuid"`
	CouponCode      *string               `gorm:"column:cupom_codigo"`
	Notes           *string               `gorm:"column:observacoes"`
	PaymentRef      *string               `gorm:"column:referencia_pagamento"`
	PaymentURL      *string               `gorm:"column:url_pagamento"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "pedidos" }

// ItemCount sums the quantities across all lines.
func (o *Order) ItemCount() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
