package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
)

// Coupon is a discount code. Percentage coupons store the percent in
// Value; fixed coupons store the currency amount.
type Coupon struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string           `gorm:"column:codigo;not null;uniqueIndex"`
	Type        enums.CouponType `gorm:"column:tipo;not null"`
	Value       decimal.Decimal  `gorm:"column:valor;type:numeric(12,2);not null"`
	MinSubtotal *decimal.Decimal `gorm:"column:valor_minimo;type:numeric(12,2)"`
	MaxUses     *int             `gorm:"column:usos_maximos"`
	UsedCount   int              `gorm:"column:usos;not null;default:0"`
	ExpiresAt   *time.Time       `gorm:"column:validade"`
	IsActive    bool             `gorm:"column:ativo;not null;default:true"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Coupon) TableName() string { return "cupons" }

// Discount computes the discount amount for a subtotal, capped at the
// subtotal itself.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.Type {
	case enums.CouponTypePercentage:
		d = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(2)
	case enums.CouponTypeFixed:
		d = c.Value
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}
