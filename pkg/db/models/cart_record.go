package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
)

// CartRecord is a persisted cart. Each customer has at most one active
// cart; checkout flips it to converted instead of deleting it, which
// leaves a trail and makes double submits detectable.
type CartRecord struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID        `gorm:"column:cliente_id;type:uuid;not null;index"`
	Status     enums.CartStatus `gorm:"column:status;not null;default:active"`
	Items      []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartRecord) TableName() string { return "carrinhos" }

// ItemCount sums the quantities across all lines.
func (c *CartRecord) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}
