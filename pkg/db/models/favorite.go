package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks a product on a customer's wishlist. One row per
// customer/product pair.
type Favorite struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:produto_id;type:uuid;not null;uniqueIndex:idx_favoritos_cliente_produto"`
	CustomerID uuid.UUID `gorm:"column:cliente_id;type:uuid;not null;uniqueIndex:idx_favoritos_cliente_produto"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Favorite) TableName() string { return "favoritos" }
