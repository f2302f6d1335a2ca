package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line in a cart. Lines are keyed by product plus the
// chosen size and color; adding the same combination again merges into
// the existing line rather than appending a duplicate.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID       `gorm:"column:carrinho_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:produto_id;type:uuid;not null"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
	Size      *string         `gorm:"column:tamanho"`
	Color     *string         `gorm:"column:cor"`
	Material  *string         `gorm:"column:material"`
	ImageURL  *string         `gorm:"column:imagem_url"`
	Quantity  int             `gorm:"column:quantidade;not null"`
	UnitPrice decimal.Decimal `gorm:"column:preco_unitario;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartItem) TableName() string { return "itens_carrinho" }

// SameVariant reports whether the line refers to the same product, size
// and color combination.
func (i *CartItem) SameVariant(productID uuid.UUID, size, color *string) bool {
	return i.ProductID == productID && strPtrEqual(i.Size, size) && strPtrEqual(i.Color, color)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
