package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a catalog item. Variant axes (sizes, colors, materials) are
// flat string arrays; a cart line pins one value from each axis it uses.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string           `gorm:"column:nome;not null"`
	Description *string          `gorm:"column:descricao"`
	Price       decimal.Decimal  `gorm:"column:preco;type:numeric(12,2);not null"`
	PromoPrice  *decimal.Decimal `gorm:"column:preco_promocional;type:numeric(12,2)"`
	CategoryID  *uuid.UUID       `gorm:"column:categoria_id;type:uuid;index"`
	Category    *Category        `gorm:"foreignKey:CategoryID"`
	SupplierID  *uuid.UUID       `gorm:"column:fornecedor_id;type:uuid;index"`
	Supplier    *Supplier        `gorm:"foreignKey:SupplierID"`
	Sizes       pq.StringArray   `gorm:"column:tamanhos;type:text[]"`
	Colors      pq.StringArray   `gorm:"column:cores;type:text[]"`
	Materials   pq.StringArray   `gorm:"column:materiais;type:text[]"`
	ImageURLs   pq.StringArray   `gorm:"column:imagens;type:text[]"`
	IsActive    bool             `gorm:"column:ativo;not null;default:true"`
	IsFeatured  bool             `gorm:"column:destaque;not null;default:false"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "produtos" }

// EffectivePrice returns the promotional price when one is set and lower
// than the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.PromoPrice != nil && p.PromoPrice.GreaterThan(decimal.Zero) && p.PromoPrice.LessThan(p.Price) {
		return *p.PromoPrice
	}
	return p.Price
}
