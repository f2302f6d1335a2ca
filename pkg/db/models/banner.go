package models

import (
	"time"

	"github.com/google/uuid"
)

// Banner is a storefront hero banner ordered by Position.
type Banner struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string    `gorm:"column:titulo;not null"`
	Subtitle  *string   `gorm:"column:subtitulo"`
	ImageURL  string    `gorm:"column:imagem_url;not null"`
	LinkURL   *string   `gorm:"column:link_url"`
	Position  int       `gorm:"column:ordem;not null;default:0"`
	IsActive  bool      `gorm:"column:ativo;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Banner) TableName() string { return "banners" }
