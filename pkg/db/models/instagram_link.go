package models

import (
	"time"

	"github.com/google/uuid"
)

// InstagramLink is a curated post shown in the storefront feed section.
type InstagramLink struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PostURL   string    `gorm:"column:url_post;not null"`
	ImageURL  *string   `gorm:"column:imagem_url"`
	Caption   *string   `gorm:"column:legenda"`
	Position  int       `gorm:"column:ordem;not null;default:0"`
	IsActive  bool      `gorm:"column:ativo;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (InstagramLink) TableName() string { return "link_instagram" }
