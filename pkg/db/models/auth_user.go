package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthUser is a storefront credential row. Customer profiles link to it
// through clientes.auth_user_id; back-office accounts live in
// usuarios_admin and are resolved separately.
type AuthUser struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:senha_hash;not null" json:"-"`
	IsActive     bool       `gorm:"column:ativo;not null;default:true"`
	LastLoginAt  *time.Time `gorm:"column:ultimo_login"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (AuthUser) TableName() string { return "usuarios" }
