package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
)

// AdminUser is a back-office account. The email is the lookup key used by
// the admin-status check; PasswordHash holds an argon2id digest and is
// never serialized.
type AdminUser struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string     `gorm:"column:nome;not null"`
	Email        string     `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:senha_hash;not null" json:"-"`
	Role         enums.Role `gorm:"column:papel;not null;default:atendente"`
	IsActive     bool       `gorm:"column:ativo;not null;default:true"`
	LastLoginAt  *time.Time `gorm:"column:ultimo_login"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (AdminUser) TableName() string { return "usuarios_admin" }
