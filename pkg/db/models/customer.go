package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the storefront profile, optionally linked to an auth user.
// Guest checkouts create rows with no AuthUserID; the resolve-or-create
// path later links them by email.
type Customer struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuthUserID *uuid.UUID `gorm:"column:auth_user_id;type:uuid;uniqueIndex"`
	Name       string     `gorm:"column:nome;not null"`
	Email      string     `gorm:"column:email;not null;index"`
	Phone      *string    `gorm:"column:telefone"`
	Document   *string    `gorm:"column:cpf"`
	IsActive   bool       `gorm:"column:ativo;not null;default:true"`
	Addresses  []Address  `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy table naming.
func (Customer) TableName() string { return "clientes" }
