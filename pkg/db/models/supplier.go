package models

import (
	"time"

	"github.com/google/uuid"
)

type Supplier struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:nome;not null"`
	Contact   *string   `gorm:"column:contato"`
	Phone     *string   `gorm:"column:telefone"`
	Email     *string   `gorm:"column:email"`
	CNPJ      *string   `gorm:"column:cnpj"`
	Notes     *string   `gorm:"column:observacoes"`
	IsActive  bool      `gorm:"column:ativo;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Supplier) TableName() string { return "fornecedores" }
