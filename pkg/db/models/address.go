package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a customer shipping address. Checkout looks for an existing
// row matching cep+numero before inserting a new one.
type Address struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID   uuid.UUID `gorm:"column:cliente_id;type:uuid;not null;index"`
	CEP          string    `gorm:"column:cep;not null"`
	Street       string    `gorm:"column:logradouro;not null"`
	Number       string    `gorm:"column:numero;not null"`
	Complement   *string   `gorm:"column:complemento"`
	Neighborhood string    `gorm:"column:bairro;not null"`
	City         string    `gorm:"column:cidade;not null"`
	State        string    `gorm:"column:uf;not null"`
	IsDefault    bool      `gorm:"column:padrao;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Address) TableName() string { return "enderecos" }
