package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/pagination"
)

// MovementInput carries the data for a manual ledger entry. Unit value and
// supplier name document purchase entradas; both are optional.
type MovementInput struct {
	ProductID    uuid.UUID
	Type         enums.MovementType
	Quantity     int
	Reason       *string
	UnitValue    *decimal.Decimal
	SupplierName *string
	ActorID      *uuid.UUID
}

// Service exposes the stock ledger operations.
type Service interface {
	RegisterMovement(ctx context.Context, input MovementInput) (*models.InventoryMovement, error)
	RecordOrderMovements(ctx context.Context, tx *gorm.DB, movements []models.InventoryMovement) error
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.InventoryMovement, string, error)
	StockLevel(ctx context.Context, productID uuid.UUID) (int, error)
	StockLevels(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type productChecker interface {
	Exists(ctx context.Context, productID uuid.UUID) (bool, error)
}

type service struct {
	repo     Repository
	products productChecker
}

// NewService builds the inventory service.
func NewService(repo Repository, products productChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product checker required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) RegisterMovement(ctx context.Context, input MovementInput) (*models.InventoryMovement, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tipo de movimentação inválido")
	}
	// Entrada and saida are strictly positive; ajuste carries its own sign
	// but zero is meaningless.
	if input.Quantity == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantidade não pode ser zero")
	}
	if input.Type != enums.MovementTypeAjuste && input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantidade deve ser positiva")
	}

	exists, err := s.products.Exists(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "produto não encontrado")
	}

	if input.Type == enums.MovementTypeSaida {
		level, err := s.repo.StockLevel(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		if level < input.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "estoque insuficiente").
				WithDetails(map[string]any{"disponivel": level, "solicitado": input.Quantity})
		}
	}

	movement := &models.InventoryMovement{
		ProductID:    input.ProductID,
		Type:         input.Type,
		Quantity:     input.Quantity,
		Reason:       input.Reason,
		UnitValue:    input.UnitValue,
		SupplierName: input.SupplierName,
		ActorID:      input.ActorID,
	}
	if input.UnitValue != nil {
		if input.UnitValue.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor unitário não pode ser negativo")
		}
		qty := input.Quantity
		if qty < 0 {
			qty = -qty
		}
		total := input.UnitValue.Mul(decimal.NewFromInt(int64(qty)))
		movement.TotalValue = &total
	}
	return s.repo.Insert(ctx, movement)
}

// RecordOrderMovements writes checkout or cancellation movements inside
// the caller's transaction.
func (s *service) RecordOrderMovements(ctx context.Context, tx *gorm.DB, movements []models.InventoryMovement) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	return s.repo.WithTx(tx).InsertBatch(ctx, movements)
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.InventoryMovement, string, error) {
	return s.repo.ListByProduct(ctx, productID, params)
}

func (s *service) StockLevel(ctx context.Context, productID uuid.UUID) (int, error) {
	return s.repo.StockLevel(ctx, productID)
}

func (s *service) StockLevels(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return s.repo.StockLevels(ctx, productIDs)
}
