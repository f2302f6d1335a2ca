package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
)

// SupplierInput holds the payload for supplier writes.
type SupplierInput struct {
	Name     string
	Contact  *string
	Phone    *string
	Email    *string
	CNPJ     *string
	Notes    *string
	IsActive bool
}

// Service exposes supplier management operations.
type Service interface {
	Create(ctx context.Context, input SupplierInput) (*models.Supplier, error)
	Update(ctx context.Context, supplierID uuid.UUID, input SupplierInput) (*models.Supplier, error)
	Get(ctx context.Context, supplierID uuid.UUID) (*models.Supplier, error)
	List(ctx context.Context, onlyActive bool) ([]models.Supplier, error)
	Delete(ctx context.Context, supplierID uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input SupplierInput) (*models.Supplier, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome do fornecedor é obrigatório")
	}
	supplier := &models.Supplier{
		Name:     strings.TrimSpace(input.Name),
		Contact:  input.Contact,
		Phone:    input.Phone,
		Email:    input.Email,
		CNPJ:     input.CNPJ,
		Notes:    input.Notes,
		IsActive: input.IsActive,
	}
	created, err := s.repo.Create(ctx, supplier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert supplier")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, supplierID uuid.UUID, input SupplierInput) (*models.Supplier, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome do fornecedor é obrigatório")
	}
	if _, err := s.load(ctx, supplierID); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"nome":        strings.TrimSpace(input.Name),
		"contato":     input.Contact,
		"telefone":    input.Phone,
		"email":       input.Email,
		"cnpj":        input.CNPJ,
		"observacoes": input.Notes,
		"ativo":       input.IsActive,
	}
	if err := s.repo.Update(ctx, supplierID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update supplier")
	}
	return s.load(ctx, supplierID)
}

func (s *service) Get(ctx context.Context, supplierID uuid.UUID) (*models.Supplier, error) {
	return s.load(ctx, supplierID)
}

func (s *service) List(ctx context.Context, onlyActive bool) ([]models.Supplier, error) {
	rows, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list suppliers")
	}
	return rows, nil
}

// Delete removes a supplier. Suppliers still referenced by products are
// deactivated instead so product rows keep their provenance.
func (s *service) Delete(ctx context.Context, supplierID uuid.UUID) error {
	if _, err := s.load(ctx, supplierID); err != nil {
		return err
	}
	count, err := s.repo.CountProducts(ctx, supplierID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count supplier products")
	}
	if count > 0 {
		if err := s.repo.Update(ctx, supplierID, map[string]any{"ativo": false}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate supplier")
		}
		return nil
	}
	if err := s.repo.Delete(ctx, supplierID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete supplier")
	}
	return nil
}

func (s *service) load(ctx context.Context, supplierID uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fornecedor não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load supplier")
	}
	return supplier, nil
}
