package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/pagination"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/types"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/viacep"
)

// CustomerInput identifies a buyer at checkout or registration.
type CustomerInput struct {
	Name     string
	Email    string
	Phone    *string
	Document *string
}

// AddressInput holds a shipping address payload.
type AddressInput struct {
	CEP          string
	Street       string
	Number       string
	Complement   *string
	Neighborhood string
	City         string
	State        string
	IsDefault    bool
}

// Service exposes customer profile, address book, and CEP operations.
type Service interface {
	ResolveOrCreateTx(ctx context.Context, tx *gorm.DB, input CustomerInput, authUserID *uuid.UUID) (*models.Customer, error)
	FindOrCreateAddressTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, input AddressInput) (*models.Address, error)

	Get(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	GetByAuthUser(ctx context.Context, authUserID uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customerID uuid.UUID, input CustomerInput) (*models.Customer, error)
	Deactivate(ctx context.Context, customerID uuid.UUID) error
	List(ctx context.Context, params pagination.Params, search string) ([]models.Customer, string, error)

	AddAddress(ctx context.Context, customerID uuid.UUID, input AddressInput) (*models.Address, error)
	ListAddresses(ctx context.Context, customerID uuid.UUID) ([]models.Address, error)
	DeleteAddress(ctx context.Context, customerID, addressID uuid.UUID) error

	LookupCEP(ctx context.Context, cep string) (*types.AddressSnapshot, error)
}

type cepResolver interface {
	Lookup(ctx context.Context, cep string) (*types.AddressSnapshot, error)
}

type service struct {
	repo Repository
	cep  cepResolver
}

// NewService constructs the customer service. The CEP resolver may be nil
// when address prefill is disabled.
func NewService(repo Repository, cep cepResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo, cep: cep}, nil
}

// ResolveOrCreateTx finds a customer by auth user, then by email, creating
// the row when neither matches. An authenticated buyer whose email row was
// created by a guest checkout gets linked on the spot. The email fallback
// only matches unlinked rows: a row already tied to another account must
// never be handed to a different principal on the strength of a
// body-supplied email.
func (s *service) ResolveOrCreateTx(ctx context.Context, tx *gorm.DB, input CustomerInput, authUserID *uuid.UUID) (*models.Customer, error) {
	if err := validateCustomer(input); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)

	if authUserID != nil {
		customer, err := repo.FindByAuthUserID(ctx, *authUserID)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer by auth user")
		}
	}

	customer, err := repo.FindByEmail(ctx, input.Email)
	if err == nil && customer.AuthUserID == nil {
		if authUserID != nil {
			if err := repo.Update(ctx, customer.ID, map[string]any{"auth_user_id": *authUserID}); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: link customer")
			}
			customer.AuthUserID = authUserID
		}
		return customer, nil
	}
	if err == nil && customer.AuthUserID != nil && authUserID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "email já vinculado a uma conta, faça login para continuar")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer by email")
	}

	created, err := repo.Create(ctx, &models.Customer{
		AuthUserID: authUserID,
		Name:       strings.TrimSpace(input.Name),
		Email:      normalizeEmail(input.Email),
		Phone:      input.Phone,
		Document:   input.Document,
		IsActive:   true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert customer")
	}
	return created, nil
}

// FindOrCreateAddressTx reuses an existing address matching cep+numero so
// repeat checkouts do not pile up duplicate rows.
func (s *service) FindOrCreateAddressTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, input AddressInput) (*models.Address, error) {
	if err := validateAddress(input); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)

	cep := viacep.NormalizeCEP(input.CEP)
	existing, err := repo.FindAddress(ctx, customerID, cep, strings.TrimSpace(input.Number))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find address")
	}

	created, err := repo.CreateAddress(ctx, &models.Address{
		CustomerID:   customerID,
		CEP:          cep,
		Street:       strings.TrimSpace(input.Street),
		Number:       strings.TrimSpace(input.Number),
		Complement:   input.Complement,
		Neighborhood: strings.TrimSpace(input.Neighborhood),
		City:         strings.TrimSpace(input.City),
		State:        strings.ToUpper(strings.TrimSpace(input.State)),
		IsDefault:    input.IsDefault,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert address")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	return s.load(ctx, customerID)
}

func (s *service) GetByAuthUser(ctx context.Context, authUserID uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByAuthUserID(ctx, authUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cliente não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	return customer, nil
}

func (s *service) Update(ctx context.Context, customerID uuid.UUID, input CustomerInput) (*models.Customer, error) {
	if err := validateCustomer(input); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, customerID); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"nome":     strings.TrimSpace(input.Name),
		"email":    normalizeEmail(input.Email),
		"telefone": input.Phone,
		"cpf":      input.Document,
	}
	if err := s.repo.Update(ctx, customerID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
	}
	return s.load(ctx, customerID)
}

// Deactivate soft-disables a customer account. Orders and addresses stay
// in place for history.
func (s *service) Deactivate(ctx context.Context, customerID uuid.UUID) error {
	if _, err := s.load(ctx, customerID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, customerID, map[string]any{"ativo": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate customer")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, search string) ([]models.Customer, string, error) {
	rows, next, err := s.repo.List(ctx, params, search)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, "", err
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customers")
	}
	return rows, next, nil
}

func (s *service) AddAddress(ctx context.Context, customerID uuid.UUID, input AddressInput) (*models.Address, error) {
	if _, err := s.load(ctx, customerID); err != nil {
		return nil, err
	}
	if input.IsDefault {
		if err := s.repo.ClearDefaultAddress(ctx, customerID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear default address")
		}
	}
	return s.FindOrCreateAddressTx(ctx, nil, customerID, input)
}

func (s *service) ListAddresses(ctx context.Context, customerID uuid.UUID) ([]models.Address, error) {
	rows, err := s.repo.ListAddresses(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list addresses")
	}
	return rows, nil
}

func (s *service) DeleteAddress(ctx context.Context, customerID, addressID uuid.UUID) error {
	if err := s.repo.DeleteAddress(ctx, customerID, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete address")
	}
	return nil
}

// LookupCEP prefills an address form from the postal service. The number
// field always comes from the buyer.
func (s *service) LookupCEP(ctx context.Context, cep string) (*types.AddressSnapshot, error) {
	if s.cep == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "consulta de CEP indisponível")
	}
	snapshot, err := s.cep.Lookup(ctx, cep)
	if err != nil {
		switch {
		case errors.Is(err, viacep.ErrInvalidCEP):
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "CEP inválido")
		case errors.Is(err, viacep.ErrNotFound):
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "CEP não encontrado")
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "viacep: lookup")
		}
	}
	return snapshot, nil
}

func (s *service) load(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cliente não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	return customer, nil
}

func validateCustomer(input CustomerInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "nome é obrigatório")
	}
	email := normalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "email inválido")
	}
	return nil
}

func validateAddress(input AddressInput) error {
	snapshot := types.AddressSnapshot{
		CEP:          viacep.NormalizeCEP(input.CEP),
		Street:       input.Street,
		Number:       input.Number,
		Neighborhood: input.Neighborhood,
		City:         input.City,
		State:        input.State,
	}
	if err := snapshot.Validate(); err != nil {
		var missing *types.MissingFieldsError
		if errors.As(err, &missing) {
			return pkgerrors.New(pkgerrors.CodeValidation, "endereço incompleto").
				WithDetails(map[string]any{"campos": missing.Fields})
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "endereço inválido")
	}
	if strings.TrimSpace(input.Number) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "número é obrigatório")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
