package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
)

// CouponInput holds the payload for coupon writes.
type CouponInput struct {
	Code        string
	Type        enums.CouponType
	Value       decimal.Decimal
	MinSubtotal *decimal.Decimal
	MaxUses     *int
	ExpiresAt   *time.Time
	IsActive    bool
}

// Validation is the outcome of checking a code against a cart subtotal.
type Validation struct {
	Coupon   *models.Coupon
	Discount decimal.Decimal
}

// Service exposes coupon management and checkout-time validation.
type Service interface {
	Create(ctx context.Context, input CouponInput) (*models.Coupon, error)
	Update(ctx context.Context, couponID uuid.UUID, input CouponInput) (*models.Coupon, error)
	List(ctx context.Context, onlyActive bool) ([]models.Coupon, error)
	Delete(ctx context.Context, couponID uuid.UUID) error
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Validation, error)
	RedeemTx(ctx context.Context, tx *gorm.DB, couponID uuid.UUID) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CouponInput) (*models.Coupon, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	coupon := &models.Coupon{
		Code:        normalizeCode(input.Code),
		Type:        input.Type,
		Value:       input.Value,
		MinSubtotal: input.MinSubtotal,
		MaxUses:     input.MaxUses,
		ExpiresAt:   input.ExpiresAt,
		IsActive:    input.IsActive,
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "já existe um cupom com esse código")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert coupon")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, couponID uuid.UUID, input CouponInput) (*models.Coupon, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, couponID); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"codigo":       normalizeCode(input.Code),
		"tipo":         input.Type,
		"valor":        input.Value,
		"valor_minimo": input.MinSubtotal,
		"usos_maximos": input.MaxUses,
		"validade":     input.ExpiresAt,
		"ativo":        input.IsActive,
	}
	if err := s.repo.Update(ctx, couponID, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "já existe um cupom com esse código")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update coupon")
	}
	return s.load(ctx, couponID)
}

func (s *service) List(ctx context.Context, onlyActive bool) ([]models.Coupon, error) {
	rows, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list coupons")
	}
	return rows, nil
}

func (s *service) Delete(ctx context.Context, couponID uuid.UUID) error {
	if _, err := s.load(ctx, couponID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, couponID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete coupon")
	}
	return nil
}

// Validate checks a code against the current time, usage counters, and
// the cart subtotal uniformly, so the storefront preview and the checkout
// agree on the same rules.
func (s *service) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Validation, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "código do cupom é obrigatório")
	}
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cupom não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load coupon")
	}
	if !coupon.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cupom inativo")
	}
	if coupon.ExpiresAt != nil && s.now().After(*coupon.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cupom expirado")
	}
	if coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cupom esgotado")
	}
	if coupon.MinSubtotal != nil && subtotal.LessThan(*coupon.MinSubtotal) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "valor mínimo do pedido não atingido").
			WithDetails(map[string]any{"valor_minimo": coupon.MinSubtotal.StringFixed(2)})
	}
	return &Validation{Coupon: coupon, Discount: coupon.Discount(subtotal)}, nil
}

// RedeemTx bumps the usage counter inside the caller's transaction.
func (s *service) RedeemTx(ctx context.Context, tx *gorm.DB, couponID uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if err := s.repo.WithTx(tx).IncrementUsage(ctx, couponID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment coupon usage")
	}
	return nil
}

func (s *service) load(ctx context.Context, couponID uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cupom não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load coupon")
	}
	return coupon, nil
}

func validateInput(input CouponInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "código do cupom é obrigatório")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "tipo de cupom inválido")
	}
	if input.Value.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "valor do cupom deve ser maior que zero")
	}
	if input.Type == enums.CouponTypePercentage && input.Value.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentual não pode exceder 100")
	}
	if input.MaxUses != nil && *input.MaxUses <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usos máximos deve ser maior que zero")
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
