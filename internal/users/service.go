package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/security"
)

// CreateUserInput holds the payload to create a back-office account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     enums.Role
}

// UpdateUserInput holds optional mutation values for an account.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *enums.Role
	IsActive *bool
}

// Service exposes back-office account management.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*models.AdminUser, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*models.AdminUser, error)
	Get(ctx context.Context, userID uuid.UUID) (*models.AdminUser, error)
	List(ctx context.Context, onlyActive bool) ([]models.AdminUser, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

const minPasswordLength = 8

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
}

func NewService(repo Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*models.AdminUser, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome é obrigatório")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email inválido")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "senha deve ter no mínimo 8 caracteres")
	}
	role := input.Role
	if role == "" {
		role = enums.RoleAtendente
	}
	if !role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "papel inválido para conta administrativa")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	created, err := s.repo.Create(ctx, &models.AdminUser{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "já existe um usuário com esse email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert admin user")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*models.AdminUser, error) {
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome é obrigatório")
		}
		updates["nome"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email inválido")
		}
		updates["email"] = email
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "senha deve ter no mínimo 8 caracteres")
		}
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		updates["senha_hash"] = hash
	}
	if input.Role != nil {
		if !input.Role.IsStaff() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "papel inválido para conta administrativa")
		}
		updates["papel"] = *input.Role
	}
	if input.IsActive != nil {
		updates["ativo"] = *input.IsActive
	}

	if len(updates) == 0 {
		return s.load(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "já existe um usuário com esse email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update admin user")
	}
	return s.load(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.AdminUser, error) {
	return s.load(ctx, userID)
}

func (s *service) List(ctx context.Context, onlyActive bool) ([]models.AdminUser, error) {
	rows, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list admin users")
	}
	return rows, nil
}

// Deactivate disables the account instead of removing the row so audit
// references on past orders survive.
func (s *service) Deactivate(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.load(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, userID, map[string]any{"ativo": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate admin user")
	}
	return nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.AdminUser, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "usuário não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load admin user")
	}
	return user, nil
}
