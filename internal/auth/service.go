package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/semprebellasuporte2025/semprebella-backend/pkg/auth"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/auth/session"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/security"

	"github.com/semprebellasuporte2025/semprebella-backend/internal/customers"
	"github.com/semprebellasuporte2025/semprebella-backend/internal/users"
)

const minPasswordLength = 8

// RegisterInput holds the storefront signup payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

// RegisterAdminInput holds the back-office signup payload.
type RegisterAdminInput struct {
	Name     string
	Email    string
	Password string
	Role     enums.Role
}

// LoginResult is a minted access token plus the identity behind it.
type LoginResult struct {
	Token      string
	ExpiresAt  time.Time
	UserID     uuid.UUID
	CustomerID *uuid.UUID
	Role       enums.Role
	Name       string
	Email      string
}

// Service exposes signup, sign-in, and sign-out.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*LoginResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	AdminLogin(ctx context.Context, email, password string) (*LoginResult, error)
	RegisterAdmin(ctx context.Context, input RegisterAdminInput) (*models.AdminUser, error)
	Logout(ctx context.Context, sessionID string) error
	Status(ctx context.Context, userID uuid.UUID, email string) (AdminStatus, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerResolver interface {
	ResolveOrCreateTx(ctx context.Context, tx *gorm.DB, input customers.CustomerInput, authUserID *uuid.UUID) (*models.Customer, error)
	GetByAuthUser(ctx context.Context, authUserID uuid.UUID) (*models.Customer, error)
}

type adminCreator interface {
	Create(ctx context.Context, input users.CreateUserInput) (*models.AdminUser, error)
}

type sessionStarter interface {
	Start(ctx context.Context, sessionID string, userID uuid.UUID) error
	Revoke(ctx context.Context, sessionID string) error
}

type service struct {
	repo        Repository
	dbClient    txRunner
	customers   customerResolver
	admins      adminCreator
	resolver    *StatusResolver
	sessions    sessionStarter
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService constructs the auth service.
func NewService(
	repo Repository,
	dbClient txRunner,
	customerSvc customerResolver,
	admins adminCreator,
	resolver *StatusResolver,
	sessions sessionStarter,
	jwtCfg config.JWTConfig,
	passwordCfg config.PasswordConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if customerSvc == nil {
		return nil, fmt.Errorf("customer service required")
	}
	if admins == nil {
		return nil, fmt.Errorf("admin creator required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("status resolver required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		customers:   customerSvc,
		admins:      admins,
		resolver:    resolver,
		sessions:    sessions,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
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

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		user     *models.AuthUser
		customer *models.Customer
	)
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, &models.AuthUser{
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "já existe uma conta com esse email")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert auth user")
		}
		user = created

		customer, err = s.customers.ResolveOrCreateTx(ctx, tx, customers.CustomerInput{
			Name:  strings.TrimSpace(input.Name),
			Email: email,
			Phone: input.Phone,
		}, &created.ID)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register")
	}

	return s.issue(ctx, user.ID, customer.Name, email, enums.RoleCliente, &customer.ID)
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load auth user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")
	}
	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")
	}

	role := enums.RoleCliente
	name := ""
	var customerID *uuid.UUID

	status, err := s.resolver.Resolve(ctx, user.ID, user.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve admin status")
	}
	if status.IsStaff {
		role = status.Role
		if err := s.repo.TouchAdminLastLogin(ctx, status.AdminID, s.now()); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "touch admin last login failed")
		}
	} else {
		customer, err := s.customers.GetByAuthUser(ctx, user.ID)
		if err == nil {
			customerID = &customer.ID
			name = customer.Name
		} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			return nil, err
		}
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "touch last login failed")
	}
	return s.issue(ctx, user.ID, name, user.Email, role, customerID)
}

// AdminLogin signs a back-office account in against usuarios_admin directly,
// so staff keep access even without a storefront credential row.
func (s *service) AdminLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	admin, err := s.repo.FindAdmin(ctx, uuid.Nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load admin user")
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")
	}
	ok, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")
	}

	role, normalized := enums.NormalizeAdminRole(string(admin.Role))
	if !normalized {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "papel administrativo inválido")
	}
	if err := s.repo.TouchAdminLastLogin(ctx, admin.ID, s.now()); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "touch admin last login failed")
	}
	return s.issue(ctx, admin.ID, admin.Name, admin.Email, role, nil)
}

func (s *service) RegisterAdmin(ctx context.Context, input RegisterAdminInput) (*models.AdminUser, error) {
	return s.admins.Create(ctx, users.CreateUserInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
	})
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Status(ctx context.Context, userID uuid.UUID, email string) (AdminStatus, error) {
	return s.resolver.Resolve(ctx, userID, email)
}

func (s *service) issue(ctx context.Context, userID uuid.UUID, name, email string, role enums.Role, customerID *uuid.UUID) (*LoginResult, error) {
	now := s.now()
	jti := session.NewSessionID()

	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID:     userID,
		CustomerID: customerID,
		Email:      email,
		Role:       role,
		JTI:        jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := s.sessions.Start(ctx, jti, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start session")
	}

	return &LoginResult{
		Token:      token,
		ExpiresAt:  now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		UserID:     userID,
		CustomerID: customerID,
		Role:       role,
		Name:       name,
		Email:      email,
	}, nil
}
