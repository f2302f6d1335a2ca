package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgauth "github.com/semprebellasuporte2025/semprebella-backend/pkg/auth"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/security"

	"github.com/semprebellasuporte2025/semprebella-backend/internal/customers"
	"github.com/semprebellasuporte2025/semprebella-backend/internal/users"
)

type stubAuthRepo struct {
	users  map[uuid.UUID]*models.AuthUser
	admins map[uuid.UUID]*models.AdminUser
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		users:  map[uuid.UUID]*models.AuthUser{},
		admins: map[uuid.UUID]*models.AdminUser{},
	}
}

func (s *stubAuthRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubAuthRepo) Create(_ context.Context, u *models.AuthUser) (*models.AuthUser, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *stubAuthRepo) FindByEmail(_ context.Context, email string) (*models.AuthUser, error) {
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if strings.ToLower(u.Email) == needle {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAuthRepo) FindByID(_ context.Context, id uuid.UUID) (*models.AuthUser, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *stubAuthRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := s.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (s *stubAuthRepo) FindAdmin(_ context.Context, userID uuid.UUID, email string) (*models.AdminUser, error) {
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, a := range s.admins {
		if a.ID == userID || strings.ToLower(a.Email) == needle {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAuthRepo) TouchAdminLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if a, ok := s.admins[id]; ok {
		a.LastLoginAt = &at
	}
	return nil
}

type stubAuthTx struct{}

func (stubAuthTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCustomerResolver struct {
	customers map[uuid.UUID]*models.Customer
}

func (s *stubCustomerResolver) ResolveOrCreateTx(_ context.Context, _ *gorm.DB, input customers.CustomerInput, authUserID *uuid.UUID) (*models.Customer, error) {
	c := &models.Customer{ID: uuid.New(), Name: input.Name, Email: input.Email, AuthUserID: authUserID}
	s.customers[c.ID] = c
	return c, nil
}

func (s *stubCustomerResolver) GetByAuthUser(_ context.Context, authUserID uuid.UUID) (*models.Customer, error) {
	for _, c := range s.customers {
		if c.AuthUserID != nil && *c.AuthUserID == authUserID {
			return c, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cliente não encontrado")
}

type stubAdminCreator struct {
	created *users.CreateUserInput
}

func (s *stubAdminCreator) Create(_ context.Context, input users.CreateUserInput) (*models.AdminUser, error) {
	s.created = &input
	return &models.AdminUser{ID: uuid.New(), Name: input.Name, Email: input.Email, Role: input.Role}, nil
}

type stubSessions struct {
	started map[string]uuid.UUID
	revoked []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{started: map[string]uuid.UUID{}}
}

func (s *stubSessions) Start(_ context.Context, sessionID string, userID uuid.UUID) error {
	s.started[sessionID] = userID
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, sessionID string) error {
	s.revoked = append(s.revoked, sessionID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-with-enough-length",
		Issuer:            "semprebella-test",
		ExpirationMinutes: 15,
	}
}

func testArgonConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

type authFixture struct {
	svc      Service
	repo     *stubAuthRepo
	sessions *stubSessions
	creator  *stubAdminCreator
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newStubAuthRepo()
	resolver, err := NewStatusResolver(repo, nil, time.Minute, testLogger())
	require.NoError(t, err)

	sessions := newStubSessions()
	creator := &stubAdminCreator{}
	svc, err := NewService(
		repo,
		stubAuthTx{},
		&stubCustomerResolver{customers: map[uuid.UUID]*models.Customer{}},
		creator,
		resolver,
		sessions,
		testJWTConfig(),
		testArgonConfig(),
		testLogger(),
	)
	require.NoError(t, err)
	return &authFixture{svc: svc, repo: repo, sessions: sessions, creator: creator}
}

func TestRegisterIssuesCustomerToken(t *testing.T) {
	fx := newAuthFixture(t)

	result, err := fx.svc.Register(context.Background(), RegisterInput{
		Name:     "Ana Beatriz",
		Email:    "Ana@Exemplo.com",
		Password: "senha-segura-1",
	})
	require.NoError(t, err)
	require.Equal(t, enums.RoleCliente, result.Role)
	require.NotNil(t, result.CustomerID)
	require.Len(t, fx.sessions.started, 1)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	require.NoError(t, err)
	require.Equal(t, enums.RoleCliente, claims.Role)
	require.Contains(t, fx.sessions.started, claims.SessionID())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	fx := newAuthFixture(t)

	_, err := fx.svc.Register(context.Background(), RegisterInput{
		Name: "Ana", Email: "ana@exemplo.com", Password: "senha-segura-1",
	})
	require.NoError(t, err)

	// The stub repo does not enforce uniqueness, so exercise validation only.
	_, err = fx.svc.Register(context.Background(), RegisterInput{
		Name: "Ana", Email: "sem-arroba", Password: "senha-segura-1",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestLoginWrongPassword(t *testing.T) {
	fx := newAuthFixture(t)

	_, err := fx.svc.Register(context.Background(), RegisterInput{
		Name: "Ana", Email: "ana@exemplo.com", Password: "senha-segura-1",
	})
	require.NoError(t, err)

	_, err = fx.svc.Login(context.Background(), "ana@exemplo.com", "senha-errada")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLoginUnknownEmail(t *testing.T) {
	fx := newAuthFixture(t)

	_, err := fx.svc.Login(context.Background(), "ninguem@exemplo.com", "qualquer")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLoginStaffGetsAdminRole(t *testing.T) {
	fx := newAuthFixture(t)

	result, err := fx.svc.Register(context.Background(), RegisterInput{
		Name: "Mariana", Email: "mariana@lojaexemplo.com.br", Password: "senha-segura-1",
	})
	require.NoError(t, err)

	admin := &models.AdminUser{
		ID:       result.UserID,
		Name:     "Mariana",
		Email:    "mariana@lojaexemplo.com.br",
		Role:     enums.Role("administrador"),
		IsActive: true,
	}
	fx.repo.admins[admin.ID] = admin

	login, err := fx.svc.Login(context.Background(), "mariana@lojaexemplo.com.br", "senha-segura-1")
	require.NoError(t, err)
	require.Equal(t, enums.RoleAdmin, login.Role)
	require.Nil(t, login.CustomerID)
	require.NotNil(t, admin.LastLoginAt)
}

func TestAdminLoginDirect(t *testing.T) {
	fx := newAuthFixture(t)

	hash, err := security.HashPassword("senha-do-painel", testArgonConfig())
	require.NoError(t, err)
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Name:         "Mariana",
		Email:        "painel@lojaexemplo.com.br",
		PasswordHash: hash,
		Role:         enums.RoleAtendente,
		IsActive:     true,
	}
	fx.repo.admins[admin.ID] = admin

	result, err := fx.svc.AdminLogin(context.Background(), "painel@lojaexemplo.com.br", "senha-do-painel")
	require.NoError(t, err)
	require.Equal(t, enums.RoleAtendente, result.Role)

	_, err = fx.svc.AdminLogin(context.Background(), "painel@lojaexemplo.com.br", "senha-errada")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	fx := newAuthFixture(t)

	result, err := fx.svc.Register(context.Background(), RegisterInput{
		Name: "Ana", Email: "ana@exemplo.com", Password: "senha-segura-1",
	})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	require.NoError(t, err)
	require.NoError(t, fx.svc.Logout(context.Background(), claims.SessionID()))
	require.Equal(t, []string{claims.SessionID()}, fx.sessions.revoked)
}

func TestRegisterAdminDelegates(t *testing.T) {
	fx := newAuthFixture(t)

	created, err := fx.svc.RegisterAdmin(context.Background(), RegisterAdminInput{
		Name: "Nova Atendente", Email: "nova@lojaexemplo.com.br", Password: "senha-segura-1", Role: enums.RoleAtendente,
	})
	require.NoError(t, err)
	require.Equal(t, enums.RoleAtendente, created.Role)
	require.NotNil(t, fx.creator.created)
}
