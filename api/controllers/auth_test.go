package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/semprebellasuporte2025/semprebella-backend/api/middleware"
	authsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/auth"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
)

func TestAuthLogin(t *testing.T) {
	customerID := uuid.New()
	stub := &stubAuthService{
		login: &authsvc.LoginResult{
			Token:      "jwt-token",
			ExpiresAt:  time.Now().Add(time.Hour),
			UserID:     uuid.New(),
			CustomerID: &customerID,
			Role:       enums.RoleCliente,
			Name:       "Maria Silva",
			Email:      "maria@example.com",
		},
	}

	t.Run("missing password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"maria@example.com"}`))
		rec := httptest.NewRecorder()
		AuthLogin(stub, testLogg()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing password, got %d", rec.Code)
		}
	})

	t.Run("success lowercases email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"MARIA@Example.com","senha":"segredo123"}`))
		rec := httptest.NewRecorder()
		AuthLogin(stub, testLogg()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if stub.loginEmail != "maria@example.com" {
			t.Fatalf("email not normalized: %q", stub.loginEmail)
		}

		var envelope struct {
			Data loginResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.Token != "jwt-token" {
			t.Fatalf("token missing from response")
		}
		if envelope.Data.CustomerID == nil || *envelope.Data.CustomerID != customerID {
			t.Fatalf("customer id missing from response")
		}
	})
}

func TestAdminAuthRegisterBlockedInProduction(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvProd

	body := `{"nome":"Ana","email":"ana@example.com","senha":"umsegredo","papel":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	AdminAuthRegister(&stubAuthService{}, cfg, testLogg()).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 in production, got %d", rec.Code)
	}
}

func TestAuthLogoutRequiresSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	AuthLogout(&stubAuthService{}, testLogg()).ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatalf("logout without session must not succeed")
	}
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	stub := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithSessionID(context.Background(), "sess-123"))
	rec := httptest.NewRecorder()
	AuthLogout(stub, testLogg()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.loggedOut != "sess-123" {
		t.Fatalf("session id not forwarded: %q", stub.loggedOut)
	}
}

type stubAuthService struct {
	login      *authsvc.LoginResult
	loginEmail string
	loggedOut  string
}

func (s *stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.LoginResult, error) {
	panic("unimplemented")
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*authsvc.LoginResult, error) {
	s.loginEmail = email
	return s.login, nil
}

func (s *stubAuthService) AdminLogin(ctx context.Context, email, password string) (*authsvc.LoginResult, error) {
	panic("unimplemented")
}

func (s *stubAuthService) RegisterAdmin(ctx context.Context, input authsvc.RegisterAdminInput) (*models.AdminUser, error) {
	panic("unimplemented")
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID string) error {
	s.loggedOut = sessionID
	return nil
}

func (s *stubAuthService) Status(ctx context.Context, userID uuid.UUID, email string) (authsvc.AdminStatus, error) {
	panic("unimplemented")
}
