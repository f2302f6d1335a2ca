package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/semprebellasuporte2025/semprebella-backend/api/middleware"
	"github.com/semprebellasuporte2025/semprebella-backend/api/responses"
	"github.com/semprebellasuporte2025/semprebella-backend/api/validators"
	authsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/auth"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

type registerRequest struct {
	Name     string  `json:"nome" validate:"required,min=2,max=120"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"senha" validate:"required,min=8,max=72"`
	Phone    *string `json:"telefone,omitempty" validate:"omitempty,max=20"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required"`
}

type registerAdminRequest struct {
	Name     string `json:"nome" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required,min=8,max=72"`
	Role     string `json:"papel" validate:"required,oneof=admin atendente"`
}

type loginResponse struct {
	Token      string     `json:"token"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UserID     uuid.UUID  `json:"user_id"`
	CustomerID *uuid.UUID `json:"cliente_id,omitempty"`
	Role       string     `json:"papel"`
	Name       string     `json:"nome"`
	Email      string     `json:"email"`
}

func newLoginResponse(result *authsvc.LoginResult) loginResponse {
	return loginResponse{
		Token:      result.Token,
		ExpiresAt:  result.ExpiresAt,
		UserID:     result.UserID,
		CustomerID: result.CustomerID,
		Role:       string(result.Role),
		Name:       result.Name,
		Email:      result.Email,
	}
}

// AuthRegister creates a storefront account and signs the customer in.
func AuthRegister(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), authsvc.RegisterInput{
			Name:     strings.TrimSpace(payload.Name),
			Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
			Password: payload.Password,
			Phone:    payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newLoginResponse(result))
	}
}

// AuthLogin authenticates a storefront account.
func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)), payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newLoginResponse(result))
	}
}

// AdminAuthLogin authenticates a back-office account.
func AdminAuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminLogin(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)), payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newLoginResponse(result))
	}
}

// AdminAuthRegister bootstraps a back-office account. It is only routed
// outside production; day-to-day account creation goes through the
// authenticated user management endpoints.
func AdminAuthRegister(svc authsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.App.IsProd() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cadastro direto desabilitado"))
			return
		}

		var payload registerAdminRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseRole(payload.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "papel inválido"))
			return
		}

		user, err := svc.RegisterAdmin(r.Context(), authsvc.RegisterAdminInput{
			Name:     strings.TrimSpace(payload.Name),
			Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
			Password: payload.Password,
			Role:     role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newAdminUserResponse(user))
	}
}

// AuthLogout revokes the session behind the presented token.
func AuthLogout(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sessão ausente"))
			return
		}

		if err := svc.Logout(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

type authStatusResponse struct {
	IsStaff bool   `json:"is_staff"`
	Role    string `json:"papel,omitempty"`
}

// AuthStatus reports whether the caller maps to an active back-office
// account. The admin frontend uses it to decide which shell to render.
func AuthStatus(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais ausentes"))
			return
		}

		status, err := svc.Status(r.Context(), userID, middleware.EmailFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := authStatusResponse{IsStaff: status.IsStaff}
		if status.IsStaff {
			resp.Role = string(status.Role)
		}
		responses.WriteSuccess(w, resp)
	}
}
