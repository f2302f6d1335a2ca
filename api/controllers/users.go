package controllers

import (
	"net/http"
	"strings"

	"github.com/semprebellasuporte2025/semprebella-backend/api/responses"
	"github.com/semprebellasuporte2025/semprebella-backend/api/validators"
	userssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/users"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

type createUserRequest struct {
	Name     string `json:"nome" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required,min=8,max=72"`
	Role     string `json:"papel" validate:"required,oneof=admin atendente"`
}

type updateUserRequest struct {
	Name     *string `json:"nome,omitempty" validate:"omitempty,min=2,max=120"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"senha,omitempty" validate:"omitempty,min=8,max=72"`
	Role     *string `json:"papel,omitempty" validate:"omitempty,oneof=admin atendente"`
	IsActive *bool   `json:"ativo,omitempty"`
}

// AdminListUsers serves the back-office account list.
func AdminListUsers(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active, err := validators.ParseQueryBool(r, "ativo")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		onlyActive := active != nil && *active

		users, err := svc.List(r.Context(), onlyActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAdminUserList(users))
	}
}

// AdminGetUser serves one back-office account.
func AdminGetUser(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAdminUserResponse(user))
	}
}

// AdminCreateUser creates a back-office account.
func AdminCreateUser(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseRole(payload.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "papel inválido"))
			return
		}

		user, err := svc.Create(r.Context(), userssvc.CreateUserInput{
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

// AdminUpdateUser updates a back-office account.
func AdminUpdateUser(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := userssvc.UpdateUserInput{
			Name:     payload.Name,
			Password: payload.Password,
			IsActive: payload.IsActive,
		}
		if payload.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*payload.Email))
			input.Email = &email
		}
		if payload.Role != nil {
			role, err := enums.ParseRole(*payload.Role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "papel inválido"))
				return
			}
			input.Role = &role
		}

		user, err := svc.Update(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAdminUserResponse(user))
	}
}

// AdminDeactivateUser disables a back-office account. Rows are kept so
// ledger and order references stay resolvable.
func AdminDeactivateUser(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
