package controllers

import (
	"net/http"
	"strings"

	"github.com/semprebellasuporte2025/semprebella-backend/api/responses"
	"github.com/semprebellasuporte2025/semprebella-backend/api/validators"
	supplierssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/suppliers"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

type supplierRequest struct {
	Name     string  `json:"nome" validate:"required,min=2,max=160"`
	Contact  *string `json:"contato,omitempty" validate:"omitempty,max=160"`
	Phone    *string `json:"telefone,omitempty" validate:"omitempty,max=20"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	CNPJ     *string `json:"cnpj,omitempty" validate:"omitempty,max=18"`
	Notes    *string `json:"observacoes,omitempty"`
	IsActive *bool   `json:"ativo,omitempty"`
}

func (s supplierRequest) toInput() supplierssvc.SupplierInput {
	input := supplierssvc.SupplierInput{
		Name:     strings.TrimSpace(s.Name),
		Contact:  s.Contact,
		Phone:    s.Phone,
		Email:    s.Email,
		CNPJ:     s.CNPJ,
		Notes:    s.Notes,
		IsActive: true,
	}
	if s.IsActive != nil {
		input.IsActive = *s.IsActive
	}
	return input
}

// AdminListSuppliers serves the supplier register.
func AdminListSuppliers(svc supplierssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active, err := validators.ParseQueryBool(r, "ativo")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		onlyActive := active != nil && *active

		suppliers, err := svc.List(r.Context(), onlyActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSupplierList(suppliers))
	}
}

// AdminGetSupplier serves one supplier.
func AdminGetSupplier(svc supplierssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplier, err := svc.Get(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSupplierResponse(supplier))
	}
}

// AdminCreateSupplier handles supplier creation.
func AdminCreateSupplier(svc supplierssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload supplierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplier, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newSupplierResponse(supplier))
	}
}

// AdminUpdateSupplier handles supplier updates.
func AdminUpdateSupplier(svc supplierssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload supplierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplier, err := svc.Update(r.Context(), supplierID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSupplierResponse(supplier))
	}
}

// AdminDeleteSupplier deactivates a supplier.
func AdminDeleteSupplier(svc supplierssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), supplierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
