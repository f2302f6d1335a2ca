package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/semprebellasuporte2025/semprebella-backend/api/responses"
	"github.com/semprebellasuporte2025/semprebella-backend/api/validators"
	couponssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/coupons"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

type couponRequest struct {
	Code        string           `json:"codigo" validate:"required,min=3,max=40"`
	Type        string           `json:"tipo" validate:"required,oneof=percentual fixo"`
	Value       decimal.Decimal  `json:"valor" validate:"required"`
	MinSubtotal *decimal.Decimal `json:"valor_minimo,omitempty"`
	MaxUses     *int             `json:"usos_maximos,omitempty" validate:"omitempty,min=1"`
	ExpiresAt   *time.Time       `json:"validade,omitempty"`
	IsActive    *bool            `json:"ativo,omitempty"`
}

func (c couponRequest) toInput() (couponssvc.CouponInput, error) {
	couponType, err := enums.ParseCouponType(c.Type)
	if err != nil {
		return couponssvc.CouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "tipo de cupom inválido")
	}

	input := couponssvc.CouponInput{
		Code:        strings.ToUpper(strings.TrimSpace(c.Code)),
		Type:        couponType,
		Value:       c.Value,
		MinSubtotal: c.MinSubtotal,
		MaxUses:     c.MaxUses,
		ExpiresAt:   c.ExpiresAt,
		IsActive:    true,
	}
	if c.IsActive != nil {
		input.IsActive = *c.IsActive
	}
	return input, nil
}

// AdminListCoupons serves the coupon register.
func AdminListCoupons(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active, err := validators.ParseQueryBool(r, "ativo")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		onlyActive := active != nil && *active

		coupons, err := svc.List(r.Context(), onlyActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCouponList(coupons))
	}
}

// AdminCreateCoupon handles coupon creation.
func AdminCreateCoupon(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCouponResponse(coupon))
	}
}

// AdminUpdateCoupon handles coupon updates.
func AdminUpdateCoupon(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Update(r.Context(), couponID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCouponResponse(coupon))
	}
}

// AdminDeleteCoupon deactivates a coupon.
func AdminDeleteCoupon(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type validateCouponRequest struct {
	Code     string          `json:"codigo" validate:"required"`
	Subtotal decimal.Decimal `json:"subtotal" validate:"required"`
}

type validateCouponResponse struct {
	Code     string          `json:"codigo"`
	Discount decimal.Decimal `json:"desconto"`
	Total    decimal.Decimal `json:"total"`
}

// ValidateCoupon lets the storefront preview a discount before checkout.
// Validation here does not consume a use; redemption happens inside the
// checkout transaction.
func ValidateCoupon(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload validateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		validation, err := svc.Validate(r.Context(), strings.TrimSpace(payload.Code), payload.Subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, validateCouponResponse{
			Code:     validation.Coupon.Code,
			Discount: validation.Discount,
			Total:    payload.Subtotal.Sub(validation.Discount),
		})
	}
}
