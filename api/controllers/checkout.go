package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/semprebellasuporte2025/semprebella-backend/api/middleware"
	"github.com/semprebellasuporte2025/semprebella-backend/api/responses"
	"github.com/semprebellasuporte2025/semprebella-backend/api/validators"
	checkoutsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/checkout"
	customerssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/customers"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

type checkoutRequest struct {
	Customer      checkoutCustomerRequest `json:"cliente" validate:"required"`
	Address       addressRequest          `json:"endereco" validate:"required"`
	PaymentMethod string                  `json:"forma_pagamento" validate:"required"`
	CouponCode    *string                 `json:"cupom,omitempty" validate:"omitempty,max=40"`
	ShippingFee   decimal.Decimal         `json:"frete"`
	Notes         *string                 `json:"observacoes,omitempty" validate:"omitempty,max=500"`
}

type checkoutCustomerRequest struct {
	Name     string  `json:"nome" validate:"required,min=2,max=120"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"telefone,omitempty" validate:"omitempty,max=20"`
	Document *string `json:"cpf,omitempty" validate:"omitempty,max=14"`
}

type checkoutResponse struct {
	Order      orderResponse `json:"pedido"`
	PaymentURL *string       `json:"url_pagamento,omitempty"`
}

// Checkout converts the authenticated customer's cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "forma de pagamento inválida"))
			return
		}

		var authUserID *uuid.UUID
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			if parsed, err := uuid.Parse(raw); err == nil {
				authUserID = &parsed
			}
		}

		// A logged-in buyer checks out under the email in their token,
		// not whatever the body claims.
		email := strings.ToLower(strings.TrimSpace(payload.Customer.Email))
		if claimed := middleware.EmailFromContext(r.Context()); authUserID != nil && claimed != "" {
			email = strings.ToLower(strings.TrimSpace(claimed))
		}

		result, err := svc.Execute(r.Context(), checkoutsvc.Input{
			Customer: customerssvc.CustomerInput{
				Name:     strings.TrimSpace(payload.Customer.Name),
				Email:    email,
				Phone:    payload.Customer.Phone,
				Document: payload.Customer.Document,
			},
			Address:       payload.Address.toInput(),
			AuthUserID:    authUserID,
			PaymentMethod: method,
			CouponCode:    payload.CouponCode,
			ShippingFee:   payload.ShippingFee,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Order:      newOrderResponse(result.Order),
			PaymentURL: result.PaymentURL,
		})
	}
}
