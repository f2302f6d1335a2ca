package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/semprebellasuporte2025/semprebella-backend/api/middleware"
	"github.com/semprebellasuporte2025/semprebella-backend/api/responses"
	"github.com/semprebellasuporte2025/semprebella-backend/api/validators"
	inventorysvc "github.com/semprebellasuporte2025/semprebella-backend/internal/inventory"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

type movementRequest struct {
	ProductID    string           `json:"produto_id" validate:"required,uuid"`
	Type         string           `json:"tipo" validate:"required,oneof=entrada saida ajuste"`
	Quantity     int              `json:"quantidade" validate:"required"`
	Reason       *string          `json:"motivo,omitempty" validate:"omitempty,max=200"`
	UnitValue    *decimal.Decimal `json:"valor_unitario,omitempty"`
	SupplierName *string          `json:"fornecedor_nome,omitempty" validate:"omitempty,max=150"`
}

// AdminRegisterMovement appends a ledger entry. The acting user comes
// from the token, never from the payload.
func AdminRegisterMovement(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload movementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "identificador inválido").WithDetails(map[string]any{"field": "produto_id"}))
			return
		}

		movementType, err := enums.ParseMovementType(strings.TrimSpace(payload.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "tipo de movimentação inválido"))
			return
		}

		var actorID *uuid.UUID
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			if parsed, err := uuid.Parse(raw); err == nil {
				actorID = &parsed
			}
		}

		movement, err := svc.RegisterMovement(r.Context(), inventorysvc.MovementInput{
			ProductID:    productID,
			Type:         movementType,
			Quantity:     payload.Quantity,
			Reason:       payload.Reason,
			UnitValue:    payload.UnitValue,
			SupplierName: payload.SupplierName,
			ActorID:      actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newMovementResponse(movement))
	}
}

// AdminListMovements serves the ledger for one product, newest first.
func AdminListMovements(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, nextCursor, err := svc.ListByProduct(r.Context(), productID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listEnvelope[movementResponse]{Items: newMovementList(movements), NextCursor: nextCursor})
	}
}

type stockLevelResponse struct {
	ProductID uuid.UUID `json:"produto_id"`
	Stock     int       `json:"estoque"`
}

// AdminStockLevel serves the current stock on hand for one product.
func AdminStockLevel(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		level, err := svc.StockLevel(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stockLevelResponse{ProductID: productID, Stock: level})
	}
}
