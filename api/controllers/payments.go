package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/semprebellasuporte2025/semprebella-backend/api/responses"
	orderssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/orders"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/mercadopago"
)

type paymentFetcher interface {
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error)
}

type paymentNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// PaymentWebhook handles Mercado Pago payment notifications. The payload
// only carries a payment id, so the handler fetches the payment to learn
// its status and the order it settles. Notifications are redelivered
// until acknowledged, which is why non-payment types and unknown orders
// return 200.
func PaymentWebhook(orders orderssvc.Service, payments paymentFetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payments == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment client unavailable"))
			return
		}

		// Notification payloads carry fields beyond what we read, so the
		// strict body decoder does not apply here.
		var notification paymentNotification
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&notification); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification body"))
			return
		}

		if notification.Type != "payment" || notification.Data.ID == "" {
			responses.WriteSuccess(w, map[string]string{"status": "ignored"})
			return
		}

		payment, err := payments.GetPayment(r.Context(), notification.Data.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payment"))
			return
		}

		if !payment.Approved() {
			if logg != nil {
				logg.Info(logg.WithFields(r.Context(), map[string]any{
					"payment_id":     payment.ID,
					"payment_status": payment.Status,
				}), "payment notification not approved, skipping")
			}
			responses.WriteSuccess(w, map[string]string{"status": "ignored"})
			return
		}

		orderNumber := strings.TrimSpace(payment.ExternalReference)
		if orderNumber == "" {
			responses.WriteSuccess(w, map[string]string{"status": "ignored"})
			return
		}

		ref := fmt.Sprintf("%d", payment.ID)
		order, err := orders.ConfirmPayment(r.Context(), orderNumber, &ref)
		if err != nil {
			if pkgerrors.As(err).Code() == pkgerrors.CodeNotFound {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "order_number", orderNumber), "payment notification for unknown order")
				}
				responses.WriteSuccess(w, map[string]string{"status": "ignored"})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"status":        "confirmed",
			"numero_pedido": order.OrderNumber,
		})
	}
}
