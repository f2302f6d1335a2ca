package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/internal/coupons"
	"github.com/semprebellasuporte2025/semprebella-backend/internal/customers"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/mercadopago"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/outbox"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/types"
)

// Input is one checkout submission.
type Input struct {
	Customer      customers.CustomerInput
	Address       customers.AddressInput
	AuthUserID    *uuid.UUID
	PaymentMethod enums.PaymentMethod
	CouponCode    *string
	ShippingFee   decimal.Decimal
	Notes         *string
}

// Result carries the created order. PaymentURL is only set for methods
// that redirect the customer to an external payment page.
type Result struct {
	Order      *models.Order
	PaymentURL *string
}

// Service runs the checkout flow.
type Service interface {
	Execute(ctx context.Context, input Input) (*Result, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerResolver interface {
	ResolveOrCreateTx(ctx context.Context, tx *gorm.DB, input customers.CustomerInput, authUserID *uuid.UUID) (*models.Customer, error)
	FindOrCreateAddressTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, input customers.AddressInput) (*models.Address, error)
}

type cartGateway interface {
	ActiveForCheckout(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*models.CartRecord, error)
	MarkConvertedTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

type couponGateway interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*coupons.Validation, error)
	RedeemTx(ctx context.Context, tx *gorm.DB, couponID uuid.UUID) error
}

type stockRecorder interface {
	RecordOrderMovements(ctx context.Context, tx *gorm.DB, movements []models.InventoryMovement) error
}

type eventEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type preferenceCreator interface {
	CreatePreference(ctx context.Context, params mercadopago.PreferenceParams) (*mercadopago.Preference, error)
}

type service struct {
	repo      Repository
	dbc       txRunner
	customers customerResolver
	carts     cartGateway
	coupons   couponGateway
	stock     stockRecorder
	events    eventEmitter
	payments  preferenceCreator
	cfg       config.CheckoutConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs the checkout orchestrator. The payment client may
// be nil when checkout_pro is disabled for the deployment.
func NewService(
	repo Repository,
	dbc txRunner,
	customerSvc customerResolver,
	cartSvc cartGateway,
	couponSvc couponGateway,
	stockSvc stockRecorder,
	events eventEmitter,
	payments preferenceCreator,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if dbc == nil {
		return nil, fmt.Errorf("db client required")
	}
	if customerSvc == nil {
		return nil, fmt.Errorf("customer service required")
	}
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		dbc:       dbc,
		customers: customerSvc,
		carts:     cartSvc,
		coupons:   couponSvc,
		stock:     stockSvc,
		events:    events,
		payments:  payments,
		cfg:       cfg,
		logg:      logg,
		now:       time.Now,
	}, nil
}

type orderCreatedPayload struct {
	OrderID       uuid.UUID `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	CustomerID    uuid.UUID `json:"customerId"`
	Total         string    `json:"total"`
	PaymentMethod string    `json:"paymentMethod"`
	ItemCount     int       `json:"itemCount"`
}

// Execute resolves the customer and address, freezes the active cart into
// an order, records stock movements and queues the order.created event,
// all inside one transaction. The payment step runs after commit so a
// gateway outage never undoes a placed order.
func (s *service) Execute(ctx context.Context, input Input) (*Result, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "forma de pagamento inválida")
	}
	if input.ShippingFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "frete não pode ser negativo")
	}

	var order *models.Order
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		customer, err := s.customers.ResolveOrCreateTx(ctx, tx, input.Customer, input.AuthUserID)
		if err != nil {
			return err
		}
		address, err := s.customers.FindOrCreateAddressTx(ctx, tx, customer.ID, input.Address)
		if err != nil {
			return err
		}
		cart, err := s.carts.ActiveForCheckout(ctx, tx, customer.ID)
		if err != nil {
			return err
		}

		subtotal := decimal.Zero
		for _, item := range cart.Items {
			subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		discount := decimal.Zero
		var coupon *models.Coupon
		if code := couponCode(input.CouponCode); code != "" {
			validation, err := s.coupons.Validate(ctx, code, subtotal)
			if err != nil {
				return err
			}
			coupon = validation.Coupon
			discount = validation.Discount
			if err := s.coupons.RedeemTx(ctx, tx, coupon.ID); err != nil {
				return err
			}
		}

		sequence, err := s.repo.NextOrderNumber(ctx, tx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: next order number")
		}

		order = &models.Order{
			OrderNumber:     fmt.Sprintf("%s%06d", s.cfg.OrderNumberPrefix, sequence),
			CustomerID:      customer.ID,
			Status:          enums.OrderStatusPending,
			PaymentMethod:   input.PaymentMethod,
			ShippingAddress: snapshotAddress(address),
			Subtotal:        subtotal,
			Discount:        discount,
			ShippingFee:     input.ShippingFee,
			Total:           subtotal.Sub(discount).Add(input.ShippingFee),
			Notes:           input.Notes,
		}
		if coupon != nil {
			order.CouponID = &coupon.ID
			code := coupon.Code
			order.CouponCode = &code
		}
		for _, item := range cart.Items {
			if item.Product == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "db: cart item missing product")
			}
			qty := decimal.NewFromInt(int64(item.Quantity))
			image := item.ImageURL
			if image == nil && len(item.Product.ImageURLs) > 0 {
				url := item.Product.ImageURLs[0]
				image = &url
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Size:        item.Size,
				Color:       item.Color,
				Material:    item.Material,
				ImageURL:    image,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.UnitPrice.Mul(qty),
			})
		}
		if err := s.repo.InsertOrder(ctx, tx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}

		movements := make([]models.InventoryMovement, 0, len(order.Items))
		reason := "venda " + order.OrderNumber
		for _, line := range order.Items {
			movements = append(movements, models.InventoryMovement{
				ProductID: line.ProductID,
				Type:      enums.MovementTypeSaida,
				Quantity:  line.Quantity,
				Reason:    &reason,
				OrderID:   &order.ID,
			})
		}
		if err := s.stock.RecordOrderMovements(ctx, tx, movements); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record movements")
		}

		if err := s.carts.MarkConvertedTx(ctx, tx, cart.ID); err != nil {
			return err
		}

		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: orderCreatedPayload{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				CustomerID:    order.CustomerID,
				Total:         order.Total.StringFixed(2),
				PaymentMethod: order.PaymentMethod.String(),
				ItemCount:     order.ItemCount(),
			},
			OccurredAt: s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Order: order}
	s.runPaymentStep(ctx, input, order, result)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":       order.ID.String(),
		"order_number":   order.OrderNumber,
		"payment_method": order.PaymentMethod.String(),
		"total":          order.Total.StringFixed(2),
	})
	s.logg.Info(logCtx, "checkout completed")
	return result, nil
}

// runPaymentStep executes the post-commit payment strategy. pix and
// dinheiro settle out of band, so only checkout_pro talks to the gateway.
// Failures here are logged and swallowed; the order stays pendente.
func (s *service) runPaymentStep(ctx context.Context, input Input, order *models.Order, result *Result) {
	if order.PaymentMethod != enums.PaymentMethodCheckoutPro {
		return
	}
	if s.payments == nil {
		s.logg.Warn(ctx, "checkout_pro requested but payment client is not configured")
		return
	}

	items := make([]mercadopago.PreferenceItem, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, mercadopago.PreferenceItem{
			Title:     line.ProductName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Currency:  "BRL",
		})
	}
	pref, err := s.payments.CreatePreference(ctx, mercadopago.PreferenceParams{
		ExternalReference: order.OrderNumber,
		PayerEmail:        input.Customer.Email,
		PayerName:         input.Customer.Name,
		Items:             items,
	})
	if err != nil {
		logCtx := s.logg.WithField(ctx, "order_number", order.OrderNumber)
		s.logg.Error(logCtx, "payment preference creation failed", err)
		return
	}

	if err := s.repo.SetPaymentLink(ctx, order.ID, pref.ID, pref.InitPoint); err != nil {
		logCtx := s.logg.WithField(ctx, "order_number", order.OrderNumber)
		s.logg.Error(logCtx, "failed to store payment link", err)
		return
	}
	ref := pref.ID
	url := pref.InitPoint
	order.PaymentRef = &ref
	order.PaymentURL = &url
	result.PaymentURL = &url
}

func couponCode(code *string) string {
	if code == nil {
		return ""
	}
	return strings.TrimSpace(*code)
}

func snapshotAddress(address *models.Address) types.AddressSnapshot {
	snapshot := types.AddressSnapshot{
		CEP:          address.CEP,
		Street:       address.Street,
		Number:       address.Number,
		Neighborhood: address.Neighborhood,
		City:         address.City,
		State:        address.State,
	}
	if address.Complement != nil {
		snapshot.Complement = *address.Complement
	}
	return snapshot
}
