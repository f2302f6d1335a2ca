package checkout

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
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
)

type stubCheckoutRepo struct {
	sequence     int64
	orders       []*models.Order
	paymentLinks map[uuid.UUID][2]string
	linkErr      error
}

func newStubCheckoutRepo() *stubCheckoutRepo {
	return &stubCheckoutRepo{sequence: 41, paymentLinks: map[uuid.UUID][2]string{}}
}

func (r *stubCheckoutRepo) NextOrderNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.sequence++
	return r.sequence, nil
}

func (r *stubCheckoutRepo) InsertOrder(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	order.ID = uuid.New()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	r.orders = append(r.orders, order)
	return nil
}

func (r *stubCheckoutRepo) SetPaymentLink(ctx context.Context, orderID uuid.UUID, ref, url string) error {
	if r.linkErr != nil {
		return r.linkErr
	}
	r.paymentLinks[orderID] = [2]string{ref, url}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubCustomerResolver struct {
	customer *models.Customer
	address  *models.Address
}

func (s *stubCustomerResolver) ResolveOrCreateTx(ctx context.Context, tx *gorm.DB, input customers.CustomerInput, authUserID *uuid.UUID) (*models.Customer, error) {
	return s.customer, nil
}

func (s *stubCustomerResolver) FindOrCreateAddressTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, input customers.AddressInput) (*models.Address, error) {
	return s.address, nil
}

type stubCartGateway struct {
	cart        *models.CartRecord
	activeErr   error
	convertedID uuid.UUID
}

func (s *stubCartGateway) ActiveForCheckout(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*models.CartRecord, error) {
	if s.activeErr != nil {
		return nil, s.activeErr
	}
	return s.cart, nil
}

func (s *stubCartGateway) MarkConvertedTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	s.convertedID = cartID
	return nil
}

type stubCouponGateway struct {
	validation *coupons.Validation
	redeemed   []uuid.UUID
}

func (s *stubCouponGateway) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*coupons.Validation, error) {
	if s.validation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cupom não encontrado")
	}
	return s.validation, nil
}

func (s *stubCouponGateway) RedeemTx(ctx context.Context, tx *gorm.DB, couponID uuid.UUID) error {
	s.redeemed = append(s.redeemed, couponID)
	return nil
}

type stubStockRecorder struct {
	movements []models.InventoryMovement
}

func (s *stubStockRecorder) RecordOrderMovements(ctx context.Context, tx *gorm.DB, movements []models.InventoryMovement) error {
	s.movements = append(s.movements, movements...)
	return nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubPreferences struct {
	pref  *mercadopago.Preference
	err   error
	calls int
}

func (s *stubPreferences) CreatePreference(ctx context.Context, params mercadopago.PreferenceParams) (*mercadopago.Preference, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.pref, nil
}

type checkoutFixture struct {
	repo    *stubCheckoutRepo
	carts   *stubCartGateway
	coupons *stubCouponGateway
	stock   *stubStockRecorder
	events  *stubEmitter
	prefs   *stubPreferences
	svc     Service
}

func strPtr(v string) *string { return &v }

func fixtureCart(customerID uuid.UUID) *models.CartRecord {
	cartID := uuid.New()
	vestido := &models.Product{ID: uuid.New(), Name: "Vestido Midi", IsActive: true}
	bolsa := &models.Product{
		ID:        uuid.New(),
		Name:      "Bolsa Tiracolo",
		ImageURLs: pq.StringArray{"https://storage.googleapis.com/loja-imagens/produtos/bolsa-tiracolo.jpg"},
		IsActive:  true,
	}
	return &models.CartRecord{
		ID:         cartID,
		CustomerID: customerID,
		Status:     enums.CartStatusActive,
		Items: []models.CartItem{
			{
				ID:        uuid.New(),
				CartID:    cartID,
				ProductID: vestido.ID,
				Product:   vestido,
				Size:      strPtr("M"),
				Material:  strPtr("viscose"),
				ImageURL:  strPtr("https://storage.googleapis.com/loja-imagens/produtos/vestido-midi.jpg"),
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("149.90"),
			},
			{
				ID:        uuid.New(),
				CartID:    cartID,
				ProductID: bolsa.ID,
				Product:   bolsa,
				Quantity:  1,
				UnitPrice: decimal.RequireFromString("89.90"),
			},
		},
	}
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	customer := &models.Customer{ID: uuid.New(), Name: "Marina Duarte", Email: "marina@example.com"}
	address := &models.Address{
		ID:           uuid.New(),
		CustomerID:   customer.ID,
		CEP:          "01310-100",
		Street:       "Avenida Paulista",
		Number:       "1000",
		Neighborhood: "Bela Vista",
		City:         "São Paulo",
		State:        "SP",
	}

	f := &checkoutFixture{
		repo:    newStubCheckoutRepo(),
		carts:   &stubCartGateway{cart: fixtureCart(customer.ID)},
		coupons: &stubCouponGateway{},
		stock:   &stubStockRecorder{},
		events:  &stubEmitter{},
		prefs:   &stubPreferences{pref: &mercadopago.Preference{ID: "pref-123", InitPoint: "https://pay.example.com/pref-123"}},
	}

	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(
		f.repo,
		stubTxRunner{},
		&stubCustomerResolver{customer: customer, address: address},
		f.carts,
		f.coupons,
		f.stock,
		f.events,
		f.prefs,
		config.CheckoutConfig{OrderNumberPrefix: "SB"},
		logg,
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func baseInput() Input {
	return Input{
		Customer: customers.CustomerInput{Name: "Marina Duarte", Email: "marina@example.com"},
		Address: customers.AddressInput{
			CEP:          "01310-100",
			Street:       "Avenida Paulista",
			Number:       "1000",
			Neighborhood: "Bela Vista",
			City:         "São Paulo",
			State:        "SP",
		},
		PaymentMethod: enums.PaymentMethodPix,
		ShippingFee:   decimal.RequireFromString("15.00"),
	}
}

func TestExecuteCreatesOrderWithSnapshots(t *testing.T) {
	f := newCheckoutFixture(t)

	result, err := f.svc.Execute(context.Background(), baseInput())
	require.NoError(t, err)
	require.Len(t, f.repo.orders, 1)

	order := result.Order
	require.Equal(t, "SB000042", order.OrderNumber)
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.Len(t, order.Items, len(f.carts.cart.Items))

	// subtotal is the sum of unit price times quantity across all lines
	require.True(t, order.Subtotal.Equal(decimal.RequireFromString("389.70")), order.Subtotal.String())
	require.True(t, order.Discount.IsZero())
	require.True(t, order.Total.Equal(decimal.RequireFromString("404.70")), order.Total.String())

	require.Equal(t, "Vestido Midi", order.Items[0].ProductName)
	require.Equal(t, "M", *order.Items[0].Size)
	require.Equal(t, "viscose", *order.Items[0].Material)
	require.Equal(t, "https://storage.googleapis.com/loja-imagens/produtos/vestido-midi.jpg", *order.Items[0].ImageURL)
	require.True(t, order.Items[0].LineTotal.Equal(decimal.RequireFromString("299.80")))

	// a line with no stored image falls back to the product's first image
	require.Nil(t, order.Items[1].Material)
	require.Equal(t, "https://storage.googleapis.com/loja-imagens/produtos/bolsa-tiracolo.jpg", *order.Items[1].ImageURL)

	require.Equal(t, "Avenida Paulista", order.ShippingAddress.Street)
	require.Equal(t, "SP", order.ShippingAddress.State)

	require.Nil(t, result.PaymentURL)
	require.Equal(t, 0, f.prefs.calls)
}

func TestExecuteRecordsMovementsAndConvertsCart(t *testing.T) {
	f := newCheckoutFixture(t)

	result, err := f.svc.Execute(context.Background(), baseInput())
	require.NoError(t, err)

	require.Len(t, f.stock.movements, 2)
	for _, movement := range f.stock.movements {
		require.Equal(t, enums.MovementTypeSaida, movement.Type)
		require.Equal(t, result.Order.ID, *movement.OrderID)
	}
	require.Equal(t, 2, f.stock.movements[0].Quantity)

	require.Equal(t, f.carts.cart.ID, f.carts.convertedID)

	require.Len(t, f.events.events, 1)
	require.Equal(t, enums.EventOrderCreated, f.events.events[0].EventType)
	require.Equal(t, result.Order.ID, f.events.events[0].AggregateID)
}

func TestExecuteAppliesCoupon(t *testing.T) {
	f := newCheckoutFixture(t)
	coupon := &models.Coupon{ID: uuid.New(), Code: "BEMVINDA10", Type: enums.CouponTypePercentage, Value: decimal.RequireFromString("10")}
	f.coupons.validation = &coupons.Validation{Coupon: coupon, Discount: decimal.RequireFromString("38.97")}

	input := baseInput()
	input.CouponCode = strPtr(" bemvinda10 ")

	result, err := f.svc.Execute(context.Background(), input)
	require.NoError(t, err)

	order := result.Order
	require.True(t, order.Discount.Equal(decimal.RequireFromString("38.97")))
	require.True(t, order.Total.Equal(decimal.RequireFromString("365.73")), order.Total.String())
	require.Equal(t, "BEMVINDA10", *order.CouponCode)
	require.Equal(t, []uuid.UUID{coupon.ID}, f.coupons.redeemed)
}

func TestExecuteInvalidCouponAbortsCheckout(t *testing.T) {
	f := newCheckoutFixture(t)

	input := baseInput()
	input.CouponCode = strPtr("NAOEXISTE")

	_, err := f.svc.Execute(context.Background(), input)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	require.Empty(t, f.repo.orders)
}

func TestExecuteCheckoutProSetsPaymentURL(t *testing.T) {
	f := newCheckoutFixture(t)

	input := baseInput()
	input.PaymentMethod = enums.PaymentMethodCheckoutPro

	result, err := f.svc.Execute(context.Background(), input)
	require.NoError(t, err)

	require.NotNil(t, result.PaymentURL)
	require.Equal(t, "https://pay.example.com/pref-123", *result.PaymentURL)
	require.Equal(t, "pref-123", *result.Order.PaymentRef)

	stored := f.repo.paymentLinks[result.Order.ID]
	require.Equal(t, "pref-123", stored[0])
}

func TestExecutePaymentFailureKeepsOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.prefs.err = errors.New("gateway unavailable")

	input := baseInput()
	input.PaymentMethod = enums.PaymentMethodCheckoutPro

	result, err := f.svc.Execute(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, f.repo.orders, 1)
	require.Equal(t, enums.OrderStatusPending, result.Order.Status)
	require.Nil(t, result.PaymentURL)
	require.Nil(t, result.Order.PaymentURL)
}

func TestExecuteConvertedCartConflict(t *testing.T) {
	f := newCheckoutFixture(t)
	f.carts.activeErr = pkgerrors.New(pkgerrors.CodeStateConflict, "carrinho já foi finalizado ou não existe")

	_, err := f.svc.Execute(context.Background(), baseInput())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	require.Empty(t, f.repo.orders)
}

func TestExecuteRejectsUnknownPaymentMethod(t *testing.T) {
	f := newCheckoutFixture(t)

	input := baseInput()
	input.PaymentMethod = enums.PaymentMethod("boleto")

	_, err := f.svc.Execute(context.Background(), input)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
