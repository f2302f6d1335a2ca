package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	couponssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/coupons"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
)

func TestValidateCoupon(t *testing.T) {
	t.Run("success returns discounted total", func(t *testing.T) {
		stub := &stubCouponService{
			validation: &couponssvc.Validation{
				Coupon: &models.Coupon{
					ID:   uuid.New(),
					Code: "BEMVINDA10",
					Type: enums.CouponTypePercentage,
				},
				Discount: decimal.NewFromInt(20),
			},
		}

		body := `{"codigo":"BEMVINDA10","subtotal":"200.00"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cupons/validar", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ValidateCoupon(stub, testLogg()).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}

		var envelope struct {
			Data validateCouponResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !envelope.Data.Discount.Equal(decimal.NewFromInt(20)) {
			t.Fatalf("unexpected discount %s", envelope.Data.Discount)
		}
		if !envelope.Data.Total.Equal(decimal.NewFromInt(180)) {
			t.Fatalf("unexpected total %s", envelope.Data.Total)
		}
	})

	t.Run("unknown code propagates error", func(t *testing.T) {
		stub := &stubCouponService{
			validateErr: pkgerrors.New(pkgerrors.CodeNotFound, "cupom não encontrado"),
		}

		body := `{"codigo":"NADA","subtotal":"50.00"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cupons/validar", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ValidateCoupon(stub, testLogg()).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("missing code rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cupons/validar", strings.NewReader(`{"subtotal":"50.00"}`))
		rec := httptest.NewRecorder()
		ValidateCoupon(&stubCouponService{}, testLogg()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

type stubCouponService struct {
	validation  *couponssvc.Validation
	validateErr error
}

func (s *stubCouponService) Create(ctx context.Context, input couponssvc.CouponInput) (*models.Coupon, error) {
	panic("unimplemented")
}

func (s *stubCouponService) Update(ctx context.Context, couponID uuid.UUID, input couponssvc.CouponInput) (*models.Coupon, error) {
	panic("unimplemented")
}

func (s *stubCouponService) List(ctx context.Context, onlyActive bool) ([]models.Coupon, error) {
	panic("unimplemented")
}

func (s *stubCouponService) Delete(ctx context.Context, couponID uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubCouponService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*couponssvc.Validation, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.validation, nil
}

func (s *stubCouponService) RedeemTx(ctx context.Context, tx *gorm.DB, couponID uuid.UUID) error {
	panic("unimplemented")
}
