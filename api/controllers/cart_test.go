package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/api/middleware"
	cartsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/cart"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
)

func TestAddCartItem(t *testing.T) {
	customerID := uuid.New()
	productID := uuid.New()

	t.Run("staff token has no customer", func(t *testing.T) {
		body := `{"produto_id":"` + productID.String() + `","quantidade":1}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(context.Background(), uuid.NewString()))
		rec := httptest.NewRecorder()
		AddCartItem(&stubCartService{}, testLogg()).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 without customer profile, got %d", rec.Code)
		}
	})

	t.Run("invalid product id", func(t *testing.T) {
		body := `{"produto_id":"not-a-uuid","quantidade":1}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		req = req.WithContext(middleware.WithCustomerID(context.Background(), customerID.String()))
		rec := httptest.NewRecorder()
		AddCartItem(&stubCartService{}, testLogg()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid product id, got %d", rec.Code)
		}
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		body := `{"produto_id":"` + productID.String() + `","quantidade":0}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		req = req.WithContext(middleware.WithCustomerID(context.Background(), customerID.String()))
		rec := httptest.NewRecorder()
		AddCartItem(&stubCartService{}, testLogg()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for zero quantity, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubCartService{
			cart: &models.CartRecord{
				ID:         uuid.New(),
				CustomerID: customerID,
				Status:     enums.CartStatusActive,
			},
		}
		body := `{"produto_id":"` + productID.String() + `","tamanho":"M","quantidade":2}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		req = req.WithContext(middleware.WithCustomerID(context.Background(), customerID.String()))
		rec := httptest.NewRecorder()
		AddCartItem(stub, testLogg()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on success, got %d (%s)", rec.Code, rec.Body.String())
		}
		if stub.addInput.ProductID != productID {
			t.Fatalf("product id not forwarded to the service")
		}
		if stub.addInput.Quantity != 2 {
			t.Fatalf("quantity not forwarded to the service")
		}
		if stub.addInput.Size == nil || *stub.addInput.Size != "M" {
			t.Fatalf("size not forwarded to the service")
		}
	})
}

func TestClearCartRequiresCustomer(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	ClearCart(&stubCartService{}, testLogg()).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without customer profile, got %d", rec.Code)
	}
}

type stubCartService struct {
	cart     *models.CartRecord
	addInput cartsvc.AddItemInput
}

func (s *stubCartService) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	return s.cart, nil
}

func (s *stubCartService) AddItem(ctx context.Context, customerID uuid.UUID, input cartsvc.AddItemInput) (*models.CartRecord, error) {
	s.addInput = input
	return s.cart, nil
}

func (s *stubCartService) UpdateItemQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (s *stubCartService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (s *stubCartService) Clear(ctx context.Context, customerID uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubCartService) ItemCount(ctx context.Context, customerID uuid.UUID) (int, error) {
	panic("unimplemented")
}

func (s *stubCartService) ActiveForCheckout(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (s *stubCartService) MarkConvertedTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	panic("unimplemented")
}
