package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/semprebellasuporte2025/semprebella-backend/api/middleware"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
)

func TestGetMyOrderHidesOtherCustomers(t *testing.T) {
	orderID := uuid.New()
	stub := &stubOrdersService{
		order: &models.Order{
			ID:          orderID,
			OrderNumber: "SB000050",
			CustomerID:  uuid.New(),
			Status:      enums.OrderStatusPending,
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/pedidos/"+orderID.String(), nil)
	req = req.WithContext(middleware.WithCustomerID(context.Background(), uuid.NewString()))
	req = withPathID(req, "id", orderID.String())
	rec := httptest.NewRecorder()
	GetMyOrder(stub, testLogg()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another customer's order, got %d", rec.Code)
	}
}

func TestGetMyOrderReturnsOwnOrder(t *testing.T) {
	orderID := uuid.New()
	customerID := uuid.New()
	stub := &stubOrdersService{
		order: &models.Order{
			ID:          orderID,
			OrderNumber: "SB000051",
			CustomerID:  customerID,
			Status:      enums.OrderStatusPaid,
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/pedidos/"+orderID.String(), nil)
	req = req.WithContext(middleware.WithCustomerID(context.Background(), customerID.String()))
	req = withPathID(req, "id", orderID.String())
	rec := httptest.NewRecorder()
	GetMyOrder(stub, testLogg()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestAdminCancelOrderUsesActorFromToken(t *testing.T) {
	orderID := uuid.New()
	actorID := uuid.New()
	stub := &stubOrdersService{
		order: &models.Order{
			ID:          orderID,
			OrderNumber: "SB000052",
			Status:      enums.OrderStatusCanceled,
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/pedidos/"+orderID.String()+"/cancelar", nil)
	req = req.WithContext(middleware.WithUserID(context.Background(), actorID.String()))
	req = withPathID(req, "id", orderID.String())
	rec := httptest.NewRecorder()
	AdminCancelOrder(stub, testLogg()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if len(stub.canceled) != 1 || stub.canceled[0] != orderID {
		t.Fatalf("cancel not forwarded to the service")
	}
	if stub.cancelActor == nil || *stub.cancelActor != actorID {
		t.Fatalf("actor id must come from the token")
	}
}

func TestAdminListOrdersRejectsBadStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/pedidos?status=despachado", nil)
	rec := httptest.NewRecorder()
	AdminListOrders(&stubOrdersService{}, testLogg()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}
