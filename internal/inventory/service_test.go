package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/pagination"
)

type stubInventoryRepo struct {
	inserted  []models.InventoryMovement
	levels    map[uuid.UUID]int
	listRows  []models.InventoryMovement
	batchSize int
}

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubInventoryRepo) Insert(_ context.Context, m *models.InventoryMovement) (*models.InventoryMovement, error) {
	s.inserted = append(s.inserted, *m)
	return m, nil
}

func (s *stubInventoryRepo) InsertBatch(_ context.Context, ms []models.InventoryMovement) error {
	s.batchSize += len(ms)
	return nil
}

func (s *stubInventoryRepo) ListByProduct(_ context.Context, _ uuid.UUID, _ pagination.Params) ([]models.InventoryMovement, string, error) {
	return s.listRows, "", nil
}

func (s *stubInventoryRepo) ListByOrder(_ context.Context, _ uuid.UUID) ([]models.InventoryMovement, error) {
	return s.listRows, nil
}

func (s *stubInventoryRepo) StockLevel(_ context.Context, id uuid.UUID) (int, error) {
	return s.levels[id], nil
}

func (s *stubInventoryRepo) StockLevels(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	return s.levels, nil
}

type stubProductChecker struct {
	known map[uuid.UUID]bool
}

func (s *stubProductChecker) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return s.known[id], nil
}

func newTestService(t *testing.T, repo *stubInventoryRepo, products *stubProductChecker) Service {
	t.Helper()
	svc, err := NewService(repo, products)
	require.NoError(t, err)
	return svc
}

func TestRegisterMovementEntrada(t *testing.T) {
	productID := uuid.New()
	repo := &stubInventoryRepo{levels: map[uuid.UUID]int{}}
	svc := newTestService(t, repo, &stubProductChecker{known: map[uuid.UUID]bool{productID: true}})

	m, err := svc.RegisterMovement(context.Background(), MovementInput{
		ProductID: productID,
		Type:      enums.MovementTypeEntrada,
		Quantity:  10,
	})
	require.NoError(t, err)
	require.Equal(t, 10, m.Quantity)
	require.Len(t, repo.inserted, 1)
}

func TestRegisterMovementEntradaWithPurchaseValues(t *testing.T) {
	productID := uuid.New()
	repo := &stubInventoryRepo{levels: map[uuid.UUID]int{}}
	svc := newTestService(t, repo, &stubProductChecker{known: map[uuid.UUID]bool{productID: true}})

	unit := decimal.RequireFromString("42.50")
	supplier := "Confecções Aurora LTDA"
	m, err := svc.RegisterMovement(context.Background(), MovementInput{
		ProductID:    productID,
		Type:         enums.MovementTypeEntrada,
		Quantity:     4,
		UnitValue:    &unit,
		SupplierName: &supplier,
	})
	require.NoError(t, err)
	require.True(t, m.UnitValue.Equal(unit))
	require.NotNil(t, m.TotalValue)
	require.True(t, m.TotalValue.Equal(decimal.RequireFromString("170.00")), m.TotalValue.String())
	require.Equal(t, supplier, *m.SupplierName)
}

func TestRegisterMovementRejectsNegativeUnitValue(t *testing.T) {
	productID := uuid.New()
	repo := &stubInventoryRepo{levels: map[uuid.UUID]int{}}
	svc := newTestService(t, repo, &stubProductChecker{known: map[uuid.UUID]bool{productID: true}})

	unit := decimal.RequireFromString("-1.00")
	_, err := svc.RegisterMovement(context.Background(), MovementInput{
		ProductID: productID,
		Type:      enums.MovementTypeEntrada,
		Quantity:  1,
		UnitValue: &unit,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	require.Empty(t, repo.inserted)
}

func TestRegisterMovementSaidaRequiresStock(t *testing.T) {
	productID := uuid.New()
	repo := &stubInventoryRepo{levels: map[uuid.UUID]int{productID: 3}}
	svc := newTestService(t, repo, &stubProductChecker{known: map[uuid.UUID]bool{productID: true}})

	_, err := svc.RegisterMovement(context.Background(), MovementInput{
		ProductID: productID,
		Type:      enums.MovementTypeSaida,
		Quantity:  5,
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
	require.Empty(t, repo.inserted)
}

func TestRegisterMovementAjusteAllowsNegative(t *testing.T) {
	productID := uuid.New()
	repo := &stubInventoryRepo{levels: map[uuid.UUID]int{}}
	svc := newTestService(t, repo, &stubProductChecker{known: map[uuid.UUID]bool{productID: true}})

	m, err := svc.RegisterMovement(context.Background(), MovementInput{
		ProductID: productID,
		Type:      enums.MovementTypeAjuste,
		Quantity:  -2,
	})
	require.NoError(t, err)
	require.Equal(t, -2, m.Quantity)
}

func TestRegisterMovementValidation(t *testing.T) {
	productID := uuid.New()
	repo := &stubInventoryRepo{levels: map[uuid.UUID]int{}}
	svc := newTestService(t, repo, &stubProductChecker{known: map[uuid.UUID]bool{productID: true}})

	cases := []MovementInput{
		{ProductID: productID, Type: enums.MovementType("transferencia"), Quantity: 1},
		{ProductID: productID, Type: enums.MovementTypeEntrada, Quantity: 0},
		{ProductID: productID, Type: enums.MovementTypeSaida, Quantity: -1},
	}
	for _, input := range cases {
		_, err := svc.RegisterMovement(context.Background(), input)
		require.Error(t, err)
		appErr := pkgerrors.As(err)
		require.NotNil(t, appErr)
		require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	}
}

func TestRegisterMovementUnknownProduct(t *testing.T) {
	repo := &stubInventoryRepo{levels: map[uuid.UUID]int{}}
	svc := newTestService(t, repo, &stubProductChecker{known: map[uuid.UUID]bool{}})

	_, err := svc.RegisterMovement(context.Background(), MovementInput{
		ProductID: uuid.New(),
		Type:      enums.MovementTypeEntrada,
		Quantity:  1,
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
