package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/pagination"
)

// Repository defines persistence for the stock movement ledger. Rows are
// insert-only; there is no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, movement *models.InventoryMovement) (*models.InventoryMovement, error)
	InsertBatch(ctx context.Context, movements []models.InventoryMovement) error
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.InventoryMovement, string, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.InventoryMovement, error)
	StockLevel(ctx context.Context, productID uuid.UUID) (int, error)
	StockLevels(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, movement *models.InventoryMovement) (*models.InventoryMovement, error) {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *repository) InsertBatch(ctx context.Context, movements []models.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&movements).Error
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.InventoryMovement, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("produto_id = ?", productID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.InventoryMovement
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.InventoryMovement, error) {
	var rows []models.InventoryMovement
	err := r.db.WithContext(ctx).
		Where("pedido_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) StockLevel(ctx context.Context, productID uuid.UUID) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).
		Model(&models.InventoryMovement{}).
		Select("SUM(CASE tipo WHEN 'saida' THEN -quantidade ELSE quantidade END)").
		Where("produto_id = ?", productID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) StockLevels(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	levels := make(map[uuid.UUID]int, len(productIDs))
	if len(productIDs) == 0 {
		return levels, nil
	}

	type row struct {
		ProductID uuid.UUID `gorm:"column:produto_id"`
		Total     int       `gorm:"column:total"`
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.InventoryMovement{}).
		Select("produto_id, SUM(CASE tipo WHEN 'saida' THEN -quantidade ELSE quantidade END) AS total").
		Where("produto_id IN ?", productIDs).
		Group("produto_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		levels[r.ProductID] = r.Total
	}
	return levels, nil
}
