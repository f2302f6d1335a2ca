package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/pagination"
)

// ProductFilters describe the inputs supported by the product list.
type ProductFilters struct {
	CategoryID *uuid.UUID
	OnlyActive bool
	Featured   *bool
	Query      string
}

// Repository defines persistence for the catalog tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) ([]models.Product, string, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	CountOrderItems(ctx context.Context, productID uuid.UUID) (int64, error)
	DeleteProductCartItems(ctx context.Context, productID uuid.UUID) error
	DeleteProductMovements(ctx context.Context, productID uuid.UUID) error
	DeleteProductReviews(ctx context.Context, productID uuid.UUID) error
	DeleteProductFavorites(ctx context.Context, productID uuid.UUID) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error)
	CountCategoryProducts(ctx context.Context, categoryID uuid.UUID) (int64, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Supplier").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) ([]models.Product, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if filters.OnlyActive {
		query = query.Where("ativo = ?", true)
	}
	if filters.CategoryID != nil {
		query = query.Where("categoria_id = ?", *filters.CategoryID)
	}
	if filters.Featured != nil {
		query = query.Where("destaque = ?", *filters.Featured)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		query = query.Where("nome ILIKE ?", "%"+q+"%")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
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

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountOrderItems(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("produto_id = ?", productID).
		Count(&count).Error
	return count, err
}

func (r *repository) DeleteProductCartItems(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("produto_id = ?", productID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) DeleteProductMovements(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("produto_id = ?", productID).
		Delete(&models.InventoryMovement{}).Error
}

func (r *repository) DeleteProductReviews(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("produto_id = ?", productID).
		Delete(&models.Review{}).Error
}

func (r *repository) DeleteProductFavorites(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("produto_id = ?", productID).
		Delete(&models.Favorite{}).Error
}

func (r *repository) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&models.Product{}).Error
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error) {
	query := r.db.WithContext(ctx).Order("nome ASC")
	if onlyActive {
		query = query.Where("ativo = ?", true)
	}
	var rows []models.Category
	err := query.Find(&rows).Error
	return rows, err
}

func (r *repository) CountCategoryProducts(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("categoria_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Category{}).Error
}
