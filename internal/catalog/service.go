package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/pagination"
)

// Service exposes product and category management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) ([]models.Product, string, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	Exists(ctx context.Context, productID uuid.UUID) (bool, error)
	UploadProductImage(ctx context.Context, productID uuid.UUID, filename, contentType string, body io.Reader) (*models.Product, error)

	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID uuid.UUID, input CategoryInput) (*models.Category, error)
	ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	PromoPrice  *decimal.Decimal
	CategoryID  *uuid.UUID
	SupplierID  *uuid.UUID
	Sizes       []string
	Colors      []string
	Materials   []string
	ImageURLs   []string
	IsActive    bool
	IsFeatured  bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	PromoPrice  *decimal.Decimal
	ClearPromo  bool
	CategoryID  *uuid.UUID
	SupplierID  *uuid.UUID
	Sizes       *[]string
	Colors      *[]string
	Materials   *[]string
	ImageURLs   *[]string
	IsActive    *bool
	IsFeatured  *bool
}

// CategoryInput holds the payload for category writes.
type CategoryInput struct {
	Name        string
	Description *string
	IsActive    bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type imageStore interface {
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, objectName string) error
	ObjectName(publicURL string) (string, bool)
}

type service struct {
	repo     Repository
	dbClient txRunner
	images   imageStore
	logg     *logger.Logger
}

// NewService constructs a catalog service instance. The image store may be
// nil when uploads are disabled.
func NewService(repo Repository, dbClient txRunner, images imageStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbClient: dbClient, images: images, logg: logg}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome do produto é obrigatório")
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "preço deve ser maior que zero")
	}
	if err := validatePromoPrice(input.PromoPrice, input.Price); err != nil {
		return nil, err
	}
	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		PromoPrice:  input.PromoPrice,
		CategoryID:  input.CategoryID,
		SupplierID:  input.SupplierID,
		Sizes:       pq.StringArray(input.Sizes),
		Colors:      pq.StringArray(input.Colors),
		Materials:   pq.StringArray(input.Materials),
		ImageURLs:   pq.StringArray(input.ImageURLs),
		IsActive:    input.IsActive,
		IsFeatured:  input.IsFeatured,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome do produto é obrigatório")
		}
		updates["nome"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["descricao"] = *input.Description
	}

	price := product.Price
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "preço deve ser maior que zero")
		}
		price = *input.Price
		updates["preco"] = *input.Price
	}
	if input.ClearPromo {
		updates["preco_promocional"] = nil
	} else if input.PromoPrice != nil {
		if err := validatePromoPrice(input.PromoPrice, price); err != nil {
			return nil, err
		}
		updates["preco_promocional"] = *input.PromoPrice
	}

	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		updates["categoria_id"] = *input.CategoryID
	}
	if input.SupplierID != nil {
		updates["fornecedor_id"] = *input.SupplierID
	}
	if input.Sizes != nil {
		updates["tamanhos"] = pq.StringArray(*input.Sizes)
	}
	if input.Colors != nil {
		updates["cores"] = pq.StringArray(*input.Colors)
	}
	if input.Materials != nil {
		updates["materiais"] = pq.StringArray(*input.Materials)
	}
	if input.ImageURLs != nil {
		updates["imagens"] = pq.StringArray(*input.ImageURLs)
	}
	if input.IsActive != nil {
		updates["ativo"] = *input.IsActive
	}
	if input.IsFeatured != nil {
		updates["destaque"] = *input.IsFeatured
	}

	if len(updates) == 0 {
		return product, nil
	}
	if err := s.repo.UpdateProduct(ctx, productID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return s.loadProduct(ctx, productID)
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return s.loadProduct(ctx, productID)
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) ([]models.Product, string, error) {
	rows, next, err := s.repo.ListProducts(ctx, params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, "", err
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return rows, next, nil
}

// DeleteProduct removes a product plus its cart lines, ledger entries,
// reviews and favorites in one transaction. Products already sold are kept
// so order history stays intact. Stored images are removed after the
// commit, best effort: a failed object delete is logged, never rolled
// back into the database state.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		sold, err := txRepo.CountOrderItems(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count order items")
		}
		if sold > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "produto possui pedidos e não pode ser excluído").
				WithDetails(map[string]any{"pedidos_vinculados": sold})
		}

		if err := txRepo.DeleteProductCartItems(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart items")
		}
		if err := txRepo.DeleteProductMovements(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete movements")
		}
		if err := txRepo.DeleteProductReviews(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete reviews")
		}
		if err := txRepo.DeleteProductFavorites(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete favorites")
		}
		if err := txRepo.DeleteProduct(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	s.cleanupStoredImages(ctx, productID, product.ImageURLs)
	return nil
}

func (s *service) cleanupStoredImages(ctx context.Context, productID uuid.UUID, urls []string) {
	if s.images == nil {
		return
	}
	ctx = s.logg.WithField(ctx, "produto_id", productID.String())
	for _, url := range urls {
		objectName, ok := s.images.ObjectName(url)
		if !ok {
			continue
		}
		if err := s.images.Delete(ctx, objectName); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "object", objectName), "gcs: delete product image", err)
		}
	}
}

func (s *service) Exists(ctx context.Context, productID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, productID)
}

func (s *service) UploadProductImage(ctx context.Context, productID uuid.UUID, filename, contentType string, body io.Reader) (*models.Product, error) {
	if s.images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "armazenamento de imagens indisponível")
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(filename))
	objectName := fmt.Sprintf("produtos/%s/%s%s", productID, uuid.NewString(), ext)
	url, err := s.images.Upload(ctx, objectName, contentType, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gcs: upload image")
	}

	urls := append([]string(product.ImageURLs), url)
	if err := s.repo.UpdateProduct(ctx, productID, map[string]any{"imagens": pq.StringArray(urls)}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product images")
	}
	return s.loadProduct(ctx, productID)
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome da categoria é obrigatório")
	}
	category := &models.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		IsActive:    input.IsActive,
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "já existe uma categoria com esse nome")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	return created, nil
}

func (s *service) UpdateCategory(ctx context.Context, categoryID uuid.UUID, input CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome da categoria é obrigatório")
	}
	if _, err := s.repo.FindCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "categoria não encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}
	updates := map[string]any{
		"nome":      strings.TrimSpace(input.Name),
		"descricao": input.Description,
		"ativo":     input.IsActive,
	}
	if err := s.repo.UpdateCategory(ctx, categoryID, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "já existe uma categoria com esse nome")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update category")
	}
	return s.repo.FindCategoryByID(ctx, categoryID)
}

func (s *service) ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx, onlyActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	return rows, nil
}

func (s *service) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "categoria não encontrada")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}
	count, err := s.repo.CountCategoryProducts(ctx, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "categoria possui produtos vinculados").
			WithDetails(map[string]any{"produtos_vinculados": count})
	}
	if err := s.repo.DeleteCategory(ctx, categoryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete category")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "produto não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func (s *service) ensureCategory(ctx context.Context, categoryID uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "categoria não encontrada")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}
	return nil
}

func validatePromoPrice(promo *decimal.Decimal, price decimal.Decimal) error {
	if promo == nil {
		return nil
	}
	if promo.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "preço promocional deve ser maior que zero")
	}
	if promo.GreaterThanOrEqual(price) {
		return pkgerrors.New(pkgerrors.CodeValidation, "preço promocional deve ser menor que o preço")
	}
	return nil
}
