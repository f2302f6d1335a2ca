package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	products   map[uuid.UUID]*models.Product
	categories map[uuid.UUID]*models.Category

	orderItemCounts  map[uuid.UUID]int64
	deletedCarts     []uuid.UUID
	deletedLedger    []uuid.UUID
	deletedReviews   []uuid.UUID
	deletedFavorites []uuid.UUID
	deletedProducts  []uuid.UUID
	updates          map[string]any
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		products:        map[uuid.UUID]*models.Product{},
		categories:      map[uuid.UUID]*models.Category{},
		orderItemCounts: map[uuid.UUID]int64{},
	}
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) CreateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.products[p.ID] = p
	return p, nil
}

func (s *stubCatalogRepo) UpdateProduct(_ context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubCatalogRepo) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubCatalogRepo) ListProducts(_ context.Context, _ pagination.Params, _ ProductFilters) ([]models.Product, string, error) {
	var rows []models.Product
	for _, p := range s.products {
		rows = append(rows, *p)
	}
	return rows, "", nil
}

func (s *stubCatalogRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.products[id]
	return ok, nil
}

func (s *stubCatalogRepo) CountOrderItems(_ context.Context, id uuid.UUID) (int64, error) {
	return s.orderItemCounts[id], nil
}

func (s *stubCatalogRepo) DeleteProductCartItems(_ context.Context, id uuid.UUID) error {
	s.deletedCarts = append(s.deletedCarts, id)
	return nil
}

func (s *stubCatalogRepo) DeleteProductMovements(_ context.Context, id uuid.UUID) error {
	s.deletedLedger = append(s.deletedLedger, id)
	return nil
}

func (s *stubCatalogRepo) DeleteProductReviews(_ context.Context, id uuid.UUID) error {
	s.deletedReviews = append(s.deletedReviews, id)
	return nil
}

func (s *stubCatalogRepo) DeleteProductFavorites(_ context.Context, id uuid.UUID) error {
	s.deletedFavorites = append(s.deletedFavorites, id)
	return nil
}

func (s *stubCatalogRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.deletedProducts = append(s.deletedProducts, id)
	delete(s.products, id)
	return nil
}

func (s *stubCatalogRepo) CreateCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *stubCatalogRepo) UpdateCategory(_ context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubCatalogRepo) FindCategoryByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (s *stubCatalogRepo) ListCategories(_ context.Context, _ bool) ([]models.Category, error) {
	var rows []models.Category
	for _, c := range s.categories {
		rows = append(rows, *c)
	}
	return rows, nil
}

func (s *stubCatalogRepo) CountCategoryProducts(_ context.Context, id uuid.UUID) (int64, error) {
	var count int64
	for _, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			count++
		}
	}
	return count, nil
}

func (s *stubCatalogRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	delete(s.categories, id)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubImageStore struct {
	uploads   []string
	deleted   []string
	deleteErr error
}

func (s *stubImageStore) Upload(_ context.Context, objectName, _ string, _ io.Reader) (string, error) {
	s.uploads = append(s.uploads, objectName)
	return "https://storage.googleapis.com/loja-imagens/" + objectName, nil
}

func (s *stubImageStore) Delete(_ context.Context, objectName string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, objectName)
	return nil
}

func (s *stubImageStore) ObjectName(publicURL string) (string, bool) {
	const prefix = "https://storage.googleapis.com/loja-imagens/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, prefix), true
}

func newCatalogService(t *testing.T, repo *stubCatalogRepo, images imageStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(repo, stubTxRunner{}, images, logg)
	require.NoError(t, err)
	return svc
}

func TestCreateProductValidation(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newCatalogService(t, repo, nil)

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"empty name", CreateProductInput{Price: decimal.NewFromInt(10)}},
		{"zero price", CreateProductInput{Name: "Vestido Midi"}},
		{"promo above price", CreateProductInput{
			Name:       "Vestido Midi",
			Price:      decimal.NewFromInt(100),
			PromoPrice: ptrDecimal(decimal.NewFromInt(120)),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			require.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestCreateProductWithCategory(t *testing.T) {
	repo := newStubCatalogRepo()
	category := &models.Category{ID: uuid.New(), Name: "Vestidos", IsActive: true}
	repo.categories[category.ID] = category
	svc := newCatalogService(t, repo, nil)

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "  Vestido Longo Floral ",
		Price:      decimal.NewFromFloat(189.90),
		PromoPrice: ptrDecimal(decimal.NewFromFloat(149.90)),
		CategoryID: &category.ID,
		Sizes:      []string{"P", "M", "G"},
		IsActive:   true,
	})
	require.NoError(t, err)
	require.Equal(t, "Vestido Longo Floral", created.Name)
	require.True(t, created.EffectivePrice().Equal(decimal.NewFromFloat(149.90)))
}

func TestCreateProductUnknownCategory(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newCatalogService(t, repo, nil)

	missing := uuid.New()
	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Saia Plissada",
		Price:      decimal.NewFromInt(99),
		CategoryID: &missing,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDeleteProductRefusedWhenSold(t *testing.T) {
	repo := newStubCatalogRepo()
	product := &models.Product{ID: uuid.New(), Name: "Blusa Cropped", Price: decimal.NewFromInt(59)}
	repo.products[product.ID] = product
	repo.orderItemCounts[product.ID] = 3
	svc := newCatalogService(t, repo, nil)

	err := svc.DeleteProduct(context.Background(), product.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	require.Empty(t, repo.deletedProducts)
	require.Empty(t, repo.deletedCarts)
}

func TestDeleteProductCascades(t *testing.T) {
	repo := newStubCatalogRepo()
	product := &models.Product{ID: uuid.New(), Name: "Blusa Cropped", Price: decimal.NewFromInt(59)}
	repo.products[product.ID] = product
	svc := newCatalogService(t, repo, nil)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))
	require.Equal(t, []uuid.UUID{product.ID}, repo.deletedCarts)
	require.Equal(t, []uuid.UUID{product.ID}, repo.deletedLedger)
	require.Equal(t, []uuid.UUID{product.ID}, repo.deletedReviews)
	require.Equal(t, []uuid.UUID{product.ID}, repo.deletedFavorites)
	require.Equal(t, []uuid.UUID{product.ID}, repo.deletedProducts)
}

func TestDeleteProductRemovesStoredImages(t *testing.T) {
	repo := newStubCatalogRepo()
	product := &models.Product{
		ID:    uuid.New(),
		Name:  "Blusa Cropped",
		Price: decimal.NewFromInt(59),
		ImageURLs: pq.StringArray{
			"https://storage.googleapis.com/loja-imagens/produtos/a/1.jpg",
			"https://cdn.externa.com/fora-do-bucket.jpg",
			"https://storage.googleapis.com/loja-imagens/produtos/a/2.jpg",
		},
	}
	repo.products[product.ID] = product
	images := &stubImageStore{}
	svc := newCatalogService(t, repo, images)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))
	require.Equal(t, []string{"produtos/a/1.jpg", "produtos/a/2.jpg"}, images.deleted)
}

func TestDeleteProductSurvivesStorageFailure(t *testing.T) {
	repo := newStubCatalogRepo()
	product := &models.Product{
		ID:        uuid.New(),
		Name:      "Blusa Cropped",
		Price:     decimal.NewFromInt(59),
		ImageURLs: pq.StringArray{"https://storage.googleapis.com/loja-imagens/produtos/b/1.jpg"},
	}
	repo.products[product.ID] = product
	images := &stubImageStore{deleteErr: errors.New("gcs indisponível")}
	svc := newCatalogService(t, repo, images)

	// the row delete is committed; the object cleanup is best effort
	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))
	require.Equal(t, []uuid.UUID{product.ID}, repo.deletedProducts)
}

func TestUploadProductImage(t *testing.T) {
	repo := newStubCatalogRepo()
	product := &models.Product{ID: uuid.New(), Name: "Conjunto Alfaiataria", Price: decimal.NewFromInt(259)}
	repo.products[product.ID] = product
	images := &stubImageStore{}
	svc := newCatalogService(t, repo, images)

	_, err := svc.UploadProductImage(context.Background(), product.ID, "foto.jpg", "image/jpeg", strings.NewReader("img"))
	require.NoError(t, err)
	require.Len(t, images.uploads, 1)
	require.True(t, strings.HasPrefix(images.uploads[0], "produtos/"+product.ID.String()+"/"))
	require.True(t, strings.HasSuffix(images.uploads[0], ".jpg"))
	require.Contains(t, repo.updates, "imagens")
}

func TestUploadProductImageWithoutStore(t *testing.T) {
	repo := newStubCatalogRepo()
	product := &models.Product{ID: uuid.New(), Name: "Conjunto", Price: decimal.NewFromInt(100)}
	repo.products[product.ID] = product
	svc := newCatalogService(t, repo, nil)

	_, err := svc.UploadProductImage(context.Background(), product.ID, "foto.png", "image/png", strings.NewReader("img"))
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestDeleteCategoryRefusedWithProducts(t *testing.T) {
	repo := newStubCatalogRepo()
	category := &models.Category{ID: uuid.New(), Name: "Acessórios"}
	repo.categories[category.ID] = category
	repo.products[uuid.New()] = &models.Product{ID: uuid.New(), Name: "Bolsa", Price: decimal.NewFromInt(79), CategoryID: &category.ID}
	svc := newCatalogService(t, repo, nil)

	err := svc.DeleteCategory(context.Background(), category.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestDeleteCategoryEmpty(t *testing.T) {
	repo := newStubCatalogRepo()
	category := &models.Category{ID: uuid.New(), Name: "Acessórios"}
	repo.categories[category.ID] = category
	svc := newCatalogService(t, repo, nil)

	require.NoError(t, svc.DeleteCategory(context.Background(), category.ID))
	require.Empty(t, repo.categories)
}

func ptrDecimal(d decimal.Decimal) *decimal.Decimal { return &d }
