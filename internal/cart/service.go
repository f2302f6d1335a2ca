package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
)

// AddItemInput holds the payload to add a line to a cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Size      *string
	Color     *string
	Material  *string
	Quantity  int
}

// Service exposes the persisted cart operations.
type Service interface {
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	UpdateItemQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
	ItemCount(ctx context.Context, customerID uuid.UUID) (int, error)

	ActiveForCheckout(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*models.CartRecord, error)
	MarkConvertedTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

type productLoader interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     Repository
	products productLoader
}

// NewService constructs the cart service.
func NewService(repo Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

// GetOrCreate returns the customer's active cart, creating one when none
// exists. A concurrent create loses the partial-unique race and re-reads.
func (s *service) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	cart, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}

	created, err := s.repo.Create(ctx, &models.CartRecord{
		CustomerID: customerID,
		Status:     enums.CartStatusActive,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return s.repo.FindActiveByCustomer(ctx, customerID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart")
	}
	return created, nil
}

func (s *service) AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantidade deve ser maior que zero")
	}
	product, err := s.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "produto indisponível")
	}
	if err := validateVariant(product, input.Size, input.Color, input.Material); err != nil {
		return nil, err
	}

	cart, err := s.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	for _, item := range cart.Items {
		if item.SameVariant(input.ProductID, input.Size, input.Color) {
			if err := s.repo.UpdateItemQuantity(ctx, item.ID, item.Quantity+input.Quantity); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: merge cart item")
			}
			return s.reload(ctx, cart.ID)
		}
	}

	if _, err := s.repo.InsertItem(ctx, &models.CartItem{
		CartID:    cart.ID,
		ProductID: input.ProductID,
		Size:      input.Size,
		Color:     input.Color,
		Material:  input.Material,
		ImageURL:  firstImage(product),
		Quantity:  input.Quantity,
		UnitPrice: product.EffectivePrice(),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart item")
	}
	return s.reload(ctx, cart.ID)
}

// UpdateItemQuantity sets a line's quantity. Zero removes the line.
func (s *service) UpdateItemQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*models.CartRecord, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantidade não pode ser negativa")
	}
	cart, item, err := s.findOwnedItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart item")
		}
	} else {
		if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
		}
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*models.CartRecord, error) {
	return s.UpdateItemQuantity(ctx, customerID, itemID, 0)
}

func (s *service) Clear(ctx context.Context, customerID uuid.UUID) error {
	cart, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	if err := s.repo.DeleteItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return nil
}

func (s *service) ItemCount(ctx context.Context, customerID uuid.UUID) (int, error) {
	cart, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	return cart.ItemCount(), nil
}

// ActiveForCheckout loads the active cart inside the checkout transaction
// and refuses empty or already-converted carts.
func (s *service) ActiveForCheckout(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*models.CartRecord, error) {
	cart, err := s.repo.WithTx(tx).FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "carrinho já foi finalizado ou não existe")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "carrinho vazio")
	}
	return cart, nil
}

func (s *service) MarkConvertedTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	converted, err := s.repo.WithTx(tx).ConvertActive(ctx, cartID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: convert cart")
	}
	if !converted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "carrinho já foi finalizado")
	}
	return nil
}

func (s *service) reload(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload cart")
	}
	return cart, nil
}

func (s *service) findOwnedItem(ctx context.Context, customerID, itemID uuid.UUID) (*models.CartRecord, *models.CartItem, error) {
	cart, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "carrinho não encontrado")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return cart, &cart.Items[i], nil
		}
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "item não encontrado no carrinho")
}

func validateVariant(product *models.Product, size, color, material *string) error {
	if len(product.Sizes) > 0 && size == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tamanho é obrigatório para este produto")
	}
	if size != nil && len(product.Sizes) > 0 && !contains(product.Sizes, *size) {
		return pkgerrors.New(pkgerrors.CodeValidation, "tamanho indisponível")
	}
	if color != nil && len(product.Colors) > 0 && !contains(product.Colors, *color) {
		return pkgerrors.New(pkgerrors.CodeValidation, "cor indisponível")
	}
	if material != nil && len(product.Materials) > 0 && !contains(product.Materials, *material) {
		return pkgerrors.New(pkgerrors.CodeValidation, "material indisponível")
	}
	return nil
}

// firstImage returns the product's primary image for the line snapshot.
func firstImage(product *models.Product) *string {
	if len(product.ImageURLs) == 0 {
		return nil
	}
	url := product.ImageURLs[0]
	return &url
}

func contains(values []string, needle string) bool {
	for _, v := range values {
		if v == needle {
			return true
		}
	}
	return false
}
