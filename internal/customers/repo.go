package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/pagination"
)

// Repository defines persistence for customers and their address book.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindByAuthUserID(ctx context.Context, authUserID uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, params pagination.Params, query string) ([]models.Customer, string, error)

	CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error)
	FindAddress(ctx context.Context, customerID uuid.UUID, cep, number string) (*models.Address, error)
	ListAddresses(ctx context.Context, customerID uuid.UUID) ([]models.Address, error)
	ClearDefaultAddress(ctx context.Context, customerID uuid.UUID) error
	DeleteAddress(ctx context.Context, customerID, addressID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("Addresses").
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindByAuthUserID(ctx context.Context, authUserID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("auth_user_id = ?", authUserID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, search string) ([]models.Customer, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if s := strings.TrimSpace(search); s != "" {
		query = query.Where("nome ILIKE ? OR email ILIKE ?", "%"+s+"%", "%"+s+"%")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Customer
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

func (r *repository) CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

func (r *repository) FindAddress(ctx context.Context, customerID uuid.UUID, cep, number string) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("cliente_id = ? AND cep = ? AND numero = ?", customerID, cep, number).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) ListAddresses(ctx context.Context, customerID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Where("cliente_id = ?", customerID).
		Order("padrao DESC").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ClearDefaultAddress(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("cliente_id = ?", customerID).
		Update("padrao", false).Error
}

func (r *repository) DeleteAddress(ctx context.Context, customerID, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cliente_id = ? AND id = ?", customerID, addressID).
		Delete(&models.Address{}).Error
}
