package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
)

// Repository defines persistence for storefront credential rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.AuthUser) (*models.AuthUser, error)
	FindByEmail(ctx context.Context, email string) (*models.AuthUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AuthUser, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	FindAdmin(ctx context.Context, userID uuid.UUID, email string) (*models.AdminUser, error)
	TouchAdminLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
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

func (r *repository) Create(ctx context.Context, user *models.AuthUser) (*models.AuthUser, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	var user models.AuthUser
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AuthUser, error) {
	var user models.AuthUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AuthUser{}).
		Where("id = ?", id).
		UpdateColumn("ultimo_login", at).Error
}

// FindAdmin matches a back-office row by id or email, the same OR lookup
// the admin panel always used.
func (r *repository) FindAdmin(ctx context.Context, userID uuid.UUID, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := r.db.WithContext(ctx).
		Where("id = ? OR LOWER(email) = ?", userID, strings.ToLower(strings.TrimSpace(email))).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *repository) TouchAdminLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		UpdateColumn("ultimo_login", at).Error
}
