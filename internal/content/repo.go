package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
)

// Repository defines persistence for storefront content rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateBanner(ctx context.Context, banner *models.Banner) (*models.Banner, error)
	UpdateBanner(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindBannerByID(ctx context.Context, id uuid.UUID) (*models.Banner, error)
	ListBanners(ctx context.Context, onlyActive bool) ([]models.Banner, error)
	DeleteBanner(ctx context.Context, id uuid.UUID) error

	CreateInstagramLink(ctx context.Context, link *models.InstagramLink) (*models.InstagramLink, error)
	UpdateInstagramLink(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindInstagramLinkByID(ctx context.Context, id uuid.UUID) (*models.InstagramLink, error)
	ListInstagramLinks(ctx context.Context, onlyActive bool) ([]models.InstagramLink, error)
	DeleteInstagramLink(ctx context.Context, id uuid.UUID) error
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

func (r *repository) CreateBanner(ctx context.Context, banner *models.Banner) (*models.Banner, error) {
	if err := r.db.WithContext(ctx).Create(banner).Error; err != nil {
		return nil, err
	}
	return banner, nil
}

func (r *repository) UpdateBanner(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Banner{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindBannerByID(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&banner).Error
	if err != nil {
		return nil, err
	}
	return &banner, nil
}

func (r *repository) ListBanners(ctx context.Context, onlyActive bool) ([]models.Banner, error) {
	query := r.db.WithContext(ctx).Order("ordem ASC").Order("created_at ASC")
	if onlyActive {
		query = query.Where("ativo = ?", true)
	}
	var rows []models.Banner
	err := query.Find(&rows).Error
	return rows, err
}

func (r *repository) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Banner{}).Error
}

func (r *repository) CreateInstagramLink(ctx context.Context, link *models.InstagramLink) (*models.InstagramLink, error) {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

func (r *repository) UpdateInstagramLink(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InstagramLink{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindInstagramLinkByID(ctx context.Context, id uuid.UUID) (*models.InstagramLink, error) {
	var link models.InstagramLink
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) ListInstagramLinks(ctx context.Context, onlyActive bool) ([]models.InstagramLink, error) {
	query := r.db.WithContext(ctx).Order("ordem ASC").Order("created_at ASC")
	if onlyActive {
		query = query.Where("ativo = ?", true)
	}
	var rows []models.InstagramLink
	err := query.Find(&rows).Error
	return rows, err
}

func (r *repository) DeleteInstagramLink(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.InstagramLink{}).Error
}
