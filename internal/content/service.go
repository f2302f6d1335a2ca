package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
)

// BannerInput holds the payload for banner writes.
type BannerInput struct {
	Title    string
	Subtitle *string
	ImageURL string
	LinkURL  *string
	Position int
	IsActive bool
}

// InstagramLinkInput holds the payload for instagram link writes.
type InstagramLinkInput struct {
	PostURL  string
	ImageURL *string
	Caption  *string
	Position int
	IsActive bool
}

// Service exposes storefront content management.
type Service interface {
	CreateBanner(ctx context.Context, input BannerInput) (*models.Banner, error)
	UpdateBanner(ctx context.Context, bannerID uuid.UUID, input BannerInput) (*models.Banner, error)
	ListBanners(ctx context.Context, onlyActive bool) ([]models.Banner, error)
	DeleteBanner(ctx context.Context, bannerID uuid.UUID) error
	UploadBannerImage(ctx context.Context, bannerID uuid.UUID, filename, contentType string, body io.Reader) (*models.Banner, error)

	CreateInstagramLink(ctx context.Context, input InstagramLinkInput) (*models.InstagramLink, error)
	UpdateInstagramLink(ctx context.Context, linkID uuid.UUID, input InstagramLinkInput) (*models.InstagramLink, error)
	ListInstagramLinks(ctx context.Context, onlyActive bool) ([]models.InstagramLink, error)
	DeleteInstagramLink(ctx context.Context, linkID uuid.UUID) error
	UploadInstagramLinkImage(ctx context.Context, linkID uuid.UUID, filename, contentType string, body io.Reader) (*models.InstagramLink, error)
}

type imageStore interface {
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
}

type service struct {
	repo   Repository
	images imageStore
}

// NewService builds the content service. The image store may be nil when
// uploads are disabled; banner and instagram writes then rely on external
// image URLs.
func NewService(repo Repository, images imageStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("content repository required")
	}
	return &service{repo: repo, images: images}, nil
}

func (s *service) CreateBanner(ctx context.Context, input BannerInput) (*models.Banner, error) {
	if err := validateBanner(input); err != nil {
		return nil, err
	}
	banner := &models.Banner{
		Title:    strings.TrimSpace(input.Title),
		Subtitle: input.Subtitle,
		ImageURL: input.ImageURL,
		LinkURL:  input.LinkURL,
		Position: input.Position,
		IsActive: input.IsActive,
	}
	created, err := s.repo.CreateBanner(ctx, banner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert banner")
	}
	return created, nil
}

func (s *service) UpdateBanner(ctx context.Context, bannerID uuid.UUID, input BannerInput) (*models.Banner, error) {
	if err := validateBanner(input); err != nil {
		return nil, err
	}
	if _, err := s.loadBanner(ctx, bannerID); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"titulo":     strings.TrimSpace(input.Title),
		"subtitulo":  input.Subtitle,
		"imagem_url": input.ImageURL,
		"link_url":   input.LinkURL,
		"ordem":      input.Position,
		"ativo":      input.IsActive,
	}
	if err := s.repo.UpdateBanner(ctx, bannerID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update banner")
	}
	return s.loadBanner(ctx, bannerID)
}

func (s *service) ListBanners(ctx context.Context, onlyActive bool) ([]models.Banner, error) {
	rows, err := s.repo.ListBanners(ctx, onlyActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list banners")
	}
	return rows, nil
}

func (s *service) DeleteBanner(ctx context.Context, bannerID uuid.UUID) error {
	if _, err := s.loadBanner(ctx, bannerID); err != nil {
		return err
	}
	if err := s.repo.DeleteBanner(ctx, bannerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete banner")
	}
	return nil
}

// UploadBannerImage stores the file and points the banner at the new URL.
func (s *service) UploadBannerImage(ctx context.Context, bannerID uuid.UUID, filename, contentType string, body io.Reader) (*models.Banner, error) {
	if s.images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "armazenamento de imagens indisponível")
	}
	if _, err := s.loadBanner(ctx, bannerID); err != nil {
		return nil, err
	}

	url, err := s.uploadImage(ctx, "banners", bannerID, filename, contentType, body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBanner(ctx, bannerID, map[string]any{"imagem_url": url}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update banner image")
	}
	return s.loadBanner(ctx, bannerID)
}

func (s *service) CreateInstagramLink(ctx context.Context, input InstagramLinkInput) (*models.InstagramLink, error) {
	if err := validateInstagramLink(input); err != nil {
		return nil, err
	}
	link := &models.InstagramLink{
		PostURL:  input.PostURL,
		ImageURL: input.ImageURL,
		Caption:  input.Caption,
		Position: input.Position,
		IsActive: input.IsActive,
	}
	created, err := s.repo.CreateInstagramLink(ctx, link)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert instagram link")
	}
	return created, nil
}

func (s *service) UpdateInstagramLink(ctx context.Context, linkID uuid.UUID, input InstagramLinkInput) (*models.InstagramLink, error) {
	if err := validateInstagramLink(input); err != nil {
		return nil, err
	}
	if _, err := s.loadInstagramLink(ctx, linkID); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"url_post":   input.PostURL,
		"imagem_url": input.ImageURL,
		"legenda":    input.Caption,
		"ordem":      input.Position,
		"ativo":      input.IsActive,
	}
	if err := s.repo.UpdateInstagramLink(ctx, linkID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update instagram link")
	}
	return s.loadInstagramLink(ctx, linkID)
}

func (s *service) ListInstagramLinks(ctx context.Context, onlyActive bool) ([]models.InstagramLink, error) {
	rows, err := s.repo.ListInstagramLinks(ctx, onlyActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list instagram links")
	}
	return rows, nil
}

func (s *service) DeleteInstagramLink(ctx context.Context, linkID uuid.UUID) error {
	if _, err := s.loadInstagramLink(ctx, linkID); err != nil {
		return err
	}
	if err := s.repo.DeleteInstagramLink(ctx, linkID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete instagram link")
	}
	return nil
}

// UploadInstagramLinkImage stores the file and points the publication at
// the new URL.
func (s *service) UploadInstagramLinkImage(ctx context.Context, linkID uuid.UUID, filename, contentType string, body io.Reader) (*models.InstagramLink, error) {
	if s.images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "armazenamento de imagens indisponível")
	}
	if _, err := s.loadInstagramLink(ctx, linkID); err != nil {
		return nil, err
	}

	url, err := s.uploadImage(ctx, "instagram", linkID, filename, contentType, body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateInstagramLink(ctx, linkID, map[string]any{"imagem_url": url}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update instagram image")
	}
	return s.loadInstagramLink(ctx, linkID)
}

func (s *service) uploadImage(ctx context.Context, folder string, id uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	objectName := fmt.Sprintf("%s/%s/%s%s", folder, id, uuid.NewString(), ext)
	url, err := s.images.Upload(ctx, objectName, contentType, body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gcs: upload image")
	}
	return url, nil
}

func (s *service) loadBanner(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	banner, err := s.repo.FindBannerByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "banner não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load banner")
	}
	return banner, nil
}

func (s *service) loadInstagramLink(ctx context.Context, id uuid.UUID) (*models.InstagramLink, error) {
	link, err := s.repo.FindInstagramLinkByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "publicação não encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load instagram link")
	}
	return link, nil
}

func validateBanner(input BannerInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "título do banner é obrigatório")
	}
	if err := validateURL(input.ImageURL); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "url da imagem inválida")
	}
	if input.LinkURL != nil && *input.LinkURL != "" {
		if err := validateURL(*input.LinkURL); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "url de destino inválida")
		}
	}
	if input.Position < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "ordem não pode ser negativa")
	}
	return nil
}

func validateInstagramLink(input InstagramLinkInput) error {
	if err := validateURL(input.PostURL); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "url da publicação inválida")
	}
	if input.ImageURL != nil && *input.ImageURL != "" {
		if err := validateURL(*input.ImageURL); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "url da imagem inválida")
		}
	}
	if input.Position < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "ordem não pode ser negativa")
	}
	return nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
