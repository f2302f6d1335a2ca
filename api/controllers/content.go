package controllers

import (
	"net/http"
	"strings"

	"github.com/semprebellasuporte2025/semprebella-backend/api/responses"
	"github.com/semprebellasuporte2025/semprebella-backend/api/validators"
	contentsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/content"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

type bannerRequest struct {
	Title    string  `json:"titulo" validate:"required,min=2,max=160"`
	Subtitle *string `json:"subtitulo,omitempty" validate:"omitempty,max=200"`
	ImageURL string  `json:"imagem_url" validate:"required,url"`
	LinkURL  *string `json:"link_url,omitempty" validate:"omitempty,url"`
	Position *int    `json:"ordem,omitempty" validate:"omitempty,min=0"`
	IsActive *bool   `json:"ativo,omitempty"`
}

func (b bannerRequest) toInput() contentsvc.BannerInput {
	input := contentsvc.BannerInput{
		Title:    strings.TrimSpace(b.Title),
		Subtitle: b.Subtitle,
		ImageURL: strings.TrimSpace(b.ImageURL),
		LinkURL:  b.LinkURL,
		IsActive: true,
	}
	if b.Position != nil {
		input.Position = *b.Position
	}
	if b.IsActive != nil {
		input.IsActive = *b.IsActive
	}
	return input
}

type instagramLinkRequest struct {
	PostURL  string  `json:"url_post" validate:"required,url"`
	ImageURL *string `json:"imagem_url,omitempty" validate:"omitempty,url"`
	Caption  *string `json:"legenda,omitempty" validate:"omitempty,max=300"`
	Position *int    `json:"ordem,omitempty" validate:"omitempty,min=0"`
	IsActive *bool   `json:"ativo,omitempty"`
}

func (l instagramLinkRequest) toInput() contentsvc.InstagramLinkInput {
	input := contentsvc.InstagramLinkInput{
		PostURL:  strings.TrimSpace(l.PostURL),
		ImageURL: l.ImageURL,
		Caption:  l.Caption,
		IsActive: true,
	}
	if l.Position != nil {
		input.Position = *l.Position
	}
	if l.IsActive != nil {
		input.IsActive = *l.IsActive
	}
	return input
}

// ListBanners serves active banners ordered for the storefront hero.
func ListBanners(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		banners, err := svc.ListBanners(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBannerList(banners))
	}
}

// AdminListBanners serves all banners for the back office.
func AdminListBanners(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		banners, err := svc.ListBanners(r.Context(), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBannerList(banners))
	}
}

// AdminCreateBanner handles banner creation.
func AdminCreateBanner(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload bannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.CreateBanner(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newBannerResponse(banner))
	}
}

// AdminUpdateBanner handles banner updates.
func AdminUpdateBanner(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bannerID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.UpdateBanner(r.Context(), bannerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBannerResponse(banner))
	}
}

// AdminDeleteBanner removes a banner from rotation.
func AdminDeleteBanner(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bannerID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteBanner(r.Context(), bannerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminUploadBannerImage accepts a multipart image and points the banner
// at the stored URL.
func AdminUploadBannerImage(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bannerID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "arquivo inválido"))
			return
		}

		file, header, err := r.FormFile("imagem")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "campo imagem obrigatório"))
			return
		}
		defer func() { _ = file.Close() }()

		contentType := header.Header.Get("Content-Type")
		banner, err := svc.UploadBannerImage(r.Context(), bannerID, header.Filename, contentType, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBannerResponse(banner))
	}
}

// ListInstagramLinks serves the active curated feed.
func ListInstagramLinks(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := svc.ListInstagramLinks(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInstagramLinkList(links))
	}
}

// AdminListInstagramLinks serves all curated posts for the back office.
func AdminListInstagramLinks(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := svc.ListInstagramLinks(r.Context(), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInstagramLinkList(links))
	}
}

// AdminCreateInstagramLink handles curated post creation.
func AdminCreateInstagramLink(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload instagramLinkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.CreateInstagramLink(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newInstagramLinkResponse(link))
	}
}

// AdminUpdateInstagramLink handles curated post updates.
func AdminUpdateInstagramLink(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		linkID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload instagramLinkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.UpdateInstagramLink(r.Context(), linkID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInstagramLinkResponse(link))
	}
}

// AdminDeleteInstagramLink removes a curated post.
func AdminDeleteInstagramLink(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		linkID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteInstagramLink(r.Context(), linkID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminUploadInstagramLinkImage accepts a multipart image and points the
// curated post at the stored URL.
func AdminUploadInstagramLinkImage(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		linkID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "arquivo inválido"))
			return
		}

		file, header, err := r.FormFile("imagem")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "campo imagem obrigatório"))
			return
		}
		defer func() { _ = file.Close() }()

		contentType := header.Header.Get("Content-Type")
		link, err := svc.UploadInstagramLinkImage(r.Context(), linkID, header.Filename, contentType, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInstagramLinkResponse(link))
	}
}
