package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/semprebellasuporte2025/semprebella-backend/api/responses"
	"github.com/semprebellasuporte2025/semprebella-backend/api/validators"
	"github.com/semprebellasuporte2025/semprebella-backend/internal/catalog"
	inventorysvc "github.com/semprebellasuporte2025/semprebella-backend/internal/inventory"
	pkgerrors "github.com/semprebellasuporte2025/semprebella-backend/pkg/errors"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

const maxImageUploadBytes = 10 << 20

type productRequest struct {
	Name        string           `json:"nome" validate:"required,min=2,max=160"`
	Description *string          `json:"descricao,omitempty"`
	Price       decimal.Decimal  `json:"preco" validate:"required"`
	PromoPrice  *decimal.Decimal `json:"preco_promocional,omitempty"`
	CategoryID  *string          `json:"categoria_id,omitempty" validate:"omitempty,uuid"`
	SupplierID  *string          `json:"fornecedor_id,omitempty" validate:"omitempty,uuid"`
	Sizes       []string         `json:"tamanhos,omitempty"`
	Colors      []string         `json:"cores,omitempty"`
	Materials   []string         `json:"materiais,omitempty"`
	ImageURLs   []string         `json:"imagens,omitempty" validate:"omitempty,dive,url"`
	IsActive    *bool            `json:"ativo,omitempty"`
	IsFeatured  *bool            `json:"destaque,omitempty"`
}

func (p productRequest) toCreateInput() (catalog.CreateProductInput, error) {
	categoryID, err := validators.OptionalUUID(p.CategoryID, "categoria_id")
	if err != nil {
		return catalog.CreateProductInput{}, err
	}
	supplierID, err := validators.OptionalUUID(p.SupplierID, "fornecedor_id")
	if err != nil {
		return catalog.CreateProductInput{}, err
	}

	input := catalog.CreateProductInput{
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Price:       p.Price,
		PromoPrice:  p.PromoPrice,
		CategoryID:  categoryID,
		SupplierID:  supplierID,
		Sizes:       p.Sizes,
		Colors:      p.Colors,
		Materials:   p.Materials,
		ImageURLs:   p.ImageURLs,
		IsActive:    true,
	}
	if p.IsActive != nil {
		input.IsActive = *p.IsActive
	}
	if p.IsFeatured != nil {
		input.IsFeatured = *p.IsFeatured
	}
	return input, nil
}

type productUpdateRequest struct {
	Name        *string          `json:"nome,omitempty" validate:"omitempty,min=2,max=160"`
	Description *string          `json:"descricao,omitempty"`
	Price       *decimal.Decimal `json:"preco,omitempty"`
	PromoPrice  *decimal.Decimal `json:"preco_promocional,omitempty"`
	ClearPromo  bool             `json:"remover_promocao,omitempty"`
	CategoryID  *string          `json:"categoria_id,omitempty" validate:"omitempty,uuid"`
	SupplierID  *string          `json:"fornecedor_id,omitempty" validate:"omitempty,uuid"`
	Sizes       *[]string        `json:"tamanhos,omitempty"`
	Colors      *[]string        `json:"cores,omitempty"`
	Materials   *[]string        `json:"materiais,omitempty"`
	ImageURLs   *[]string        `json:"imagens,omitempty"`
	IsActive    *bool            `json:"ativo,omitempty"`
	IsFeatured  *bool            `json:"destaque,omitempty"`
}

func (p productUpdateRequest) toUpdateInput() (catalog.UpdateProductInput, error) {
	categoryID, err := validators.OptionalUUID(p.CategoryID, "categoria_id")
	if err != nil {
		return catalog.UpdateProductInput{}, err
	}
	supplierID, err := validators.OptionalUUID(p.SupplierID, "fornecedor_id")
	if err != nil {
		return catalog.UpdateProductInput{}, err
	}

	return catalog.UpdateProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		PromoPrice:  p.PromoPrice,
		ClearPromo:  p.ClearPromo,
		CategoryID:  categoryID,
		SupplierID:  supplierID,
		Sizes:       p.Sizes,
		Colors:      p.Colors,
		Materials:   p.Materials,
		ImageURLs:   p.ImageURLs,
		IsActive:    p.IsActive,
		IsFeatured:  p.IsFeatured,
	}, nil
}

func productFiltersFromQuery(r *http.Request, storefront bool) (catalog.ProductFilters, error) {
	filters := catalog.ProductFilters{OnlyActive: storefront}

	categoryID, err := validators.QueryUUID(r, "categoria")
	if err != nil {
		return catalog.ProductFilters{}, err
	}
	filters.CategoryID = categoryID

	featured, err := validators.ParseQueryBool(r, "destaque")
	if err != nil {
		return catalog.ProductFilters{}, err
	}
	filters.Featured = featured

	filters.Query = strings.TrimSpace(r.URL.Query().Get("busca"))

	if !storefront {
		active, err := validators.ParseQueryBool(r, "ativo")
		if err != nil {
			return catalog.ProductFilters{}, err
		}
		if active != nil {
			filters.OnlyActive = *active
		}
	}
	return filters, nil
}

// ListProducts serves the public catalog. Inactive products never appear
// here regardless of filters.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := productFiltersFromQuery(r, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, nextCursor, err := svc.ListProducts(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listEnvelope[productResponse]{Items: newProductList(products), NextCursor: nextCursor})
	}
}

// GetProduct serves the public product detail, including the stock level
// so the storefront can disable the buy button when out of stock.
func GetProduct(svc catalog.Service, stock inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "produto não encontrado"))
			return
		}

		resp := newProductResponse(product)
		if stock != nil {
			level, err := stock.StockLevel(r.Context(), productID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			resp.Stock = &level
		}

		responses.WriteSuccess(w, resp)
	}
}

// AdminListProducts serves the back-office catalog with full filters.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := productFiltersFromQuery(r, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, nextCursor, err := svc.ListProducts(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listEnvelope[productResponse]{Items: newProductList(products), NextCursor: nextCursor})
	}
}

// AdminGetProduct serves the back-office product detail with stock.
func AdminGetProduct(svc catalog.Service, stock inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := newProductResponse(product)
		if stock != nil {
			level, err := stock.StockLevel(r.Context(), productID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			resp.Stock = &level
		}

		responses.WriteSuccess(w, resp)
	}
}

// AdminCreateProduct handles product creation.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(product))
	}
}

// AdminUpdateProduct handles partial product updates.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// AdminDeleteProduct deactivates a product. Rows referenced by orders are
// never hard deleted.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminUploadProductImage accepts a multipart image and appends the
// stored URL to the product gallery.
func AdminUploadProductImage(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "id")
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
		product, err := svc.UploadProductImage(r.Context(), productID, header.Filename, contentType, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

type categoryRequest struct {
	Name        string  `json:"nome" validate:"required,min=2,max=80"`
	Description *string `json:"descricao,omitempty"`
	IsActive    *bool   `json:"ativo,omitempty"`
}

func (c categoryRequest) toInput() catalog.CategoryInput {
	input := catalog.CategoryInput{
		Name:        strings.TrimSpace(c.Name),
		Description: c.Description,
		IsActive:    true,
	}
	if c.IsActive != nil {
		input.IsActive = *c.IsActive
	}
	return input
}

// ListCategories serves active categories for the storefront navigation.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCategoryList(categories))
	}
}

// AdminListCategories serves all categories for the back office.
func AdminListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context(), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCategoryList(categories))
	}
}

// AdminCreateCategory handles category creation.
func AdminCreateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCategoryResponse(category))
	}
}

// AdminUpdateCategory handles category updates.
func AdminUpdateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.UpdateCategory(r.Context(), categoryID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCategoryResponse(category))
	}
}

// AdminDeleteCategory deactivates a category.
func AdminDeleteCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
