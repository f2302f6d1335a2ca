package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/types"
)

type categoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"nome"`
	Description *string   `json:"descricao,omitempty"`
	IsActive    bool      `json:"ativo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newCategoryResponse(c *models.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func newCategoryList(categories []models.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, newCategoryResponse(&categories[i]))
	}
	return out
}

type productResponse struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"nome"`
	Description    *string           `json:"descricao,omitempty"`
	Price          decimal.Decimal   `json:"preco"`
	PromoPrice     *decimal.Decimal  `json:"preco_promocional,omitempty"`
	EffectivePrice decimal.Decimal   `json:"preco_vigente"`
	CategoryID     *uuid.UUID        `json:"categoria_id,omitempty"`
	Category       *categoryResponse `json:"categoria,omitempty"`
	SupplierID     *uuid.UUID        `json:"fornecedor_id,omitempty"`
	Sizes          []string          `json:"tamanhos"`
	Colors         []string          `json:"cores"`
	Materials      []string          `json:"materiais"`
	ImageURLs      []string          `json:"imagens"`
	IsActive       bool              `json:"ativo"`
	IsFeatured     bool              `json:"destaque"`
	Stock          *int              `json:"estoque,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func newProductResponse(p *models.Product) productResponse {
	resp := productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		PromoPrice:     p.PromoPrice,
		EffectivePrice: p.EffectivePrice(),
		CategoryID:     p.CategoryID,
		SupplierID:     p.SupplierID,
		Sizes:          emptyIfNil(p.Sizes),
		Colors:         emptyIfNil(p.Colors),
		Materials:      emptyIfNil(p.Materials),
		ImageURLs:      emptyIfNil(p.ImageURLs),
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Category != nil {
		category := newCategoryResponse(p.Category)
		resp.Category = &category
	}
	return resp
}

func newProductList(products []models.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, newProductResponse(&products[i]))
	}
	return out
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

type supplierResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"nome"`
	Contact   *string   `json:"contato,omitempty"`
	Phone     *string   `json:"telefone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CNPJ      *string   `json:"cnpj,omitempty"`
	Notes     *string   `json:"observacoes,omitempty"`
	IsActive  bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newSupplierResponse(s *models.Supplier) supplierResponse {
	return supplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Contact:   s.Contact,
		Phone:     s.Phone,
		Email:     s.Email,
		CNPJ:      s.CNPJ,
		Notes:     s.Notes,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func newSupplierList(suppliers []models.Supplier) []supplierResponse {
	out := make([]supplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, newSupplierResponse(&suppliers[i]))
	}
	return out
}

type couponResponse struct {
	ID          uuid.UUID        `json:"id"`
	Code        string           `json:"codigo"`
	Type        string           `json:"tipo"`
	Value       decimal.Decimal  `json:"valor"`
	MinSubtotal *decimal.Decimal `json:"valor_minimo,omitempty"`
	MaxUses     *int             `json:"usos_maximos,omitempty"`
	UsedCount   int              `json:"usos"`
	ExpiresAt   *time.Time       `json:"validade,omitempty"`
	IsActive    bool             `json:"ativo"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func newCouponResponse(c *models.Coupon) couponResponse {
	return couponResponse{
		ID:          c.ID,
		Code:        c.Code,
		Type:        string(c.Type),
		Value:       c.Value,
		MinSubtotal: c.MinSubtotal,
		MaxUses:     c.MaxUses,
		UsedCount:   c.UsedCount,
		ExpiresAt:   c.ExpiresAt,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func newCouponList(coupons []models.Coupon) []couponResponse {
	out := make([]couponResponse, 0, len(coupons))
	for i := range coupons {
		out = append(out, newCouponResponse(&coupons[i]))
	}
	return out
}

type bannerResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"titulo"`
	Subtitle  *string   `json:"subtitulo,omitempty"`
	ImageURL  string    `json:"imagem_url"`
	LinkURL   *string   `json:"link_url,omitempty"`
	Position  int       `json:"ordem"`
	IsActive  bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newBannerResponse(b *models.Banner) bannerResponse {
	return bannerResponse{
		ID:        b.ID,
		Title:     b.Title,
		Subtitle:  b.Subtitle,
		ImageURL:  b.ImageURL,
		LinkURL:   b.LinkURL,
		Position:  b.Position,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func newBannerList(banners []models.Banner) []bannerResponse {
	out := make([]bannerResponse, 0, len(banners))
	for i := range banners {
		out = append(out, newBannerResponse(&banners[i]))
	}
	return out
}

type instagramLinkResponse struct {
	ID        uuid.UUID `json:"id"`
	PostURL   string    `json:"url_post"`
	ImageURL  *string   `json:"imagem_url,omitempty"`
	Caption   *string   `json:"legenda,omitempty"`
	Position  int       `json:"ordem"`
	IsActive  bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newInstagramLinkResponse(l *models.InstagramLink) instagramLinkResponse {
	return instagramLinkResponse{
		ID:        l.ID,
		PostURL:   l.PostURL,
		ImageURL:  l.ImageURL,
		Caption:   l.Caption,
		Position:  l.Position,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func newInstagramLinkList(links []models.InstagramLink) []instagramLinkResponse {
	out := make([]instagramLinkResponse, 0, len(links))
	for i := range links {
		out = append(out, newInstagramLinkResponse(&links[i]))
	}
	return out
}

type addressResponse struct {
	ID           uuid.UUID `json:"id"`
	CEP          string    `json:"cep"`
	Street       string    `json:"logradouro"`
	Number       string    `json:"numero"`
	Complement   *string   `json:"complemento,omitempty"`
	Neighborhood string    `json:"bairro"`
	City         string    `json:"cidade"`
	State        string    `json:"uf"`
	IsDefault    bool      `json:"padrao"`
	CreatedAt    time.Time `json:"created_at"`
}

func newAddressResponse(a *models.Address) addressResponse {
	return addressResponse{
		ID:           a.ID,
		CEP:          a.CEP,
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		IsDefault:    a.IsDefault,
		CreatedAt:    a.CreatedAt,
	}
}

func newAddressList(addresses []models.Address) []addressResponse {
	out := make([]addressResponse, 0, len(addresses))
	for i := range addresses {
		out = append(out, newAddressResponse(&addresses[i]))
	}
	return out
}

type customerResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"nome"`
	Email     string            `json:"email"`
	Phone     *string           `json:"telefone,omitempty"`
	Document  *string           `json:"cpf,omitempty"`
	IsActive  bool              `json:"ativo"`
	Addresses []addressResponse `json:"enderecos,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func newCustomerResponse(c *models.Customer) customerResponse {
	resp := customerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Document:  c.Document,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if len(c.Addresses) > 0 {
		resp.Addresses = newAddressList(c.Addresses)
	}
	return resp
}

func newCustomerList(customers []models.Customer) []customerResponse {
	out := make([]customerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, newCustomerResponse(&customers[i]))
	}
	return out
}

type cartItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"produto_id"`
	Product   *productResponse `json:"produto,omitempty"`
	Size      *string          `json:"tamanho,omitempty"`
	Color     *string          `json:"cor,omitempty"`
	Material  *string          `json:"material,omitempty"`
	ImageURL  *string          `json:"imagem_url,omitempty"`
	Quantity  int              `json:"quantidade"`
	UnitPrice decimal.Decimal  `json:"preco_unitario"`
	LineTotal decimal.Decimal  `json:"total_linha"`
}

type cartResponse struct {
	ID        uuid.UUID          `json:"id"`
	Status    string             `json:"status"`
	Items     []cartItemResponse `json:"itens"`
	ItemCount int                `json:"quantidade_itens"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func newCartResponse(record *models.CartRecord) cartResponse {
	items := make([]cartItemResponse, 0, len(record.Items))
	subtotal := decimal.Zero
	for i := range record.Items {
		item := &record.Items[i]
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		resp := cartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Size:      item.Size,
			Color:     item.Color,
			Material:  item.Material,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: lineTotal,
		}
		if item.Product != nil {
			product := newProductResponse(item.Product)
			resp.Product = &product
		}
		items = append(items, resp)
	}
	return cartResponse{
		ID:        record.ID,
		Status:    string(record.Status),
		Items:     items,
		ItemCount: record.ItemCount(),
		Subtotal:  subtotal,
		UpdatedAt: record.UpdatedAt,
	}
}

type orderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"produto_id"`
	ProductName string          `json:"nome_produto"`
	Size        *string         `json:"tamanho,omitempty"`
	Color       *string         `json:"cor,omitempty"`
	Material    *string         `json:"material,omitempty"`
	ImageURL    *string         `json:"imagem_url,omitempty"`
	Quantity    int             `json:"quantidade"`
	UnitPrice   decimal.Decimal `json:"preco_unitario"`
	LineTotal   decimal.Decimal `json:"total_linha"`
}

type orderResponse struct {
	ID              uuid.UUID             `json:"id"`
	OrderNumber     string                `json:"numero_pedido"`
	CustomerID      uuid.UUID             `json:"cliente_id"`
	Customer        *customerResponse     `json:"cliente,omitempty"`
	Status          string                `json:"status"`
	PaymentMethod   string                `json:"forma_pagamento"`
	ShippingAddress types.AddressSnapshot `json:"endereco_entrega"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	Discount        decimal.Decimal       `json:"desconto"`
	ShippingFee     decimal.Decimal       `json:"frete"`
	Total           decimal.Decimal       `json:"total"`
	CouponCode      *string               `json:"cupom_codigo,omitempty"`
	Notes           *string               `json:"observacoes,omitempty"`
	PaymentRef      *string               `json:"referencia_pagamento,omitempty"`
	PaymentURL      *string               `json:"url_pagamento,omitempty"`
	Items           []orderItemResponse   `json:"itens"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items = append(items, orderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Color:       item.Color,
			Material:    item.Material,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	resp := orderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		Status:          string(order.Status),
		PaymentMethod:   string(order.PaymentMethod),
		ShippingAddress: order.ShippingAddress,
		Subtotal:        order.Subtotal,
		Discount:        order.Discount,
		ShippingFee:     order.ShippingFee,
		Total:           order.Total,
		CouponCode:      order.CouponCode,
		Notes:           order.Notes,
		PaymentRef:      order.PaymentRef,
		PaymentURL:      order.PaymentURL,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.Customer != nil {
		customer := newCustomerResponse(order.Customer)
		resp.Customer = &customer
	}
	return resp
}

func newOrderList(orders []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderResponse(&orders[i]))
	}
	return out
}

type movementResponse struct {
	ID           uuid.UUID        `json:"id"`
	ProductID    uuid.UUID        `json:"produto_id"`
	Type         string           `json:"tipo"`
	Quantity     int              `json:"quantidade"`
	Reason       *string          `json:"motivo,omitempty"`
	UnitValue    *decimal.Decimal `json:"valor_unitario,omitempty"`
	TotalValue   *decimal.Decimal `json:"valor_total,omitempty"`
	SupplierName *string          `json:"fornecedor_nome,omitempty"`
	OrderID      *uuid.UUID       `json:"pedido_id,omitempty"`
	ActorID      *uuid.UUID       `json:"usuario_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

func newMovementResponse(m *models.InventoryMovement) movementResponse {
	return movementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Type:         string(m.Type),
		Quantity:     m.Quantity,
		Reason:       m.Reason,
		UnitValue:    m.UnitValue,
		TotalValue:   m.TotalValue,
		SupplierName: m.SupplierName,
		OrderID:      m.OrderID,
		ActorID:      m.ActorID,
		CreatedAt:    m.CreatedAt,
	}
}

func newMovementList(movements []models.InventoryMovement) []movementResponse {
	out := make([]movementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, newMovementResponse(&movements[i]))
	}
	return out
}

type adminUserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"nome"`
	Email       string     `json:"email"`
	Role        string     `json:"papel"`
	IsActive    bool       `json:"ativo"`
	LastLoginAt *time.Time `json:"ultimo_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newAdminUserResponse(u *models.AdminUser) adminUserResponse {
	return adminUserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func newAdminUserList(users []models.AdminUser) []adminUserResponse {
	out := make([]adminUserResponse, 0, len(users))
	for i := range users {
		out = append(out, newAdminUserResponse(&users[i]))
	}
	return out
}

type listEnvelope[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}
