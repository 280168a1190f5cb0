package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/utafrali/ShopfrontGo/internal/domain"
	"github.com/utafrali/ShopfrontGo/pkg/pagination"
	"github.com/utafrali/ShopfrontGo/pkg/validator"
)

const productsPath = "/api/v1/products"

// ProductsClient wraps the product catalog endpoints.
type ProductsClient struct {
	api *Client
}

// NewProductsClient creates a products client over the shared API client.
func NewProductsClient(api *Client) *ProductsClient {
	return &ProductsClient{api: api}
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID string
	Query      string
	ActiveOnly bool
}

func (f ProductFilter) query(q url.Values) url.Values {
	if f.CategoryID != "" {
		q.Set("category_id", f.CategoryID)
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.ActiveOnly {
		q.Set("active", "true")
	}
	return q
}

// List returns one page of the catalog.
func (p *ProductsClient) List(ctx context.Context, params pagination.Params, filter ProductFilter) (pagination.Result[domain.Product], error) {
	resp, err := p.api.get(ctx, productsPath, filter.query(params.Query(nil)))
	if err != nil {
		return pagination.Result[domain.Product]{}, err
	}
	return decodeJSON[pagination.Result[domain.Product]](resp, "list products")
}

// Get fetches a single product by ID.
func (p *ProductsClient) Get(ctx context.Context, id string) (*domain.Product, error) {
	resp, err := p.api.get(ctx, productsPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.Product](resp, "get product")
}

// CreateProductInput is the payload for creating a product.
type CreateProductInput struct {
	Code        string `json:"code" validate:"required,min=2,max=64"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"max=5000"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	CategoryID  string `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	ImageURL    string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Active      bool   `json:"active"`
}

// Create adds a product to the catalog. A duplicate product code surfaces as
// an AlreadyExists error.
func (p *ProductsClient) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	resp, err := p.api.send(ctx, http.MethodPost, productsPath, input)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.Product](resp, "create product")
}

// UpdateProductInput is the payload for updating a product. Nil fields are
// left unchanged.
type UpdateProductInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *int64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	CategoryID  *string `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Active      *bool   `json:"active,omitempty"`
}

// Update modifies a product.
func (p *ProductsClient) Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	if id == "" {
		return nil, fmt.Errorf("product id is required")
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	resp, err := p.api.send(ctx, http.MethodPut, productsPath+"/"+url.PathEscape(id), input)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.Product](resp, "update product")
}

// Delete removes a product from the catalog.
func (p *ProductsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("product id is required")
	}

	resp, err := p.api.send(ctx, http.MethodDelete, productsPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return discard(resp, "delete product")
}
