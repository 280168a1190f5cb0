package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/utafrali/ShopfrontGo/internal/domain"
	"github.com/utafrali/ShopfrontGo/pkg/validator"
)

const categoriesPath = "/api/v1/categories"

// CategoriesClient wraps the category endpoints.
type CategoriesClient struct {
	api *Client
}

// NewCategoriesClient creates a categories client over the shared API client.
func NewCategoriesClient(api *Client) *CategoriesClient {
	return &CategoriesClient{api: api}
}

// List returns all categories.
func (c *CategoriesClient) List(ctx context.Context) ([]domain.Category, error) {
	resp, err := c.api.get(ctx, categoriesPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.Category](resp, "list categories")
}

// CreateCategoryInput is the payload for creating a category.
type CreateCategoryInput struct {
	Code     string `json:"code" validate:"required,min=2,max=64"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	ParentID string `json:"parentId,omitempty" validate:"omitempty,uuid"`
}

// Create adds a category. A duplicate category code surfaces as an
// AlreadyExists error.
func (c *CategoriesClient) Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	resp, err := c.api.send(ctx, http.MethodPost, categoriesPath, input)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.Category](resp, "create category")
}

// UpdateCategoryInput is the payload for renaming or re-parenting a category.
type UpdateCategoryInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	ParentID *string `json:"parentId,omitempty" validate:"omitempty,uuid"`
	Active   *bool   `json:"active,omitempty"`
}

// Update modifies a category.
func (c *CategoriesClient) Update(ctx context.Context, id string, input UpdateCategoryInput) (*domain.Category, error) {
	if id == "" {
		return nil, fmt.Errorf("category id is required")
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	resp, err := c.api.send(ctx, http.MethodPut, categoriesPath+"/"+url.PathEscape(id), input)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.Category](resp, "update category")
}

// Delete removes a category.
func (c *CategoriesClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("category id is required")
	}

	resp, err := c.api.send(ctx, http.MethodDelete, categoriesPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return discard(resp, "delete category")
}
