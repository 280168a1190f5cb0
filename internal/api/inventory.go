package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/ShopfrontGo/internal/domain"
	"github.com/utafrali/ShopfrontGo/pkg/pagination"
	"github.com/utafrali/ShopfrontGo/pkg/validator"
)

const inventoryPath = "/api/v1/inventory"

// InventoryClient wraps the inventory endpoints.
type InventoryClient struct {
	api *Client
}

// NewInventoryClient creates an inventory client over the shared API client.
func NewInventoryClient(api *Client) *InventoryClient {
	return &InventoryClient{api: api}
}

// Levels returns one page of stock levels, optionally filtered by SKU.
func (i *InventoryClient) Levels(ctx context.Context, params pagination.Params, sku string) (pagination.Result[domain.StockLevel], error) {
	q := params.Query(nil)
	if sku != "" {
		q.Set("sku", sku)
	}

	resp, err := i.api.get(ctx, inventoryPath, q)
	if err != nil {
		return pagination.Result[domain.StockLevel]{}, err
	}
	return decodeJSON[pagination.Result[domain.StockLevel]](resp, "list stock levels")
}

// AdjustStockInput is the payload for a manual stock adjustment.
type AdjustStockInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Delta     int    `json:"delta" validate:"required"`
	Reason    string `json:"reason" validate:"required,min=3,max=500"`
}

// Adjust applies a manual stock correction and returns the updated level.
func (i *InventoryClient) Adjust(ctx context.Context, input AdjustStockInput) (*domain.StockLevel, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	resp, err := i.api.send(ctx, http.MethodPost, inventoryPath+"/"+url.PathEscape(input.ProductID)+"/adjust", input)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.StockLevel](resp, "adjust stock")
}
