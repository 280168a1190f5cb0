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

const ordersPath = "/api/v1/orders"

// OrdersClient wraps the order endpoints.
type OrdersClient struct {
	api *Client
}

// NewOrdersClient creates an orders client over the shared API client.
func NewOrdersClient(api *Client) *OrdersClient {
	return &OrdersClient{api: api}
}

// List returns one page of the caller's orders.
func (o *OrdersClient) List(ctx context.Context, params pagination.Params) (pagination.Result[domain.Order], error) {
	resp, err := o.api.get(ctx, ordersPath, params.Query(nil))
	if err != nil {
		return pagination.Result[domain.Order]{}, err
	}
	return decodeJSON[pagination.Result[domain.Order]](resp, "list orders")
}

// Get fetches a single order by ID.
func (o *OrdersClient) Get(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, fmt.Errorf("order id is required")
	}

	resp, err := o.api.get(ctx, ordersPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.Order](resp, "get order")
}

// PlaceOrderInput is the payload for placing an order from the cart.
type PlaceOrderInput struct {
	Items    []PlaceOrderItem `json:"items" validate:"required,min=1,dive"`
	Currency string           `json:"currency" validate:"required,len=3"`
}

// PlaceOrderItem is a single line in an order request.
type PlaceOrderItem struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// Place submits an order. Domain-level rejections (insufficient stock,
// payment failure) surface as classified errors; the gateway's auth handling
// is invisible here.
func (o *OrdersClient) Place(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	resp, err := o.api.send(ctx, http.MethodPost, ordersPath, input)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.Order](resp, "place order")
}
