package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/utafrali/ShopfrontGo/internal/domain"
	"github.com/utafrali/ShopfrontGo/pkg/validator"
)

const promotionsPath = "/api/v1/promotions"

// PromotionsClient wraps the promotion endpoints.
type PromotionsClient struct {
	api *Client
}

// NewPromotionsClient creates a promotions client over the shared API client.
func NewPromotionsClient(api *Client) *PromotionsClient {
	return &PromotionsClient{api: api}
}

// List returns all promotions, active and inactive.
func (p *PromotionsClient) List(ctx context.Context) ([]domain.Promotion, error) {
	resp, err := p.api.get(ctx, promotionsPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.Promotion](resp, "list promotions")
}

// CreatePromotionInput is the payload for creating a promotion.
type CreatePromotionInput struct {
	Code            string    `json:"code" validate:"required,min=2,max=64"`
	Name            string    `json:"name" validate:"required,min=1,max=200"`
	DiscountPercent int       `json:"discountPercent" validate:"required,gt=0,lte=100"`
	StartsAt        time.Time `json:"startsAt" validate:"required"`
	EndsAt          time.Time `json:"endsAt" validate:"required,gtfield=StartsAt"`
}

// Create adds a promotion. A duplicate promotion code surfaces as an
// AlreadyExists error.
func (p *PromotionsClient) Create(ctx context.Context, input CreatePromotionInput) (*domain.Promotion, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	resp, err := p.api.send(ctx, http.MethodPost, promotionsPath, input)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.Promotion](resp, "create promotion")
}

// SetActive toggles a promotion on or off.
func (p *PromotionsClient) SetActive(ctx context.Context, id string, active bool) (*domain.Promotion, error) {
	if id == "" {
		return nil, fmt.Errorf("promotion id is required")
	}

	payload := map[string]bool{"active": active}
	resp, err := p.api.send(ctx, http.MethodPatch, promotionsPath+"/"+url.PathEscape(id), payload)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.Promotion](resp, "toggle promotion")
}

// Delete removes a promotion.
func (p *PromotionsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("promotion id is required")
	}

	resp, err := p.api.send(ctx, http.MethodDelete, promotionsPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return discard(resp, "delete promotion")
}
