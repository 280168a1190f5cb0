package api

import (
	"context"
	"net/url"
	"time"

	"github.com/utafrali/ShopfrontGo/internal/domain"
)

const statsPath = "/api/v1/admin/stats/revenue"

// StatsClient wraps the admin revenue statistics endpoints.
type StatsClient struct {
	api *Client
}

// NewStatsClient creates a stats client over the shared API client.
func NewStatsClient(api *Client) *StatsClient {
	return &StatsClient{api: api}
}

func rangeQuery(from, to time.Time) url.Values {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		q.Set("to", to.Format("2006-01-02"))
	}
	return q
}

// Summary returns aggregate revenue figures for the given date range.
func (s *StatsClient) Summary(ctx context.Context, from, to time.Time) (*domain.RevenueSummary, error) {
	resp, err := s.api.get(ctx, statsPath+"/summary", rangeQuery(from, to))
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.RevenueSummary](resp, "revenue summary")
}

// Series returns the revenue time series for the given date range, bucketed
// by the given interval ("day", "week" or "month").
func (s *StatsClient) Series(ctx context.Context, from, to time.Time, interval string) ([]domain.RevenuePoint, error) {
	q := rangeQuery(from, to)
	if interval != "" {
		q.Set("interval", interval)
	}

	resp, err := s.api.get(ctx, statsPath+"/series", q)
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.RevenuePoint](resp, "revenue series")
}
