// Package prometheus queries the Prometheus HTTP API for instant scalar values.
package prometheus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	prommodel "github.com/prometheus/common/model"
)

// ErrNoData is returned when a query succeeds but yields no samples.
var ErrNoData = errors.New("query returned no data")

const DefaultTimeout = 10 * time.Second

// Client issues instant queries against <baseURL>/api/v1/query.
type Client struct {
	api     v1.API
	timeout time.Duration
	now     func() time.Time
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	c, err := api.NewClient(api.Config{Address: baseURL})
	if err != nil {
		return nil, fmt.Errorf("prometheus client: %w", err)
	}
	return NewClientWithAPI(v1.NewAPI(c), timeout), nil
}

// DI: ready v1.API
func NewClientWithAPI(a v1.API, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{api: a, timeout: timeout, now: time.Now}
}

// Query runs expr once and returns the value of the first sample.
func (c *Client) Query(ctx context.Context, expr string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	val, _, err := c.api.Query(ctx, expr, c.now())
	if err != nil {
		return 0, fmt.Errorf("query %q: %w", expr, err)
	}
	return firstValue(val)
}

func firstValue(val prommodel.Value) (float64, error) {
	switch v := val.(type) {
	case prommodel.Vector:
		if len(v) == 0 {
			return 0, ErrNoData
		}
		return float64(v[0].Value), nil

	case *prommodel.Scalar:
		if v == nil {
			return 0, ErrNoData
		}
		return float64(v.Value), nil

	case nil:
		return 0, ErrNoData

	default:
		return 0, fmt.Errorf("unsupported result type %q", val.Type())
	}
}
