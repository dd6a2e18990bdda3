package promclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/common/model"

	"github.com/promreg/promregistry/internal/domain"
	"github.com/promreg/promregistry/internal/utils"
)

// Prometheus paths used by the client. The health path is served by every
// Prometheus-compatible backend; the label-values path is part of the v1
// query API.
const (
	healthPath      = "/-/healthy"
	metricNamesPath = "/api/v1/label/__name__/values"
)

// Compile-time interface guard.
var _ domain.RemoteClient = (*Client)(nil)

// Client talks to one Prometheus-compatible backend. It is bound to a
// single endpoint and credential at construction and reused across calls.
type Client struct {
	endpoint *url.URL
	cred     domain.Credential
	http     *http.Client
}

// New builds a client for the given endpoint. The timeout bounds every
// request issued by the client; per-probe deadlines are layered on top via
// context.
func New(endpoint string, cred domain.Credential, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	return &Client{
		endpoint: parsed,
		cred:     cred,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
	}, nil
}

// Healthy probes the backend's health endpoint and returns an error when
// the backend is unreachable or reports anything but success.
func (c *Client) Healthy(ctx context.Context) error {
	resp, err := c.get(ctx, healthPath)
	if err != nil {
		return fmt.Errorf("health probe %s: %w", c.endpoint.Host, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health probe %s: HTTP %d %s",
			c.endpoint.Host, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return nil
}

// labelValuesResponse is the v1 API envelope for label-values queries.
type labelValuesResponse struct {
	Status string            `json:"status"`
	Data   model.LabelValues `json:"data"`
}

// MetricNames lists the metric names the backend currently knows about.
func (c *Client) MetricNames(ctx context.Context) ([]string, error) {
	resp, err := c.get(ctx, metricNamesPath)
	if err != nil {
		return nil, fmt.Errorf("list metric names %s: %w", c.endpoint.Host, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list metric names %s: HTTP %d %s",
			c.endpoint.Host, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var decoded labelValuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("list metric names %s: decode: %w", c.endpoint.Host, err)
	}
	if decoded.Status != "success" {
		return nil, fmt.Errorf("list metric names %s: status %q", c.endpoint.Host, decoded.Status)
	}

	names := make([]string, 0, len(decoded.Data))
	for _, v := range decoded.Data {
		names = append(names, string(v))
	}
	return names, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	target := c.endpoint.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		return nil, err
	}
	if !c.cred.Empty() {
		req.SetBasicAuth(c.cred.Username, c.cred.Password)
	}

	return c.http.Do(req)
}
