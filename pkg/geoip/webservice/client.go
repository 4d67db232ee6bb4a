// Package webservice is a client for the GeoIP2 Precision and GeoLite2 web services.
package webservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/TomasB/geolookup/pkg/geoip"
	"github.com/TomasB/geolookup/pkg/geoip/models"
)

const userAgent = "GeoIP2-Go-Client/geolookup"

// Client sends one blocking request per lookup. It is safe for concurrent use and reuses
// connections between calls.
type Client struct {
	accountID  string
	licenseKey string
	host       string
	locales    []string
	httpClient *http.Client
	logger     *slog.Logger

	closeOnce sync.Once
}

// NewClient returns a client authenticating with accountID and licenseKey.
func NewClient(accountID int, licenseKey string, opts ...Option) (*Client, error) {
	return newClient(accountID, licenseKey, newConfig(opts))
}

func newClient(accountID int, licenseKey string, cfg config) (*Client, error) {
	hc := cfg.httpClient
	if hc == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.proxy != "" {
			proxyURL, err := url.Parse(cfg.proxy)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy URL: %w", err)
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
		hc = &http.Client{Transport: transport, Timeout: cfg.timeout}
	}

	return &Client{
		accountID:  strconv.Itoa(accountID),
		licenseKey: licenseKey,
		host:       cfg.host,
		locales:    cfg.locales,
		httpClient: hc,
		logger:     cfg.logger,
	}, nil
}

// Country calls the Country endpoint. Pass Me to look up the caller's own address.
func (c *Client) Country(ctx context.Context, ip string) (*models.Country, error) {
	return fetch(ctx, c, endpointCountry, ip, models.NewCountry)
}

// City calls the City endpoint. Pass Me to look up the caller's own address.
func (c *Client) City(ctx context.Context, ip string) (*models.City, error) {
	return fetch(ctx, c, endpointCity, ip, models.NewCity)
}

// Insights calls the Insights endpoint, which GeoLite2 does not offer. Pass Me to look up
// the caller's own address.
func (c *Client) Insights(ctx context.Context, ip string) (*models.Insights, error) {
	return fetch(ctx, c, endpointInsights, ip, models.NewInsights)
}

// Close releases idle connections. Calling it more than once has no effect.
func (c *Client) Close() error {
	c.closeOnce.Do(c.httpClient.CloseIdleConnections)
	return nil
}

func fetch[T models.Model](
	ctx context.Context,
	c *Client,
	ep endpoint,
	ip string,
	build func(map[string]any, ...models.Option) (T, error),
) (T, error) {
	var zero T

	uri, err := requestURI(c.host, ep, ip)
	if err != nil {
		return zero, err
	}

	record, err := c.get(ctx, uri)
	if err != nil {
		return zero, err
	}

	return build(record, models.WithLocales(c.locales))
}

func (c *Client) get(ctx context.Context, uri string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &geoip.Error{Message: "failed to create request", URI: uri, Err: err}
	}
	req.SetBasicAuth(c.accountID, c.licenseKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &geoip.TransportError{URI: uri, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &geoip.TransportError{URI: uri, Err: err}
	}

	c.logger.Debug("web service response",
		"uri", uri,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return decodeResponse(resp.StatusCode, resp.Header, body, uri)
}
