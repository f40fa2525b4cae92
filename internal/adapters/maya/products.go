package maya

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"maya-shopify-sync/internal/adapters/maya/dto"
	"maya-shopify-sync/internal/config"
	"maya-shopify-sync/internal/domain/model"
	"maya-shopify-sync/internal/infra/httpclient"
	"maya-shopify-sync/internal/metrics"
)

const productsPath = "/v1/products"

type CatalogService interface {
	FetchAllProducts(ctx context.Context) ([]model.SourceProduct, error)
}

type Client struct {
	config     config.MayaConfig
	httpClient *http.Client
	retry      httpclient.RetryPolicy
	metrics    metrics.Recorder
	logger     *zap.Logger
}

type Option func(*Client)

func WithRetryPolicy(policy httpclient.RetryPolicy) Option {
	return func(c *Client) { c.retry = policy }
}

func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *Client) { c.metrics = recorder }
}

func NewClient(cfg config.MayaConfig, httpClient *http.Client, logger *zap.Logger, opts ...Option) CatalogService {
	if httpClient == nil {
		httpClient = httpclient.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		config:     cfg,
		httpClient: httpClient,
		retry:      httpclient.DefaultRetryPolicy(3),
		metrics:    (*metrics.Metrics)(nil),
		logger:     logger.Named("maya"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAllProducts walks every catalog page and returns the plans in upstream order.
func (c *Client) FetchAllProducts(ctx context.Context) ([]model.SourceProduct, error) {
	firstURL, err := c.firstPageURL()
	if err != nil {
		return nil, err
	}

	maxPages := c.config.MaxPages
	if maxPages <= 0 {
		maxPages = 1000
	}

	var (
		products []model.SourceProduct
		visited  = make(map[string]struct{})
		pageURL  = firstURL
	)
	for page := 1; pageURL != ""; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("%w: catalog exceeds %d pages", model.ErrUpstreamUnavailable, maxPages)
		}
		if _, seen := visited[pageURL]; seen {
			return nil, fmt.Errorf("%w: pagination loop at %s", model.ErrUpstreamUnavailable, pageURL)
		}
		visited[pageURL] = struct{}{}

		result, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		for _, p := range result.page.Products {
			products = append(products, mapProduct(p))
		}
		c.logger.Debug("catalog page fetched",
			zap.Int("page", page),
			zap.Int("items", len(result.page.Products)),
			zap.Int("total", len(products)),
		)

		pageURL, err = nextPageURL(firstURL, pageURL, result)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
		}
	}

	c.logger.Info("catalog fetched", zap.Int("products", len(products)))
	return products, nil
}

type pageResult struct {
	page dto.ProductPage
	link string
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (pageResult, error) {
	var result pageResult
	policy := c.retry
	policy.Retryable = isRetryableCatalogError
	err := policy.Do(ctx, func() error {
		body, header, err := c.get(ctx, pageURL)
		if err != nil {
			if isRetryableCatalogError(err) {
				c.logger.Warn("catalog request failed, retrying", zap.String("url", pageURL), zap.Error(err))
			}
			return err
		}
		page, err := dto.DecodeProductPage(body)
		if err != nil {
			return fmt.Errorf("decode catalog page: %w", err)
		}
		result = pageResult{page: page, link: header.Get("Link")}
		return nil
	})
	if err == nil {
		return result, nil
	}

	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) &&
		(statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
		return pageResult{}, fmt.Errorf("%w: %w", model.ErrUpstreamAuth, err)
	}
	return pageResult{}, fmt.Errorf("%w: GET %s: %w", model.ErrUpstreamUnavailable, pageURL, err)
}

// isRetryableCatalogError retries 5xx and transport failures. The catalog API gets no 4xx retries, 429 included.
func isRetryableCatalogError(err error) bool {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError {
		return false
	}
	return httpclient.IsTransient(err)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, err
	}
	req.SetBasicAuth(c.config.ApiKey, c.config.ApiSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest("maya", 0)
		return nil, nil, err
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest("maya", resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, httpclient.NewStatusError(resp, respBody)
	}
	return respBody, resp.Header, nil
}

func (c *Client) firstPageURL() (string, error) {
	base := strings.TrimRight(strings.TrimSpace(c.config.BaseUrl), "/")
	if base == "" {
		return "", fmt.Errorf("%w: maya base url is empty", model.ErrConfiguration)
	}
	u, err := url.Parse(base + productsPath)
	if err != nil {
		return "", fmt.Errorf("%w: maya base url: %v", model.ErrConfiguration, err)
	}
	if c.config.PageSize > 0 {
		q := u.Query()
		q.Set("per_page", strconv.Itoa(c.config.PageSize))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// nextPageURL prefers the Link header, then an explicit next URL, then a cursor.
// An empty result means the catalog is exhausted.
func nextPageURL(firstURL, currentURL string, result pageResult) (string, error) {
	if next := parseNextLink(result.link); next != "" {
		return resolve(currentURL, next)
	}
	if next := strings.TrimSpace(result.page.NextPageURL); next != "" {
		return resolve(currentURL, next)
	}
	if cursor := strings.TrimSpace(result.page.NextCursor); cursor != "" {
		u, err := url.Parse(firstURL)
		if err != nil {
			return "", err
		}
		q := u.Query()
		q.Set("cursor", cursor)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	return "", nil
}

func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid next page url %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

// parseNextLink extracts the rel="next" target of an RFC 8288 Link header.
// Targets are cut at their angle brackets, so commas inside a URL do not split it.
func parseNextLink(header string) string {
	rest := header
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			return ""
		}
		closing := strings.IndexByte(rest[open:], '>')
		if closing < 0 {
			return ""
		}
		target := strings.TrimSpace(rest[open+1 : open+closing])
		rest = rest[open+closing+1:]

		params := rest
		if next := strings.IndexByte(rest, '<'); next >= 0 {
			params = rest[:next]
		}
		if target != "" && hasNextRel(params) {
			return target
		}
	}
}

func hasNextRel(params string) bool {
	for _, param := range strings.Split(params, ";") {
		param = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(param), ","))
		key, value, ok := strings.Cut(param, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
			continue
		}
		for _, rel := range strings.Fields(strings.Trim(strings.TrimSpace(value), `"`)) {
			if strings.EqualFold(rel, "next") {
				return true
			}
		}
	}
	return false
}

func mapProduct(p dto.ProductDto) model.SourceProduct {
	return model.SourceProduct{
		ID:           string(p.ID),
		Name:         p.Name,
		DataQuotaMB:  p.DataQuotaMB,
		ValidityDays: p.ValidityDays,
		RRPUSD:       p.RRPUSD,
	}
}
