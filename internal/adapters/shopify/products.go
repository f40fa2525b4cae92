package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"maya-shopify-sync/internal/adapters/shopify/dto"
	"maya-shopify-sync/internal/config"
	"maya-shopify-sync/internal/domain/model"
	"maya-shopify-sync/internal/infra/httpclient"
	"maya-shopify-sync/internal/metrics"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type ProductService interface {
	FindBySku(ctx context.Context, sku string) (*model.ProductHandle, error)
	Create(ctx context.Context, product model.DestinationProduct) (model.ProductHandle, error)
	Update(ctx context.Context, handle model.ProductHandle, product model.DestinationProduct) (model.ProductHandle, error)
}

type Client struct {
	config      config.ShopifyConfig
	httpClient  *http.Client
	limiter     *rate.Limiter
	lookupRetry httpclient.RetryPolicy
	metrics     metrics.Recorder
	logger      *zap.Logger
}

type Option func(*Client)

// WithLookupRetry sets the retry policy of read-only lookups. Writes are never retried.
func WithLookupRetry(policy httpclient.RetryPolicy) Option {
	return func(c *Client) { c.lookupRetry = policy }
}

func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *Client) { c.metrics = recorder }
}

func NewClient(cfg config.ShopifyConfig, httpClient *http.Client, logger *zap.Logger, opts ...Option) ProductService {
	if httpClient == nil {
		httpClient = httpclient.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	burst := cfg.RateBurst
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		config:      cfg,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(limit, burst),
		lookupRetry: httpclient.DefaultRetryPolicy(3),
		metrics:     (*metrics.Metrics)(nil),
		logger:      logger.Named("shopify"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindBySku returns the product whose variant carries exactly this SKU, or nil.
func (c *Client) FindBySku(ctx context.Context, sku string) (*model.ProductHandle, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, nil
	}

	query := `
query productVariantBySku($first: Int!, $query: String!) {
	productVariants(first: $first, query: $query) {
		nodes {
			id
			sku
			product { id }
		}
	}
}`

	var data dto.ProductVariantSearchData
	err := c.lookupRetry.Do(ctx, func() error {
		return c.graphqlRequest(ctx, query, map[string]any{
			"first": 5,
			"query": skuSearchQuery(sku),
		}, &data)
	})
	if err != nil {
		return nil, classifyError("lookup sku "+sku, err)
	}

	for _, node := range data.ProductVariants.Nodes {
		if strings.TrimSpace(node.SKU) != sku {
			continue
		}
		productID, err := parseGID(node.Product.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: lookup sku %s: %v", model.ErrDestinationUnavailable, sku, err)
		}
		variantID, _ := parseGID(node.ID)
		return &model.ProductHandle{ProductID: productID, VariantID: variantID}, nil
	}
	return nil, nil
}

func (c *Client) Create(ctx context.Context, product model.DestinationProduct) (model.ProductHandle, error) {
	payload := productPayload(product, model.ProductHandle{})

	raw, err := c.restRequest(ctx, http.MethodPost, c.endpoint("/products.json"), dto.ProductEnvelope{Product: payload})
	if err != nil {
		return model.ProductHandle{}, classifyError("create product", err)
	}
	return decodeHandle("create product", raw)
}

func (c *Client) Update(ctx context.Context, handle model.ProductHandle, product model.DestinationProduct) (model.ProductHandle, error) {
	if handle.ProductID == 0 {
		return model.ProductHandle{}, errors.New("shopify product id is required")
	}
	payload := productPayload(product, handle)

	path := fmt.Sprintf("/products/%d.json", handle.ProductID)
	raw, err := c.restRequest(ctx, http.MethodPut, c.endpoint(path), dto.ProductEnvelope{Product: payload})
	if err != nil {
		return model.ProductHandle{}, classifyError("update product", err)
	}
	return decodeHandle("update product", raw)
}

func (c *Client) endpoint(path string) string {
	return c.config.Endpoint() + "/admin/api/" + c.config.APIVer + path
}

func (c *Client) restRequest(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(bodyBytes)
	}
	return c.shopifyAPIRequest(ctx, method, endpoint, body)
}

func (c *Client) shopifyAPIRequest(ctx context.Context, method string, endpoint string, body io.Reader) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest("shopify", 0)
		return nil, err
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest("shopify", resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.NewStatusError(resp, respBody)
	}

	return respBody, nil
}

func (c *Client) graphqlRequest(ctx context.Context, query string, variables map[string]any, out any) error {
	payload := graphQLRequest{
		Query:     strings.TrimSpace(query),
		Variables: variables,
	}

	raw, err := c.restRequest(ctx, http.MethodPost, c.endpoint("/graphql.json"), payload)
	if err != nil {
		return err
	}

	var resp dto.GraphQLResponse[json.RawMessage]
	if err := json.Unmarshal(raw, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		if isThrottleGraphQLError(resp.Errors) {
			return throttledError(resp.Errors)
		}
		payload, _ := json.Marshal(resp.Errors)
		return &model.ValidationError{StatusCode: http.StatusOK, Payload: payload}
	}
	if out == nil {
		return nil
	}
	if len(resp.Data) == 0 {
		return errors.New("shopify graphql response missing data")
	}
	return json.Unmarshal(resp.Data, out)
}

// classifyError maps a failed call onto the item-level error taxonomy.
func classifyError(action string, err error) error {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Errorf("shopify %s: %w", action, err)
	}

	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && !httpclient.IsRetryableStatus(statusErr.StatusCode) &&
		statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
		return fmt.Errorf("shopify %s: %w", action, &model.ValidationError{
			StatusCode: statusErr.StatusCode,
			Payload:    jsonPayload(statusErr.Body),
		})
	}
	return fmt.Errorf("%w: shopify %s: %w", model.ErrDestinationUnavailable, action, err)
}

func jsonPayload(body []byte) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}

func decodeHandle(action string, raw []byte) (model.ProductHandle, error) {
	var resp dto.ProductResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.ProductHandle{}, fmt.Errorf("%w: shopify %s: decode response: %v", model.ErrDestinationUnavailable, action, err)
	}
	if resp.Product.ID == 0 {
		return model.ProductHandle{}, fmt.Errorf("%w: shopify %s returned empty product id", model.ErrDestinationUnavailable, action)
	}
	handle := model.ProductHandle{ProductID: resp.Product.ID}
	if len(resp.Product.Variants) > 0 {
		handle.VariantID = resp.Product.Variants[0].ID
	}
	return handle, nil
}

func productPayload(product model.DestinationProduct, handle model.ProductHandle) dto.ProductPayload {
	payload := dto.ProductPayload{
		ID:          handle.ProductID,
		Title:       product.Title,
		BodyHTML:    product.BodyHTML,
		Vendor:      product.Vendor,
		ProductType: product.ProductType,
		Published:   product.Published,
		Variants:    make([]dto.VariantPayload, 0, len(product.Variants)),
	}
	for i, v := range product.Variants {
		variant := dto.VariantPayload{
			ID:                  v.ID,
			Title:               v.Title,
			SKU:                 v.SKU,
			Price:               v.Price.StringFixed(2),
			InventoryManagement: v.InventoryManagement,
		}
		if i == 0 && variant.ID == 0 {
			variant.ID = handle.VariantID
		}
		payload.Variants = append(payload.Variants, variant)
	}
	return payload
}

func skuSearchQuery(sku string) string {
	queryValue := sku
	if strings.ContainsAny(queryValue, " \":") {
		queryValue = strings.ReplaceAll(queryValue, `"`, `\"`)
		queryValue = fmt.Sprintf(`"%s"`, queryValue)
	}
	return fmt.Sprintf("sku:%s", queryValue)
}

// parseGID extracts the numeric id of gid://shopify/<Type>/<id>.
func parseGID(gid string) (int64, error) {
	gid = strings.TrimSpace(gid)
	idx := strings.LastIndex(gid, "/")
	if idx < 0 || idx == len(gid)-1 {
		return 0, fmt.Errorf("invalid shopify gid %q", gid)
	}
	id, err := strconv.ParseInt(gid[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid shopify gid %q: %w", gid, err)
	}
	return id, nil
}

func userErrorsToError(action string, errs []dto.ShopifyUserError) error {
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			continue
		}
		if len(e.Field) > 0 {
			msg = fmt.Sprintf("%s: %s", strings.Join(e.Field, "."), msg)
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return fmt.Errorf("shopify %s failed with user errors", action)
	}
	return fmt.Errorf("shopify %s failed: %s", action, strings.Join(parts, "; "))
}
