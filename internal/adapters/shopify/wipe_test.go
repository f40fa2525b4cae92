package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteVendorProducts(t *testing.T) {
	var (
		mu      sync.Mutex
		deleted []string
	)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if strings.HasPrefix(req.Query, "mutation") {
			input := req.Variables["input"].(map[string]any)
			mu.Lock()
			deleted = append(deleted, input["id"].(string))
			mu.Unlock()
			_, _ = w.Write([]byte(`{"data":{"productDelete":{"deletedProductId":"x","userErrors":[]}}}`))
			return
		}

		assert.Equal(t, "vendor:'Maya Mobile'", req.Variables["query"])
		if req.Variables["after"] == nil {
			_, _ = w.Write([]byte(`{"data":{"products":{"nodes":[{"id":"gid://shopify/Product/1"},{"id":"gid://shopify/Product/2"}],"pageInfo":{"hasNextPage":true,"endCursor":"c1"}}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"products":{"nodes":[{"id":"gid://shopify/Product/3"}],"pageInfo":{"hasNextPage":false}}}}`))
	}))

	count, err := client.DeleteVendorProducts(context.Background(), "Maya Mobile")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.ElementsMatch(t, []string{"gid://shopify/Product/1", "gid://shopify/Product/2", "gid://shopify/Product/3"}, deleted)
}

func TestDeleteVendorProducts_UserErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if strings.HasPrefix(req.Query, "mutation") {
			_, _ = w.Write([]byte(`{"data":{"productDelete":{"userErrors":[{"field":["id"],"message":"Product does not exist"}]}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"products":{"nodes":[{"id":"gid://shopify/Product/1"}],"pageInfo":{"hasNextPage":false}}}}`))
	}))

	count, err := client.DeleteVendorProducts(context.Background(), "Maya Mobile")
	require.Error(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, err.Error(), "id: Product does not exist")
}

func TestDeleteVendorProducts_RequiresVendor(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	_, err := client.DeleteVendorProducts(context.Background(), " ")
	assert.Error(t, err)
}
