package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"maya-shopify-sync/internal/adapters/shopify/dto"
)

type WipeService interface {
	DeleteVendorProducts(ctx context.Context, vendor string) (int, error)
}

const (
	wipePageSize             = 50
	productDeleteConcurrency = 5
)

// DeleteVendorProducts removes every product of the vendor and returns how many were deleted.
// The first failed deletion cancels the rest.
func (c *Client) DeleteVendorProducts(ctx context.Context, vendor string) (int, error) {
	if c == nil {
		return 0, errors.New("shopify client is nil")
	}
	vendor = strings.TrimSpace(vendor)
	if vendor == "" {
		return 0, errors.New("vendor is required")
	}

	ids, err := c.listVendorProductIDs(ctx, vendor)
	if err != nil {
		return 0, classifyError("list products", err)
	}
	c.logger.Info("deleting vendor products", zap.String("vendor", vendor), zap.Int("count", len(ids)))

	deleteQuery := `
	mutation productDelete($input: ProductDeleteInput!) {
		productDelete(input: $input) {
			deletedProductId
			userErrors { field message }
		}
	}`

	var deleted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(productDeleteConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			var resp dto.ProductDeleteData
			if err := c.graphqlRequest(gctx, deleteQuery, map[string]any{
				"input": map[string]any{"id": id},
			}, &resp); err != nil {
				return classifyError("delete product "+id, err)
			}
			if err := userErrorsToError("productDelete", resp.ProductDelete.UserErrors); err != nil {
				return err
			}
			deleted.Add(1)
			return nil
		})
	}

	err = g.Wait()
	count := int(deleted.Load())
	if err != nil {
		c.logger.Error("vendor wipe failed", zap.Int("deleted", count), zap.Error(err))
		return count, err
	}
	c.logger.Info("vendor wipe completed", zap.String("vendor", vendor), zap.Int("deleted", count))
	return count, nil
}

func (c *Client) listVendorProductIDs(ctx context.Context, vendor string) ([]string, error) {
	query := `
	query products($first: Int!, $after: String, $query: String!) {
		products(first: $first, after: $after, query: $query) {
			nodes { id title }
			pageInfo { hasNextPage endCursor }
		}
	}`

	var ids []string
	after := ""
	for {
		var data dto.ProductsQueryData
		variables := map[string]any{
			"first": wipePageSize,
			"query": fmt.Sprintf("vendor:'%s'", strings.ReplaceAll(vendor, "'", `\'`)),
		}
		if after != "" {
			variables["after"] = after
		}
		err := c.lookupRetry.Do(ctx, func() error {
			return c.graphqlRequest(ctx, query, variables, &data)
		})
		if err != nil {
			return nil, err
		}
		for _, node := range data.Products.Nodes {
			if id := strings.TrimSpace(node.ID); id != "" {
				ids = append(ids, id)
			}
		}
		c.logger.Debug("listed vendor products page", zap.Int("page_size", len(data.Products.Nodes)), zap.Int("total", len(ids)))

		if !data.Products.PageInfo.HasNextPage || strings.TrimSpace(data.Products.PageInfo.EndCursor) == "" {
			break
		}
		after = data.Products.PageInfo.EndCursor
	}
	return ids, nil
}
