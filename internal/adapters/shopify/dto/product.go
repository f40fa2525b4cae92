package dto

// REST Admin API payloads.

type ProductEnvelope struct {
	Product ProductPayload `json:"product"`
}

type ProductPayload struct {
	ID          int64            `json:"id,omitempty"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Published   bool             `json:"published"`
	Variants    []VariantPayload `json:"variants"`
}

type VariantPayload struct {
	ID                  int64   `json:"id,omitempty"`
	Title               string  `json:"title,omitempty"`
	SKU                 string  `json:"sku"`
	Price               string  `json:"price"`
	InventoryManagement *string `json:"inventory_management"`
}

type ProductResponse struct {
	Product struct {
		ID       int64 `json:"id"`
		Variants []struct {
			ID  int64  `json:"id"`
			SKU string `json:"sku"`
		} `json:"variants"`
	} `json:"product"`
}

// GraphQL Admin API payloads.

type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []any                  `json:"path,omitempty"`
	Extensions map[string]any         `json:"extensions,omitempty"`
	Locations  []GraphQLErrorLocation `json:"locations,omitempty"`
}

type GraphQLErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type ShopifyUserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

type ShopifyPageInfo struct {
	HasNextPage bool   `json:"hasNextPage,omitempty"`
	EndCursor   string `json:"endCursor,omitempty"`
}

type ProductVariantSearchData struct {
	ProductVariants struct {
		Nodes []struct {
			ID      string `json:"id,omitempty"`
			SKU     string `json:"sku,omitempty"`
			Product struct {
				ID string `json:"id,omitempty"`
			} `json:"product,omitempty"`
		} `json:"nodes,omitempty"`
	} `json:"productVariants"`
}

type ProductsQueryData struct {
	Products struct {
		Nodes []struct {
			ID    string `json:"id,omitempty"`
			Title string `json:"title,omitempty"`
		} `json:"nodes,omitempty"`
		PageInfo ShopifyPageInfo `json:"pageInfo,omitempty"`
	} `json:"products"`
}

type ProductDeleteData struct {
	ProductDelete struct {
		DeletedProductID string             `json:"deletedProductId,omitempty"`
		UserErrors       []ShopifyUserError `json:"userErrors,omitempty"`
	} `json:"productDelete"`
}
