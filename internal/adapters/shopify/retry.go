package shopify

import (
	"encoding/json"
	"net/http"
	"strings"

	"maya-shopify-sync/internal/adapters/shopify/dto"
	"maya-shopify-sync/internal/infra/httpclient"
)

func isThrottleGraphQLError(errs []dto.GraphQLError) bool {
	for _, e := range errs {
		if strings.Contains(strings.ToLower(e.Message), "throttled") {
			return true
		}
		if code, ok := e.Extensions["code"].(string); ok && strings.EqualFold(code, "THROTTLED") {
			return true
		}
	}
	return false
}

// throttledError reports a GraphQL throttle as a 429 so lookups back off like any rate-limited call.
func throttledError(errs []dto.GraphQLError) error {
	body, _ := json.Marshal(errs)
	return &httpclient.StatusError{
		StatusCode: http.StatusTooManyRequests,
		Status:     "429 Throttled",
		Body:       body,
	}
}
