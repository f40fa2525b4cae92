package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"maya-shopify-sync/internal/domain/model"
)

// PlanID accepts both string and numeric identifiers.
type PlanID string

func (id *PlanID) UnmarshalJSON(data []byte) error {
	var raw model.RawNumber
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	*id = PlanID(strings.TrimSpace(raw.String()))
	return nil
}

type ProductDto struct {
	ID           PlanID          `json:"id"`
	Name         string          `json:"name"`
	DataQuotaMB  model.RawNumber `json:"data_quota_mb"`
	ValidityDays model.RawNumber `json:"validity_days"`
	RRPUSD       model.RawNumber `json:"rrp_usd"`
}

// ProductPage is the enveloped form of GET /v1/products.
type ProductPage struct {
	Products    []ProductDto `json:"products"`
	NextCursor  string       `json:"next_cursor,omitempty"`
	NextPageURL string       `json:"next_page_url,omitempty"`
}

// DecodeProductPage accepts either a bare array of plans or a ProductPage envelope.
func DecodeProductPage(body []byte) (ProductPage, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var products []ProductDto
		if err := json.Unmarshal(body, &products); err != nil {
			return ProductPage{}, err
		}
		return ProductPage{Products: products}, nil
	}
	var page ProductPage
	if err := json.Unmarshal(body, &page); err != nil {
		return ProductPage{}, err
	}
	return page, nil
}
