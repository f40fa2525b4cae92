package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// RawNumber keeps an upstream numeric field exactly as it was sent.
// JSON numbers, numeric strings and null all decode without error.
type RawNumber string

func (n *RawNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = RawNumber(strings.TrimSpace(s))
		return nil
	}
	*n = RawNumber(data)
	return nil
}

func (n RawNumber) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(n))
}

func (n RawNumber) String() string {
	return string(n)
}

// SourceProduct is one eSIM plan as published by Maya Mobile.
type SourceProduct struct {
	ID           string
	Name         string
	DataQuotaMB  RawNumber
	ValidityDays RawNumber
	RRPUSD       RawNumber
}

type Variant struct {
	ID                  int64
	Title               string
	SKU                 string
	Price               decimal.Decimal
	InventoryManagement *string
}

// DestinationProduct is the Shopify representation of a plan.
type DestinationProduct struct {
	Title       string
	BodyHTML    string
	Vendor      string
	ProductType string
	Published   bool
	Variants    []Variant
}

// SKU returns the SKU of the primary variant.
func (p DestinationProduct) SKU() string {
	if len(p.Variants) == 0 {
		return ""
	}
	return p.Variants[0].SKU
}

type ProductHandle struct {
	ProductID int64
	VariantID int64
}
