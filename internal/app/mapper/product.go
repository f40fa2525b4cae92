// Package mapper turns Maya Mobile plans into Shopify products.
package mapper

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"maya-shopify-sync/internal/domain/model"
)

const (
	Vendor             = "Maya Mobile"
	ProductType        = "eSIM"
	DefaultPlanName    = "eSIM Plan"
	DefaultVariantName = "Default Title"
)

var (
	megabytesPerGigabyte = decimal.NewFromInt(1024)
	maxWholeNumber       = decimal.NewFromInt(math.MaxInt64)
)

type Mapper struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{logger: logger.Named("mapper")}
}

// Map never fails: malformed numbers are logged and treated as zero.
func (m *Mapper) Map(p model.SourceProduct) model.DestinationProduct {
	quotaMB := m.wholeNumber(p, "data_quota_mb", p.DataQuotaMB)
	validityDays := m.wholeNumber(p, "validity_days", p.ValidityDays)
	price := m.price(p)

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = DefaultPlanName
	}

	return model.DestinationProduct{
		Title: fmt.Sprintf("%s - %s GB", name, Gigabytes(quotaMB)),
		BodyHTML: fmt.Sprintf("<p>A new eSIM plan from %s. Data: %d MB. Validity: %d days.</p>",
			Vendor, quotaMB, validityDays),
		Vendor:      Vendor,
		ProductType: ProductType,
		Published:   true,
		Variants: []model.Variant{
			{
				Title:               DefaultVariantName,
				SKU:                 strings.TrimSpace(p.ID),
				Price:               price,
				InventoryManagement: nil,
			},
		},
	}
}

// Gigabytes renders megabytes as gigabytes rounded to one decimal place: 2048 -> "2", 1536 -> "1.5".
func Gigabytes(megabytes int64) string {
	return decimal.NewFromInt(megabytes).Div(megabytesPerGigabyte).Round(1).String()
}

func (m *Mapper) wholeNumber(p model.SourceProduct, field string, raw model.RawNumber) int64 {
	value, ok := parseDecimal(raw)
	if !ok || !value.IsInteger() || value.IsNegative() || value.GreaterThan(maxWholeNumber) {
		m.warnCoerced(p, field, raw)
		return 0
	}
	return value.IntPart()
}

func (m *Mapper) price(p model.SourceProduct) decimal.Decimal {
	value, ok := parseDecimal(p.RRPUSD)
	if !ok || value.IsNegative() {
		m.warnCoerced(p, "rrp_usd", p.RRPUSD)
		return decimal.Zero
	}
	return value.Round(2)
}

func (m *Mapper) warnCoerced(p model.SourceProduct, field string, raw model.RawNumber) {
	m.logger.Warn("malformed numeric field coerced to 0",
		zap.String("sku", p.ID),
		zap.String("field", field),
		zap.String("value", raw.String()),
	)
}

func parseDecimal(raw model.RawNumber) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}
