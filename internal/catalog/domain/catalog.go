// Package domain 商品目录领域模型：筛选条件与展示视图
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// Filter 商品筛选条件。空字段不参与过滤。
type Filter struct {
	Category string
	Color    string
	Material string
	MinPrice string
	MaxPrice string
}

// IsEmpty 是否无任何筛选条件
func (f *Filter) IsEmpty() bool {
	return f.Category == "" && f.Color == "" && f.Material == "" && f.MinPrice == "" && f.MaxPrice == ""
}

// Matches 商品是否满足全部筛选条件
func (f *Filter) Matches(p *woocommerce.Product) bool {
	if f.Category != "" && !containsFold(p.Categories, f.Category) {
		return false
	}
	if f.Color != "" && !hasAttributeOption(p, "color", f.Color) {
		return false
	}
	if f.Material != "" && !hasAttributeOption(p, "material", f.Material) {
		return false
	}

	if f.MinPrice != "" || f.MaxPrice != "" {
		price := EffectivePrice(p)
		if f.MinPrice != "" && price.LessThan(utils.ParsePrice(f.MinPrice)) {
			return false
		}
		if f.MaxPrice != "" && price.GreaterThan(utils.ParsePrice(f.MaxPrice)) {
			return false
		}
	}
	return true
}

// EffectivePrice 商品现价：有促销价取促销价，否则取常规价
func EffectivePrice(p *woocommerce.Product) decimal.Decimal {
	if sale := utils.ParsePrice(p.SalePrice); sale.IsPositive() {
		return sale
	}
	if price := utils.ParsePrice(p.Price); price.IsPositive() {
		return price
	}
	return utils.ParsePrice(p.RegularPrice)
}

// DiscountPercent 折扣百分比（向下取整）；无促销时为 0
func DiscountPercent(p *woocommerce.Product) int {
	regular := utils.ParsePrice(p.RegularPrice)
	sale := utils.ParsePrice(p.SalePrice)
	if !regular.IsPositive() || !sale.IsPositive() || sale.GreaterThanOrEqual(regular) {
		return 0
	}
	percent := regular.Sub(sale).Div(regular).Mul(decimal.NewFromInt(100))
	return int(percent.IntPart())
}

// hasAttributeOption 在名称含关键词的属性里匹配选项
func hasAttributeOption(p *woocommerce.Product, nameKeyword, option string) bool {
	for name, options := range p.Attributes {
		if !strings.Contains(strings.ToLower(name), nameKeyword) {
			continue
		}
		if containsFold(options, option) {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
