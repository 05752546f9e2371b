// Package domain 结账领域模型：运费分区策略与报价语义
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// Zone 运费分区
type Zone string

const (
	// ZoneCapital 首都区
	ZoneCapital Zone = "capital"
	// ZoneOther 其他地区
	ZoneOther Zone = "other"
)

// ShippingPolicy 运费策略：毛小计达到阈值免运费，否则按分区收固定运费。
// 分区以折前毛小计判断，优惠券不影响免邮资格。
type ShippingPolicy struct {
	freeThreshold decimal.Decimal
	capitalFee    decimal.Decimal
	otherFee      decimal.Decimal
	capitalNames  map[string]struct{}
}

// NewShippingPolicy 创建运费策略。
// capitalNames 是首都城市在各语言下的拼写，匹配时忽略大小写与首尾空白。
func NewShippingPolicy(freeThreshold, capitalFee, otherFee string, capitalNames []string) *ShippingPolicy {
	names := make(map[string]struct{}, len(capitalNames))
	for _, name := range capitalNames {
		names[normalizeCity(name)] = struct{}{}
	}
	return &ShippingPolicy{
		freeThreshold: utils.ParsePrice(freeThreshold),
		capitalFee:    utils.ParsePrice(capitalFee),
		otherFee:      utils.ParsePrice(otherFee),
		capitalNames:  names,
	}
}

// ZoneFor 根据收货城市判断分区
func (p *ShippingPolicy) ZoneFor(city string) Zone {
	if _, ok := p.capitalNames[normalizeCity(city)]; ok {
		return ZoneCapital
	}
	return ZoneOther
}

// Fee 计算运费：毛小计 >= 阈值免运费，否则按分区固定收费
func (p *ShippingPolicy) Fee(zone Zone, grossSubtotal decimal.Decimal) decimal.Decimal {
	if grossSubtotal.GreaterThanOrEqual(p.freeThreshold) {
		return decimal.Zero
	}
	if zone == ZoneCapital {
		return p.capitalFee
	}
	return p.otherFee
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
