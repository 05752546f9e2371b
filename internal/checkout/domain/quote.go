package domain

import (
	"fmt"

	"github.com/wyfcoding/storefront/pkg/utils"
)

// QuoteKind 报价结果类别
type QuoteKind string

const (
	// QuoteAuthoritative 后端购物车会话算出的权威报价
	QuoteAuthoritative QuoteKind = "authoritative"
	// QuoteEstimated 上游不可用时的本地估算报价，不含优惠与运费
	QuoteEstimated QuoteKind = "estimated"
)

// Quote 结账报价。金额均为十进制字符串。
type Quote struct {
	Kind           QuoteKind `json:"kind"`
	Subtotal       string    `json:"subtotal"`
	ShippingFee    string    `json:"shipping_fee"`
	Discount       string    `json:"discount"`
	Total          string    `json:"total"`
	AppliedCoupons []string  `json:"applied_coupons,omitempty"`
	// SessionToken 后端购物车会话令牌，提交下单时复用以免重建会话
	SessionToken string `json:"-"`
	Zone         Zone   `json:"zone"`
}

// QuoteKey 报价缓存键。同一客户端、同一分区、同一（规范化后的）优惠券
// 对应同一份报价，购物车变更由调用方通过 force 失效。
func QuoteKey(clientID string, zone Zone, coupon string) string {
	return fmt.Sprintf("checkout:quote:%s:%s:%s", clientID, zone, utils.NormalizeCoupon(coupon))
}
