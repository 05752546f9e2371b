// Package application 支付用例逻辑：银行网关下单编排、webhook 处理与滞留订单对账
package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	cartapp "github.com/wyfcoding/storefront/internal/cart/application"
	checkoutdomain "github.com/wyfcoding/storefront/internal/checkout/domain"
	"github.com/wyfcoding/storefront/internal/payment/domain"
	"github.com/wyfcoding/storefront/internal/platform/bankgw"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// BackendOrders 支付编排依赖的后端 REST 操作
type BackendOrders interface {
	GetProduct(ctx context.Context, productID int64) (*woocommerce.Product, error)
	CreateOrder(ctx context.Context, req *woocommerce.OrderRequest) (*woocommerce.Order, error)
	UpdateOrder(ctx context.Context, orderID int64, update *woocommerce.OrderUpdate) (*woocommerce.Order, error)
	ListOrders(ctx context.Context, status string, createdBefore time.Time, limit int) ([]woocommerce.Order, error)
}

// Gateway 银行支付网关操作
type Gateway interface {
	Token(ctx context.Context) (string, error)
	CreateOrder(ctx context.Context, token string, order *bankgw.OrderRequest) (*bankgw.OrderResponse, error)
	VerifySignature(body []byte, signature string) bool
	ReturnURL() string
	Currency() string
}

// CartProvider 支付编排读取/清空购物车的接口
type CartProvider interface {
	GetCart(ctx context.Context, clientID string) (*cartapp.CartDTO, error)
	ClearCart(ctx context.Context, clientID string) error
}

// StartPaymentCommand 发起银行卡支付命令
type StartPaymentCommand struct {
	ClientID     string
	FirstName    string
	LastName     string
	Address1     string
	City         string
	Phone        string
	Email        string
	CustomerNote string
	Coupon       string
}

// StartPaymentResult 发起支付的结果。失败时 Error 携带可展示的错误消息。
type StartPaymentResult struct {
	Success     bool   `json:"success"`
	OrderID     int64  `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Orchestrator 支付编排服务。
// 流程：权威价格核价 → 运费 → 创建 pending 后端订单 → 网关换令牌 →
// 网关下单 → 回写订单元数据 → 返回跳转地址。
type Orchestrator struct {
	orders    BackendOrders
	gateway   Gateway
	carts     CartProvider
	shipping  *checkoutdomain.ShippingPolicy
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewOrchestrator 创建支付编排服务
func NewOrchestrator(
	orders BackendOrders,
	gateway Gateway,
	carts CartProvider,
	shipping *checkoutdomain.ShippingPolicy,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *Orchestrator {
	return &Orchestrator{orders: orders, gateway: gateway, carts: carts, shipping: shipping, publisher: publisher, metrics: m}
}

// StartPayment 发起银行卡支付，返回网关跳转地址
func (o *Orchestrator) StartPayment(ctx context.Context, cmd StartPaymentCommand) (*StartPaymentResult, error) {
	if strings.TrimSpace(cmd.City) == "" {
		return &StartPaymentResult{Success: false, Error: "city is required"}, nil
	}

	cart, err := o.carts.GetCart(ctx, cmd.ClientID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return &StartPaymentResult{Success: false, Error: "cart is empty"}, nil
	}

	// 权威核价：逐商品查后端现价。查询失败的行按 0 参与毛小计，
	// 订单合计最终仍由后端定价，这里只影响免邮判断。
	gross := decimal.Zero
	for i := range cart.Items {
		item := &cart.Items[i]
		price := decimal.Zero
		product, err := o.orders.GetProduct(ctx, item.ProductID)
		if err != nil {
			logger.Warn(ctx, "Product price lookup failed, contributing zero to subtotal",
				"product_id", item.ProductID, "error", err)
		} else {
			price = utils.ParsePrice(product.Price)
		}
		gross = gross.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	zone := o.shipping.ZoneFor(cmd.City)
	fee := o.shipping.Fee(zone, gross)

	order, err := o.createPendingOrder(ctx, cmd, cart, fee)
	if err != nil {
		logger.Error(ctx, "Failed to create pending order", "client_id", cmd.ClientID, "error", err)
		return &StartPaymentResult{Success: false, Error: err.Error()}, nil
	}

	token, err := o.gateway.Token(ctx)
	if err != nil {
		return &StartPaymentResult{Success: false, OrderID: order.ID, Error: err.Error()}, nil
	}

	externalID := fmt.Sprintf("%d-%d", order.ID, time.Now().Unix())
	gatewayOrder := o.buildGatewayOrder(order, externalID)

	resp, err := o.gateway.CreateOrder(ctx, token, gatewayOrder)
	if err != nil {
		logger.Error(ctx, "Gateway order creation failed", "order_id", order.ID, "error", err)
		return &StartPaymentResult{Success: false, OrderID: order.ID, Error: err.Error()}, nil
	}

	// 元数据回写失败不阻断支付，webhook 仍能按外部订单号关联
	if _, err := o.orders.UpdateOrder(ctx, order.ID, &woocommerce.OrderUpdate{
		MetaData: []woocommerce.MetaData{
			{Key: "gateway_external_id", Value: externalID},
			{Key: "gateway_transaction_id", Value: resp.TransactionID},
		},
	}); err != nil {
		logger.Warn(ctx, "Failed to persist gateway metadata", "order_id", order.ID, "error", err)
	}

	o.metrics.OrdersCreatedTotal.Inc()
	o.metrics.PaymentRedirectsTotal.Inc()

	if err := o.publisher.Publish(ctx, "payment.initiated", externalID, domain.PaymentInitiatedEvent{
		ClientID:      cmd.ClientID,
		OrderID:       order.ID,
		ExternalID:    externalID,
		TransactionID: resp.TransactionID,
		Amount:        order.Total,
		Currency:      o.gateway.Currency(),
		InitiatedAt:   time.Now().Unix(),
	}); err != nil {
		logger.Error(ctx, "Failed to publish payment initiated event", "order_id", order.ID, "error", err)
	}

	if err := o.carts.ClearCart(ctx, cmd.ClientID); err != nil {
		logger.Warn(ctx, "Failed to clear cart after payment start", "client_id", cmd.ClientID, "error", err)
	}

	return &StartPaymentResult{
		Success:     true,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// createPendingOrder 创建 pending 状态的后端订单，行价由后端定
func (o *Orchestrator) createPendingOrder(ctx context.Context, cmd StartPaymentCommand, cart *cartapp.CartDTO, shippingFee decimal.Decimal) (*woocommerce.Order, error) {
	address := woocommerce.Address{
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Address1:  cmd.Address1,
		City:      cmd.City,
		Phone:     cmd.Phone,
		Email:     cmd.Email,
	}

	lineItems := make([]woocommerce.OrderLineItem, 0, len(cart.Items))
	for i := range cart.Items {
		lineItems = append(lineItems, woocommerce.OrderLineItem{
			ProductID: cart.Items[i].ProductID,
			Quantity:  cart.Items[i].Quantity,
		})
	}

	req := &woocommerce.OrderRequest{
		PaymentMethod:      "bank_card",
		PaymentMethodTitle: "Bank card",
		SetPaid:            false,
		Status:             "pending",
		Billing:            address,
		Shipping:           address,
		LineItems:          lineItems,
		ShippingLines: []woocommerce.ShippingLine{
			{MethodID: "flat_rate", MethodTitle: "Delivery", Total: shippingFee.String()},
		},
		CustomerNote: cmd.CustomerNote,
	}
	if code := utils.NormalizeCoupon(cmd.Coupon); code != "" {
		req.CouponLines = []woocommerce.CouponLine{{Code: code}}
	}

	return o.orders.CreateOrder(ctx, req)
}

// buildGatewayOrder 把后端订单映射为网关订单。
// 篮子行单价取行合计除以数量（后端行合计为折后价），运费单列一行。
func (o *Orchestrator) buildGatewayOrder(order *woocommerce.Order, externalID string) *bankgw.OrderRequest {
	basket := make([]bankgw.BasketItem, 0, len(order.LineItems)+1)
	for i := range order.LineItems {
		line := &order.LineItems[i]
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		total := utils.ParsePrice(line.Total)
		unit := total.DivRound(decimal.NewFromInt(int64(qty)), 2)
		basket = append(basket, bankgw.BasketItem{
			Name:      line.Name,
			Quantity:  qty,
			UnitPrice: unit.String(),
			Total:     total.String(),
		})
	}

	if shipping := utils.ParsePrice(order.ShippingTotal); shipping.IsPositive() {
		basket = append(basket, bankgw.BasketItem{
			Name:      "SHIPPING",
			Quantity:  1,
			UnitPrice: shipping.String(),
			Total:     shipping.String(),
		})
	}

	return &bankgw.OrderRequest{
		ExternalID:  externalID,
		Amount:      utils.ParsePrice(order.Total).String(),
		Currency:    o.gateway.Currency(),
		Description: fmt.Sprintf("Order %s", order.Number),
		ReturnURL:   o.gateway.ReturnURL(),
		Basket:      basket,
	}
}
