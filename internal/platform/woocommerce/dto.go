package woocommerce

// Product 商品（GraphQL / REST 共用的扁平视图）
// 价格字段保留后端返回的字符串形态，由上层宽松解析
type Product struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	SKU           string             `json:"sku"`
	Price         string             `json:"price"`
	RegularPrice  string             `json:"regular_price"`
	SalePrice     string             `json:"sale_price"`
	Image         string             `json:"image"`
	StockQuantity int                `json:"stock_quantity"`
	StockStatus   string             `json:"stock_status"`
	Categories    []string           `json:"categories"`
	Attributes    map[string][]string `json:"attributes"`
	Variations    []Variation        `json:"variations"`
}

// Variation 商品变体
type Variation struct {
	ID            int64             `json:"id"`
	SKU           string            `json:"sku"`
	Price         string            `json:"price"`
	StockQuantity int               `json:"stock_quantity"`
	Options       map[string]string `json:"options"`
}

// Category 商品分类
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// AttributeTerm 属性项（颜色、材质等）
type AttributeTerm struct {
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
}

// Page CMS 页面
type Page struct {
	ID      int64  `json:"id"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Locale  string `json:"locale"`
}

// MenuItem 导航菜单项
type MenuItem struct {
	Label    string     `json:"label"`
	URL      string     `json:"url"`
	Children []MenuItem `json:"children,omitempty"`
}

// OrderLineItem REST 订单行
type OrderLineItem struct {
	ID        int64  `json:"id,omitempty"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	// 行合计（折后），后端计算
	Total string `json:"total,omitempty"`
}

// ShippingLine REST 运费行
type ShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

// CouponLine REST 优惠券行
type CouponLine struct {
	Code string `json:"code"`
}

// MetaData REST 订单元数据
type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Address 账单/收货地址
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// OrderRequest REST 创建订单请求
type OrderRequest struct {
	PaymentMethod      string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title"`
	SetPaid            bool            `json:"set_paid"`
	Status             string          `json:"status"`
	Billing            Address         `json:"billing"`
	Shipping           Address         `json:"shipping"`
	LineItems          []OrderLineItem `json:"line_items"`
	ShippingLines      []ShippingLine  `json:"shipping_lines,omitempty"`
	CouponLines        []CouponLine    `json:"coupon_lines,omitempty"`
	MetaData           []MetaData      `json:"meta_data,omitempty"`
	CustomerNote       string          `json:"customer_note,omitempty"`
}

// Order REST 订单
type Order struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency"`
	Total         string          `json:"total"`
	DiscountTotal string          `json:"discount_total"`
	ShippingTotal string          `json:"shipping_total"`
	DateCreated   string          `json:"date_created"`
	Billing       Address         `json:"billing"`
	LineItems     []OrderLineItem `json:"line_items"`
	MetaData      []MetaData      `json:"meta_data"`
}

// OrderUpdate REST 订单更新请求
type OrderUpdate struct {
	Status        string     `json:"status,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	SetPaid       bool       `json:"set_paid,omitempty"`
	MetaData      []MetaData `json:"meta_data,omitempty"`
}

// CartTotals GraphQL 购物车会话合计
type CartTotals struct {
	Subtotal       string   `json:"subtotal"`
	ShippingTotal  string   `json:"shippingTotal"`
	DiscountTotal  string   `json:"discountTotal"`
	Total          string   `json:"total"`
	AppliedCoupons []string `json:"appliedCoupons"`
}

// CheckoutPayload GraphQL checkout mutation 输入
type CheckoutPayload struct {
	PaymentMethod string  `json:"paymentMethod"`
	Billing       Address `json:"billing"`
	Shipping      Address `json:"shipping"`
	CustomerNote  string  `json:"customerNote,omitempty"`
}

// CheckoutResult GraphQL checkout mutation 结果
type CheckoutResult struct {
	OrderID     int64  `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Email       string `json:"email"`
}
