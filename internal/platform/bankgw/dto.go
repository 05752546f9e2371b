package bankgw

// BasketItem 网关订单篮子行
type BasketItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Total     string `json:"total"`
}

// OrderRequest 网关创建订单请求
type OrderRequest struct {
	// 外部订单号：后端订单 ID + 时间戳，防止重试时撞号
	ExternalID  string       `json:"orderNumber"`
	Amount      string       `json:"amount"`
	Currency    string       `json:"currency"`
	Description string       `json:"description,omitempty"`
	ReturnURL   string       `json:"returnUrl"`
	Basket      []BasketItem `json:"basket"`
}

// OrderResponse 网关创建订单的归一化结果
type OrderResponse struct {
	TransactionID string
	RedirectURL   string
}

// rawOrderResponse 网关可能返回的几种响应形态
type rawOrderResponse struct {
	OrderID     string `json:"orderId"`
	PaymentID   string `json:"paymentId"`
	FormURL     string `json:"formUrl"`
	RedirectRaw string `json:"redirectUrl"`
	Checkout    struct {
		RedirectURL string `json:"redirectUrl"`
	} `json:"checkout"`
}

// transactionID 按优先级取交易标识
func (r *rawOrderResponse) transactionID() string {
	if r.OrderID != "" {
		return r.OrderID
	}
	return r.PaymentID
}

// redirectURL 按已知的响应形态逐一取跳转地址
func (r *rawOrderResponse) redirectURL() string {
	if r.FormURL != "" {
		return r.FormURL
	}
	if r.RedirectRaw != "" {
		return r.RedirectRaw
	}
	return r.Checkout.RedirectURL
}

// Callback 网关 webhook 回调体
type Callback struct {
	// 外部订单号（<后端订单ID>-<时间戳>）
	OrderNumber string `json:"orderNumber"`
	// 支付状态
	Status string `json:"status"`
	// 网关交易标识
	TransactionID string `json:"transactionId"`
	// 实付金额
	Amount string `json:"amount"`
}

// IsSuccess 判断回调状态是否为支付成功
func (c *Callback) IsSuccess() bool {
	switch c.Status {
	case "PAID", "SUCCESS", "DEPOSITED", "2":
		return true
	}
	return false
}
