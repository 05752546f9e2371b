package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wyfcoding/storefront/pkg/logger"
)

// SessionHeader 购物车会话令牌的请求/响应头
const SessionHeader = "woocommerce-session"

// graphqlRequest GraphQL 请求体
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse GraphQL 响应体
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// gql 执行一次 GraphQL 调用，返回响应中刷新后的会话令牌。
// 会话令牌必须由调用方串联进下一次调用，后端以它关联服务端购物车。
func (c *Client) gql(ctx context.Context, operation, token, query string, variables map[string]any, out interface{}) (string, error) {
	start := time.Now()

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return "", fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.GraphQLURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(SessionHeader, "Session "+token)
	}

	var newToken string
	data, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if session := resp.Header.Get(SessionHeader); session != "" {
			newToken = strings.TrimPrefix(session, "Session ")
		}

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: payload}
		}
		return payload, nil
	})
	c.metrics.ObserveUpstream("woocommerce", operation, start, err)
	if err != nil {
		logger.Error(ctx, "WooCommerce GraphQL call failed", "operation", operation, "error", err)
		return "", err
	}

	var parsed graphqlResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode graphql response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return newToken, fmt.Errorf("%s", parsed.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(parsed.Data, out); err != nil {
			return "", fmt.Errorf("failed to decode graphql data: %w", err)
		}
	}
	if newToken == "" {
		newToken = token
	}
	return newToken, nil
}

const productsQuery = `
query Products($first: Int!) {
  products(first: $first, where: {status: "publish"}) {
    nodes {
      databaseId
      name
      slug
      sku
      price(format: RAW)
      regularPrice(format: RAW)
      salePrice(format: RAW)
      stockQuantity
      stockStatus
      image { sourceUrl }
      productCategories { nodes { slug } }
      attributes { nodes { name options } }
      variations(first: 50) {
        nodes {
          databaseId
          sku
          price(format: RAW)
          stockQuantity
          attributes { nodes { name value } }
        }
      }
    }
  }
}`

// gqlProduct GraphQL 商品节点
type gqlProduct struct {
	DatabaseID    int64   `json:"databaseId"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	SKU           string  `json:"sku"`
	Price         string  `json:"price"`
	RegularPrice  string  `json:"regularPrice"`
	SalePrice     string  `json:"salePrice"`
	StockQuantity *int    `json:"stockQuantity"`
	StockStatus   string  `json:"stockStatus"`
	Image         struct {
		SourceURL string `json:"sourceUrl"`
	} `json:"image"`
	ProductCategories struct {
		Nodes []struct {
			Slug string `json:"slug"`
		} `json:"nodes"`
	} `json:"productCategories"`
	Attributes struct {
		Nodes []struct {
			Name    string   `json:"name"`
			Options []string `json:"options"`
		} `json:"nodes"`
	} `json:"attributes"`
	Variations struct {
		Nodes []struct {
			DatabaseID    int64  `json:"databaseId"`
			SKU           string `json:"sku"`
			Price         string `json:"price"`
			StockQuantity *int   `json:"stockQuantity"`
			Attributes    struct {
				Nodes []struct {
					Name  string `json:"name"`
					Value string `json:"value"`
				} `json:"nodes"`
			} `json:"attributes"`
		} `json:"nodes"`
	} `json:"variations"`
}

// toProduct GraphQL 节点转扁平视图
func (g *gqlProduct) toProduct() Product {
	p := Product{
		ID:           g.DatabaseID,
		Name:         g.Name,
		Slug:         g.Slug,
		SKU:          g.SKU,
		Price:        g.Price,
		RegularPrice: g.RegularPrice,
		SalePrice:    g.SalePrice,
		StockStatus:  g.StockStatus,
		Image:        g.Image.SourceURL,
		Attributes:   map[string][]string{},
	}
	if g.StockQuantity != nil {
		p.StockQuantity = *g.StockQuantity
	}
	for _, c := range g.ProductCategories.Nodes {
		p.Categories = append(p.Categories, c.Slug)
	}
	for _, a := range g.Attributes.Nodes {
		p.Attributes[a.Name] = a.Options
	}
	for _, v := range g.Variations.Nodes {
		variation := Variation{
			ID:      v.DatabaseID,
			SKU:     v.SKU,
			Price:   v.Price,
			Options: map[string]string{},
		}
		if v.StockQuantity != nil {
			variation.StockQuantity = *v.StockQuantity
		}
		for _, a := range v.Attributes.Nodes {
			variation.Options[a.Name] = a.Value
		}
		p.Variations = append(p.Variations, variation)
	}
	return p
}

// Products 拉取全部上架商品
func (c *Client) Products(ctx context.Context, limit int) ([]Product, error) {
	var resp struct {
		Products struct {
			Nodes []gqlProduct `json:"nodes"`
		} `json:"products"`
	}
	_, err := c.gql(ctx, "products", "", productsQuery, map[string]any{"first": limit}, &resp)
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(resp.Products.Nodes))
	for i := range resp.Products.Nodes {
		products = append(products, resp.Products.Nodes[i].toProduct())
	}
	return products, nil
}

const categoriesQuery = `
query Categories {
  productCategories(first: 100) {
    nodes { databaseId name slug count }
  }
}`

// Categories 拉取商品分类
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var resp struct {
		ProductCategories struct {
			Nodes []Category `json:"nodes"`
		} `json:"productCategories"`
	}
	_, err := c.gql(ctx, "categories", "", categoriesQuery, nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.ProductCategories.Nodes, nil
}

const attributeTermsQuery = `
query AttributeTerms($taxonomy: String!) {
  terms(first: 100, where: {taxonomies: [$taxonomy]}) {
    nodes { name slug }
  }
}`

// AttributeTerms 拉取属性项（颜色、材质）
func (c *Client) AttributeTerms(ctx context.Context, taxonomy string) ([]AttributeTerm, error) {
	var resp struct {
		Terms struct {
			Nodes []AttributeTerm `json:"nodes"`
		} `json:"terms"`
	}
	_, err := c.gql(ctx, "attribute_terms", "", attributeTermsQuery, map[string]any{"taxonomy": taxonomy}, &resp)
	if err != nil {
		return nil, err
	}
	for i := range resp.Terms.Nodes {
		resp.Terms.Nodes[i].Taxonomy = taxonomy
	}
	return resp.Terms.Nodes, nil
}

const pagesQuery = `
query Pages($locale: String!) {
  pages(first: 50, where: {language: $locale}) {
    nodes { databaseId slug title content }
  }
}`

// Pages 拉取指定语言的 CMS 页面
func (c *Client) Pages(ctx context.Context, locale string) ([]Page, error) {
	var resp struct {
		Pages struct {
			Nodes []struct {
				DatabaseID int64  `json:"databaseId"`
				Slug       string `json:"slug"`
				Title      string `json:"title"`
				Content    string `json:"content"`
			} `json:"nodes"`
		} `json:"pages"`
	}
	_, err := c.gql(ctx, "pages", "", pagesQuery, map[string]any{"locale": locale}, &resp)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, len(resp.Pages.Nodes))
	for _, n := range resp.Pages.Nodes {
		pages = append(pages, Page{ID: n.DatabaseID, Slug: n.Slug, Title: n.Title, Content: n.Content, Locale: locale})
	}
	return pages, nil
}

const menuQuery = `
query Menu($locale: String!) {
  menuItems(first: 50, where: {language: $locale, parentId: 0}) {
    nodes {
      label url
      childItems { nodes { label url } }
    }
  }
}`

// Menu 拉取指定语言的导航菜单
func (c *Client) Menu(ctx context.Context, locale string) ([]MenuItem, error) {
	var resp struct {
		MenuItems struct {
			Nodes []struct {
				Label      string `json:"label"`
				URL        string `json:"url"`
				ChildItems struct {
					Nodes []MenuItem `json:"nodes"`
				} `json:"childItems"`
			} `json:"nodes"`
		} `json:"menuItems"`
	}
	_, err := c.gql(ctx, "menu", "", menuQuery, map[string]any{"locale": locale}, &resp)
	if err != nil {
		return nil, err
	}

	items := make([]MenuItem, 0, len(resp.MenuItems.Nodes))
	for _, n := range resp.MenuItems.Nodes {
		items = append(items, MenuItem{Label: n.Label, URL: n.URL, Children: n.ChildItems.Nodes})
	}
	return items, nil
}

const addToCartMutation = `
mutation AddToCart($productId: Int!, $variationId: Int, $quantity: Int!) {
  addToCart(input: {productId: $productId, variationId: $variationId, quantity: $quantity}) {
    cartItem { key quantity }
  }
}`

// AddToCart 向服务端购物车会话添加一行，返回刷新后的会话令牌
func (c *Client) AddToCart(ctx context.Context, token string, productID, variationID int64, quantity int) (string, error) {
	variables := map[string]any{
		"productId": productID,
		"quantity":  quantity,
	}
	if variationID > 0 {
		variables["variationId"] = variationID
	}
	return c.gql(ctx, "add_to_cart", token, addToCartMutation, variables, nil)
}

const applyCouponMutation = `
mutation ApplyCoupon($code: String!) {
  applyCoupon(input: {code: $code}) {
    cart { discountTotal(format: RAW) }
  }
}`

// ApplyCoupon 在会话购物车上应用优惠券
func (c *Client) ApplyCoupon(ctx context.Context, token, code string) (string, error) {
	return c.gql(ctx, "apply_coupon", token, applyCouponMutation, map[string]any{"code": code}, nil)
}

const cartTotalsQuery = `
query CartTotals {
  cart {
    subtotal(format: RAW)
    shippingTotal(format: RAW)
    discountTotal(format: RAW)
    total(format: RAW)
    appliedCoupons { code }
  }
}`

// GetCartTotals 读取会话购物车的合计
func (c *Client) GetCartTotals(ctx context.Context, token string) (*CartTotals, string, error) {
	var resp struct {
		Cart struct {
			Subtotal       string `json:"subtotal"`
			ShippingTotal  string `json:"shippingTotal"`
			DiscountTotal  string `json:"discountTotal"`
			Total          string `json:"total"`
			AppliedCoupons []struct {
				Code string `json:"code"`
			} `json:"appliedCoupons"`
		} `json:"cart"`
	}
	newToken, err := c.gql(ctx, "cart_totals", token, cartTotalsQuery, nil, &resp)
	if err != nil {
		return nil, newToken, err
	}

	totals := &CartTotals{
		Subtotal:      resp.Cart.Subtotal,
		ShippingTotal: resp.Cart.ShippingTotal,
		DiscountTotal: resp.Cart.DiscountTotal,
		Total:         resp.Cart.Total,
	}
	for _, coupon := range resp.Cart.AppliedCoupons {
		totals.AppliedCoupons = append(totals.AppliedCoupons, coupon.Code)
	}
	return totals, newToken, nil
}

const checkoutMutation = `
mutation Checkout($input: CheckoutInput!) {
  checkout(input: $input) {
    order { databaseId orderNumber }
    customer { email }
  }
}`

// Checkout 提交会话购物车生成订单
func (c *Client) Checkout(ctx context.Context, token string, payload *CheckoutPayload) (*CheckoutResult, error) {
	var resp struct {
		Checkout struct {
			Order struct {
				DatabaseID  int64  `json:"databaseId"`
				OrderNumber string `json:"orderNumber"`
			} `json:"order"`
			Customer struct {
				Email string `json:"email"`
			} `json:"customer"`
		} `json:"checkout"`
	}

	input := map[string]any{
		"paymentMethod": payload.PaymentMethod,
		"billing":       payload.Billing,
		"shipping":      payload.Shipping,
	}
	if payload.CustomerNote != "" {
		input["customerNote"] = payload.CustomerNote
	}

	_, err := c.gql(ctx, "checkout", token, checkoutMutation, map[string]any{"input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{
		OrderID:     resp.Checkout.Order.DatabaseID,
		OrderNumber: resp.Checkout.Order.OrderNumber,
		Email:       resp.Checkout.Customer.Email,
	}, nil
}
