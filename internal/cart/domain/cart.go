// Package domain 包含购物车的领域模型：行合并、库存上限与金额合计
package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/storefront/pkg/utils"
	"gorm.io/gorm"
)

// DefaultStockCap 库存未知时的默认上限
const DefaultStockCap = 999

// CurrentSchemaVersion 购物车持久化结构的当前版本
const CurrentSchemaVersion = 2

// Cart 购物车聚合，按客户端令牌隔离
type Cart struct {
	gorm.Model
	ClientID      string     `gorm:"column:client_id;type:varchar(36);uniqueIndex;not null"`
	SchemaVersion int        `gorm:"column:schema_version;not null;default:1"`
	Items         []CartItem `gorm:"foreignKey:CartID"`
}

func (Cart) TableName() string { return "carts" }

// CartItem 购物车行
type CartItem struct {
	gorm.Model
	CartID    uint   `gorm:"column:cart_id;index;not null"`
	ProductID int64  `gorm:"column:product_id;not null"`
	Name      string `gorm:"column:name;type:varchar(255);not null"`
	// 价格保留后端返回的字符串形态，合计时宽松解析
	Price           string            `gorm:"column:price;type:varchar(32)"`
	Image           string            `gorm:"column:image;type:varchar(512)"`
	Quantity        int               `gorm:"column:quantity;not null"`
	Slug            string            `gorm:"column:slug;type:varchar(255)"`
	SelectedOptions map[string]string `gorm:"column:selected_options;serializer:json"`
	SKU             string            `gorm:"column:sku;type:varchar(64);index"`
	StockQuantity   int               `gorm:"column:stock_quantity;not null;default:0"`
}

func (CartItem) TableName() string { return "cart_items" }

// NoticeKind 用户提示类型
type NoticeKind string

const (
	NoticeAdded      NoticeKind = "added"
	NoticeIncreased  NoticeKind = "quantity_increased"
	NoticeDecreased  NoticeKind = "quantity_decreased"
	NoticeRemoved    NoticeKind = "removed"
	NoticeCleared    NoticeKind = "cleared"
	NoticeStockLimit NoticeKind = "stock_limit"
	NoticeMissing    NoticeKind = "not_in_cart"
)

// Notice 购物车变更产生的用户提示
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Mutated 提示是否对应一次成功的状态变更
func (n Notice) Mutated() bool {
	return n.Kind != NoticeStockLimit && n.Kind != NoticeMissing
}

// stockIdentity 库存上限的归并键：有 SKU 按 SKU 归并，否则按商品 ID
// 同一实物可能通过两个变体 ID 进入购物车，按 SKU 合并计数
func stockIdentity(sku string, productID int64) string {
	if sku != "" {
		return "sku:" + sku
	}
	return "id:" + strconv.FormatInt(productID, 10)
}

// stockCap 行的库存上限，未知时取默认值
func stockCap(stockQuantity int) int {
	if stockQuantity > 0 {
		return stockQuantity
	}
	return DefaultStockCap
}

// quantityFor 统计与给定归并键相同的所有行的数量之和
func (c *Cart) quantityFor(identity string) int {
	total := 0
	for i := range c.Items {
		if stockIdentity(c.Items[i].SKU, c.Items[i].ProductID) == identity {
			total += c.Items[i].Quantity
		}
	}
	return total
}

// find 按商品 ID 定位行
func (c *Cart) find(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddItem 添加商品：同 ID 行数量 +1，否则追加新行。
// 超出库存上限时状态不变，仅返回提示。
func (c *Cart) AddItem(item CartItem) Notice {
	identity := stockIdentity(item.SKU, item.ProductID)
	cap := stockCap(item.StockQuantity)

	if c.quantityFor(identity) >= cap {
		return Notice{Kind: NoticeStockLimit, Message: "stock limit reached for " + item.Name}
	}

	if existing := c.find(item.ProductID); existing != nil {
		existing.Quantity++
		return Notice{Kind: NoticeIncreased, Message: item.Name + " quantity increased"}
	}

	item.Quantity = 1
	c.Items = append(c.Items, item)
	return Notice{Kind: NoticeAdded, Message: item.Name + " added to cart"}
}

// RemoveItem 按商品 ID 删除行，始终成功
func (c *Cart) RemoveItem(productID int64) Notice {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			name := c.Items[i].Name
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return Notice{Kind: NoticeRemoved, Message: name + " removed from cart"}
		}
	}
	return Notice{Kind: NoticeRemoved, Message: "item removed from cart"}
}

// QuantityDirection 数量调整方向
type QuantityDirection string

const (
	QuantityInc QuantityDirection = "inc"
	QuantityDec QuantityDirection = "dec"
)

// UpdateQuantity 调整行数量：dec 最低到 1，inc 复用库存上限检查
func (c *Cart) UpdateQuantity(productID int64, direction QuantityDirection) Notice {
	item := c.find(productID)
	if item == nil {
		return Notice{Kind: NoticeMissing, Message: "item not in cart"}
	}

	switch direction {
	case QuantityDec:
		if item.Quantity > 1 {
			item.Quantity--
		}
		return Notice{Kind: NoticeDecreased, Message: item.Name + " quantity updated"}
	default:
		identity := stockIdentity(item.SKU, item.ProductID)
		if c.quantityFor(identity) >= stockCap(item.StockQuantity) {
			return Notice{Kind: NoticeStockLimit, Message: "stock limit reached for " + item.Name}
		}
		item.Quantity++
		return Notice{Kind: NoticeIncreased, Message: item.Name + " quantity updated"}
	}
}

// Clear 清空购物车（订单确认后调用）
func (c *Cart) Clear() {
	c.Items = nil
}

// TotalPrice 合计：Σ 数量 × 宽松解析的单价，解析失败按 0 计
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		price := utils.ParsePrice(c.Items[i].Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity))))
	}
	return total
}

// ItemCount 商品件数合计
func (c *Cart) ItemCount() int {
	count := 0
	for i := range c.Items {
		count += c.Items[i].Quantity
	}
	return count
}
