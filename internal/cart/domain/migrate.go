package domain

// migration 把购物车从 version 升级到 version+1
type migration func(cart *Cart)

// migrations 按起始版本索引的迁移链。
// 某个版本没有迁移函数时视为无升级路径，只能丢弃旧数据。
var migrations = map[int]migration{
	// v1 -> v2：行上未携带 SKU 时无法做全局库存归并，补空值即可，
	// 后续归并逻辑会退回按商品 ID 计数
	1: func(cart *Cart) {
		for i := range cart.Items {
			if cart.Items[i].StockQuantity < 0 {
				cart.Items[i].StockQuantity = 0
			}
		}
	},
}

// MigrateSchema 把已加载的购物车迁移到当前版本。
// 返回 false 表示某一步没有迁移路径，调用方应丢弃内容而不是带着旧结构继续。
func MigrateSchema(cart *Cart) bool {
	if cart.SchemaVersion == 0 {
		cart.SchemaVersion = CurrentSchemaVersion
		return true
	}
	for cart.SchemaVersion < CurrentSchemaVersion {
		step, ok := migrations[cart.SchemaVersion]
		if !ok {
			cart.Items = nil
			cart.SchemaVersion = CurrentSchemaVersion
			return false
		}
		step(cart)
		cart.SchemaVersion++
	}
	return true
}
