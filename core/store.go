package core

import "context"

// ProfileStore 是用户画像存储接口（外部协作者，注入给引擎）。
// 引擎本身不做外部 I/O：画像在 Train 时整体加载。
type ProfileStore interface {
	// GetProfile 按 ID 获取画像；不存在返回 NOT_FOUND
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)

	// ListProfiles 获取全量画像（重训时使用）
	ListProfiles(ctx context.Context) ([]*UserProfile, error)
}

// CatalogStore 是商品目录存储接口（外部协作者，注入给引擎）。
type CatalogStore interface {
	// GetProduct 按 ID 获取商品；不存在返回 NOT_FOUND
	GetProduct(ctx context.Context, productID string) (*Product, error)

	// ListProducts 获取目录快照（重训时使用）
	ListProducts(ctx context.Context) ([]Product, error)
}
