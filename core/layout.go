package core

// RecommendationType 标识推荐结果的来源路径。
type RecommendationType string

const (
	RecommendationPersonalized RecommendationType = "personalized"
	RecommendationColdStart    RecommendationType = "cold_start"
)

// RecommendationResponse 是 GetRecommendations 的统一响应。
// 不变量：RecommendedProducts 长度 ≤ 请求的 n，按 ID 去重，且不含调用方排除的 ID。
type RecommendationResponse struct {
	Type                RecommendationType `json:"recommendation_type"`
	UserID              string             `json:"user_id,omitempty"`
	RecommendedProducts []Product          `json:"recommended_products"`
	Explanation         string             `json:"explanation"`
	ContextUsed         map[string]any     `json:"context_used,omitempty"`
}

// HeroBanner 是首页主横幅（按漏斗阶段选择的静态模板）。
type HeroBanner struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Image    string `json:"image"`
}

// ProductModule 是一个品类商品模块。
type ProductModule struct {
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Products []Product `json:"products"`
}

// CTAModule 是行为召唤模块；Priority 越小越靠前（0 为节日最高优先级）。
type CTAModule struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Action   string `json:"action"`
	Priority int    `json:"priority"`
}

// Offer 是个性化优惠（欢迎折扣 / 购物车挽回等）。
type Offer struct {
	Type        string `json:"type"`
	Discount    string `json:"discount"`
	Description string `json:"description"`
}

// DynamicContent 是已知用户的动态内容块。
type DynamicContent struct {
	RecentViews        []Product `json:"recent_views"`
	PopularNow         []Product `json:"popular_now"`
	PersonalizedOffers []Offer   `json:"personalized_offers"`
}

// Carousels 是冷启动回退布局的商品轮播组。
type Carousels struct {
	ForYou         []Product `json:"for_you,omitempty"`
	Trending       []Product `json:"trending"`
	LocalFavorites []Product `json:"local_favorites,omitempty"`
}

// Layout 是最终落地页布局：每次请求重建，从不持久化。
// 个性化路径填充 HeroBanner/ProductModules/DynamicContent；
// 冷启动回退路径填充 HeroProducts/Carousels/SeasonalContent。
type Layout struct {
	HeroBanner     *HeroBanner     `json:"hero_banner,omitempty"`
	HeroProducts   []Product       `json:"hero_banners,omitempty"`
	ProductModules []ProductModule `json:"product_modules,omitempty"`
	Carousels      *Carousels      `json:"product_carousels,omitempty"`
	Featured       []CategoryStat  `json:"featured_categories,omitempty"`
	CTAModules     []CTAModule     `json:"cta_modules"`
	Seasonal       []Product       `json:"seasonal_content,omitempty"`
	Dynamic        *DynamicContent `json:"dynamic_content,omitempty"`

	Personalized bool `json:"personalized"`
	IsFallback   bool `json:"is_fallback,omitempty"`
}
