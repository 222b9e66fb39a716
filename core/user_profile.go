package core

import "time"

// UserProfile 是用户画像的核心抽象。
//
// 它由外部 ETL（会话切分 + 聚合）产出，对核心引擎只读：
// 生命周期为一次请求或一个重训周期。
//
// 设计要点：
//  维度          作用
//  行为聚合      协同过滤特征 / RFM 打分
//  人群属性      冷启动 / 人群分桶品类热度
//  行为标记      漏斗阶段（发现/考虑/购买）判定
type UserProfile struct {
	UserID string `json:"user_id" yaml:"user_id"`

	// 行为聚合（协同过滤特征来源，字段顺序见 feature.BehaviorFields）
	TotalSessions          int     `json:"total_sessions" yaml:"total_sessions"`
	TotalDurationSeconds   float64 `json:"total_duration_seconds" yaml:"total_duration_seconds"`
	AvgSessionDuration     float64 `json:"avg_session_duration" yaml:"avg_session_duration"`
	TotalPageViews         int     `json:"total_page_views" yaml:"total_page_views"`
	TotalProductViews      int     `json:"total_product_views" yaml:"total_product_views"`
	TotalAddToCart         int     `json:"total_add_to_cart" yaml:"total_add_to_cart"`
	TotalPurchases         int     `json:"total_purchases" yaml:"total_purchases"`
	ConversionRate         float64 `json:"conversion_rate" yaml:"conversion_rate"`
	UniqueProductsViewed   int     `json:"unique_products_viewed" yaml:"unique_products_viewed"`
	UniqueCategoriesViewed int     `json:"unique_categories_viewed" yaml:"unique_categories_viewed"`

	// 交易聚合（RFM 的 F/M 来源；可能缺失）
	Transactions int     `json:"transactions,omitempty" yaml:"transactions,omitempty"`
	TotalSpent   float64 `json:"total_spent,omitempty" yaml:"total_spent,omitempty"`

	// LastActive 是最近一次活动时间（RFM 的 R 来源）
	LastActive time.Time `json:"last_active,omitempty" yaml:"last_active,omitempty"`

	// 偏好
	PrimaryDevice   string   `json:"primary_device,omitempty" yaml:"primary_device,omitempty"`
	PrimaryCategory string   `json:"primary_category,omitempty" yaml:"primary_category,omitempty"`
	TopCategories   []string `json:"top_categories,omitempty" yaml:"top_categories,omitempty"`
	ProductsViewed  []string `json:"products_viewed,omitempty" yaml:"products_viewed,omitempty"`

	// CommonSessionType 是占比最高的会话类型
	// （purchase / cart_abandoned / cart_added / browsing / other）
	CommonSessionType string `json:"common_session_type,omitempty" yaml:"common_session_type,omitempty"`

	// 人群属性（可选）
	Age      int    `json:"age,omitempty" yaml:"age,omitempty"`
	AgeGroup string `json:"age_group,omitempty" yaml:"age_group,omitempty"`
	Gender   string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`

	// 行为标记（漏斗阶段判定）
	NewUser       bool `json:"new_user,omitempty" yaml:"new_user,omitempty"`
	CartAbandoned bool `json:"cart_abandoned,omitempty" yaml:"cart_abandoned,omitempty"`
}

// NewUserProfile 创建一个空画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{UserID: userID}
}

// HasHistory 判断画像是否携带足够走协同过滤的历史行为。
func (u *UserProfile) HasHistory() bool {
	return u != nil && !u.NewUser &&
		(u.TotalSessions > 0 || len(u.ProductsViewed) > 0)
}

// AsMap 导出为 map 形式，供规则引擎（offer 资格表达式）与动态属性消费。
func (u *UserProfile) AsMap() map[string]any {
	if u == nil {
		return map[string]any{}
	}
	return map[string]any{
		"user_id":                  u.UserID,
		"total_sessions":           u.TotalSessions,
		"total_duration_seconds":   u.TotalDurationSeconds,
		"avg_session_duration":     u.AvgSessionDuration,
		"total_page_views":         u.TotalPageViews,
		"total_product_views":      u.TotalProductViews,
		"total_add_to_cart":        u.TotalAddToCart,
		"total_purchases":          u.TotalPurchases,
		"conversion_rate":          u.ConversionRate,
		"unique_products_viewed":   u.UniqueProductsViewed,
		"unique_categories_viewed": u.UniqueCategoriesViewed,
		"transactions":             u.Transactions,
		"total_spent":              u.TotalSpent,
		"primary_device":           u.PrimaryDevice,
		"primary_category":         u.PrimaryCategory,
		"common_session_type":      u.CommonSessionType,
		"age":                      u.Age,
		"age_group":                u.AgeGroup,
		"gender":                   u.Gender,
		"region":                   u.Region,
		"new_user":                 u.NewUser,
		"cart_abandoned":           u.CartAbandoned,
	}
}
