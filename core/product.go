package core

// Product 是商品目录的不可变快照记录：每个服务周期由外部目录加载器整体替换。
// 除基础属性外，还携带上下文热度（早晚时段）、设备/地域亲和度等冷启动信号。
type Product struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Category string  `json:"category" yaml:"category"`
	Price    float64 `json:"price" yaml:"price"`
	Image    string  `json:"image,omitempty" yaml:"image,omitempty"`

	// 互动指标（目录快照中的聚合值）
	Views     float64 `json:"views" yaml:"views"`
	Purchases float64 `json:"purchases" yaml:"purchases"`
	Rating    float64 `json:"rating" yaml:"rating"`

	// Popularity 是综合热度分，用于兜底排序
	Popularity float64 `json:"popularity" yaml:"popularity"`

	// 上下文热度：按时段的热度分
	PopularityMorning float64 `json:"popularity_morning" yaml:"popularity_morning"`
	PopularityEvening float64 `json:"popularity_evening" yaml:"popularity_evening"`

	// TimeSlot 是商品的高热时段（morning/afternoon/evening/night），来自目录 ETL
	TimeSlot string `json:"time_slot,omitempty" yaml:"time_slot,omitempty"`

	// IsWeekendHot 标记周末高热商品，周末加权时参与过滤
	IsWeekendHot bool `json:"is_weekend_hot,omitempty" yaml:"is_weekend_hot,omitempty"`

	// 设备/地域亲和度
	DeviceType       string `json:"device_type,omitempty" yaml:"device_type,omitempty"`
	Region           string `json:"region,omitempty" yaml:"region,omitempty"`
	IsMobileFriendly bool   `json:"is_mobile_friendly" yaml:"is_mobile_friendly"`

	// 人群属性（用于年龄段 × 性别的品类热度分桶）
	AgeGroup string `json:"age_group,omitempty" yaml:"age_group,omitempty"`
	Gender   string `json:"gender,omitempty" yaml:"gender,omitempty"`
}

// CategoryStat 是品类级聚合（精选品类模块使用）。
type CategoryStat struct {
	Name      string  `json:"name"`
	Purchases float64 `json:"purchases"`
	Views     float64 `json:"views"`
	Rating    float64 `json:"rating"`
}
