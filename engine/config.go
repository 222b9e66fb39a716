package engine

import (
	"os"

	"gopkg.in/yaml.v3"
)

// OfferRule 是一条个性化优惠规则：When 为 CEL 资格表达式，
// 变量 user / ctx 分别是画像与请求上下文（见 pkg/dsl）。
type OfferRule struct {
	Type        string `yaml:"type" json:"type"`
	Discount    string `yaml:"discount" json:"discount"`
	Description string `yaml:"description" json:"description"`
	When        string `yaml:"when" json:"when"`
}

// DefaultOffers 是默认优惠规则：新客欢迎折扣与购物车挽回。
func DefaultOffers() []OfferRule {
	return []OfferRule{
		{Type: "welcome", Discount: "10%", Description: "Welcome Discount", When: "user.new_user"},
		{Type: "cart", Discount: "15%", Description: "Cart Recovery Offer", When: "user.cart_abandoned"},
	}
}

// Config 是引擎配置；零值经 normalize 后即可用。
type Config struct {
	// Neighbors 是协同过滤/人群近邻的近邻数
	Neighbors int `yaml:"neighbors" json:"neighbors"`

	// Clusters 是行为聚类的簇数
	Clusters int `yaml:"clusters" json:"clusters"`

	// DefaultN 是未指定条数时的默认推荐条数
	DefaultN int `yaml:"default_n" json:"default_n"`

	// LayoutTimeoutMS 是落地页组装的超时预算（毫秒），超时降级应急布局
	LayoutTimeoutMS int `yaml:"layout_timeout_ms" json:"layout_timeout_ms"`

	// Offers 是个性化优惠规则表；空表使用 DefaultOffers
	Offers []OfferRule `yaml:"offers" json:"offers"`
}

func (c *Config) normalize() {
	if c.Neighbors <= 0 {
		c.Neighbors = 5
	}
	if c.Clusters <= 0 {
		c.Clusters = 5
	}
	if c.DefaultN <= 0 {
		c.DefaultN = 5
	}
	if c.LayoutTimeoutMS <= 0 {
		c.LayoutTimeoutMS = 800
	}
	if len(c.Offers) == 0 {
		c.Offers = DefaultOffers()
	}
}

// LoadConfig 从 YAML 文件加载配置。
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
