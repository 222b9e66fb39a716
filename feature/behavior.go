package feature

import (
	"time"

	"github.com/rushteam/persokit/core"
)

// BehaviorFields 是协同过滤行为向量的固定字段顺序。
// 顺序即 schema：改动顺序等于换 schema，总体索引必须重建。
var BehaviorFields = []string{
	"total_sessions",
	"total_duration_seconds",
	"avg_session_duration",
	"total_page_views",
	"total_product_views",
	"total_add_to_cart",
	"total_purchases",
	"conversion_rate",
	"unique_products_viewed",
	"unique_categories_viewed",
}

// BehaviorFeatures 从画像提取行为特征字典。
func BehaviorFeatures(p *core.UserProfile) map[string]float64 {
	if p == nil {
		return map[string]float64{}
	}
	return map[string]float64{
		"total_sessions":           float64(p.TotalSessions),
		"total_duration_seconds":   p.TotalDurationSeconds,
		"avg_session_duration":     p.AvgSessionDuration,
		"total_page_views":         float64(p.TotalPageViews),
		"total_product_views":      float64(p.TotalProductViews),
		"total_add_to_cart":        float64(p.TotalAddToCart),
		"total_purchases":          float64(p.TotalPurchases),
		"conversion_rate":          p.ConversionRate,
		"unique_products_viewed":   float64(p.UniqueProductsViewed),
		"unique_categories_viewed": float64(p.UniqueCategoriesViewed),
	}
}

// ClusterFields 是聚类/冷启动行为特征的固定字段顺序（小而稠密）。
var ClusterFields = []string{
	"total_sessions",
	"avg_session_duration",
	"transactions",
	"avg_transaction_value",
}

// ClusterFeatures 从画像提取聚类特征字典。
func ClusterFeatures(p *core.UserProfile) map[string]float64 {
	if p == nil {
		return map[string]float64{}
	}
	avgValue := 0.0
	if p.Transactions > 0 {
		avgValue = p.TotalSpent / float64(p.Transactions)
	}
	return map[string]float64{
		"total_sessions":        float64(p.TotalSessions),
		"avg_session_duration":  p.AvgSessionDuration,
		"transactions":          float64(p.Transactions),
		"avg_transaction_value": avgValue,
	}
}

// DemoNumericFields 是人群向量的数值字段。
var DemoNumericFields = []string{"age", "hour_of_day", "day_of_week"}

// DemoCategoricalFields 是人群向量的类别字段（one-hot 展开）。
var DemoCategoricalFields = []string{"gender", "region", "device_type", "is_weekend", "is_holiday"}

// DemoRecord 是人群特征的中间形态：数值列 + 类别列。
type DemoRecord struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// DemoFromProfile 从画像提取人群特征；时间维度取画像的最近活动时间。
func DemoFromProfile(p *core.UserProfile, cal core.HolidayCalendar) DemoRecord {
	rec := DemoRecord{
		Numeric:     map[string]float64{},
		Categorical: map[string]string{},
	}
	if p == nil {
		return rec
	}
	if p.Age > 0 {
		rec.Numeric["age"] = float64(p.Age)
	}
	if !p.LastActive.IsZero() {
		rec.Numeric["hour_of_day"] = float64(p.LastActive.Hour())
		rec.Numeric["day_of_week"] = float64(int(p.LastActive.Weekday()))
		rec.Categorical["is_weekend"] = boolCategory(core.IsWeekend(p.LastActive))
		rec.Categorical["is_holiday"] = boolCategory(isHoliday(cal, p.LastActive))
	}
	rec.Categorical["gender"] = p.Gender
	rec.Categorical["region"] = p.Region
	rec.Categorical["device_type"] = p.PrimaryDevice
	return rec
}

// DemoFromContext 从请求上下文提取人群特征；时间维度取注入时钟的当前时间。
func DemoFromContext(rctx *core.RecommendContext, now time.Time, cal core.HolidayCalendar) DemoRecord {
	rec := DemoRecord{
		Numeric:     map[string]float64{},
		Categorical: map[string]string{},
	}
	if rctx != nil {
		if rctx.Age > 0 {
			rec.Numeric["age"] = float64(rctx.Age)
		}
		rec.Categorical["gender"] = rctx.Gender
		rec.Categorical["region"] = rctx.Region
		rec.Categorical["device_type"] = rctx.DeviceType
	}
	rec.Numeric["hour_of_day"] = float64(now.Hour())
	rec.Numeric["day_of_week"] = float64(int(now.Weekday()))
	rec.Categorical["is_weekend"] = boolCategory(core.IsWeekend(now))
	rec.Categorical["is_holiday"] = boolCategory(isHoliday(cal, now))
	return rec
}

// Flatten 将 DemoRecord 铺平为数值字典（类别列经 encoder 展开）。
func (r DemoRecord) Flatten(enc *OneHotEncoder) map[string]float64 {
	flat := make(map[string]float64, len(r.Numeric))
	for k, v := range r.Numeric {
		flat[k] = v
	}
	if enc != nil {
		for k, v := range enc.EncodeFeatures(r.Categorical) {
			flat[k] = v
		}
	}
	return flat
}

func boolCategory(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func isHoliday(cal core.HolidayCalendar, t time.Time) bool {
	if cal == nil {
		return false
	}
	_, ok := cal.HolidayName(t)
	return ok
}
