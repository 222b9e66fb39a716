package core

// 时段常量（time_of_day 的闭集取值）。
const (
	TimeMorning   = "morning"
	TimeAfternoon = "afternoon"
	TimeEvening   = "evening"
	TimeNight     = "night"
)

// TimeOfDayFromHour 将小时映射到时段：
// [5,12) morning / [12,17) afternoon / [17,22) evening / 其余 night。
func TimeOfDayFromHour(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 17:
		return TimeAfternoon
	case hour >= 17 && hour < 22:
		return TimeEvening
	default:
		return TimeNight
	}
}

// RecommendContext 承载请求级的访客上下文，贯穿引擎与冷启动策略透传。
// 所有字段均可缺省：缺什么信号就降级什么信号，不应因缺失而失败。
type RecommendContext struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	DeviceType string `json:"device_type,omitempty"` // mobile / desktop / tablet
	TimeOfDay  string `json:"time_of_day,omitempty"` // morning / afternoon / evening / night；空则由时钟推导
	Region     string `json:"region,omitempty"`
	Referrer   string `json:"referrer,omitempty"`

	// IsNewUser 显式标记新访客；置位时整条请求直接走冷启动
	IsNewUser bool `json:"is_new_user,omitempty"`

	// 冷启动的人群属性提示（可选，缺失按 missing 处理）
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`

	// PurchaseCompleted 标记本次上下文中已完成的购买（漏斗 purchase 阶段信号）
	PurchaseCompleted bool `json:"purchase_completed,omitempty"`

	// Params 请求级扩展参数（动态属性，按需守卫式解析）
	Params map[string]any `json:"params,omitempty"`
}

// HasDemographics 判断上下文是否携带任一可用于人群 KNN 的属性。
func (rctx *RecommendContext) HasDemographics() bool {
	if rctx == nil {
		return false
	}
	return rctx.Age > 0 || rctx.Gender != "" || rctx.Region != "" || rctx.DeviceType != ""
}

// AsMap 导出为 map 形式，供规则引擎与响应回显消费。
func (rctx *RecommendContext) AsMap() map[string]any {
	if rctx == nil {
		return map[string]any{}
	}
	m := map[string]any{
		"user_id":            rctx.UserID,
		"session_id":         rctx.SessionID,
		"device_type":        rctx.DeviceType,
		"time_of_day":        rctx.TimeOfDay,
		"region":             rctx.Region,
		"referrer":           rctx.Referrer,
		"is_new_user":        rctx.IsNewUser,
		"purchase_completed": rctx.PurchaseCompleted,
	}
	for k, v := range rctx.Params {
		m[k] = v
	}
	return m
}
