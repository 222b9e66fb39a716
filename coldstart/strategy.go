package coldstart

// Strategy 是冷启动级联信号的闭集枚举。
// 级联按声明顺序严格评估，命中第一个可用信号即停。
// 新算法（如矩阵分解类）以新增枚举值的方式接入，不做字符串匹配。
type Strategy int

const (
	// StrategyDemographicKNN 人群近邻：按上下文属性找相似用户投票
	StrategyDemographicKNN Strategy = iota
	// StrategyContextAware 上下文启发：设备/地域规则
	StrategyContextAware
	// StrategyClusterBased 聚类先验：最高频簇的聚合统计
	StrategyClusterBased
	// StrategyDefault 硬兜底：固定热度品类
	StrategyDefault
)

func (s Strategy) String() string {
	switch s {
	case StrategyDemographicKNN:
		return "demographic_knn"
	case StrategyContextAware:
		return "context_aware"
	case StrategyClusterBased:
		return "cluster_based"
	case StrategyDefault:
		return "popularity_based"
	default:
		return "unknown"
	}
}
