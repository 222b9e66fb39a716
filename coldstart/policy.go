// Package coldstart 实现零历史访客的分层回退级联。
//
// 级联固定四级，按序评估，命中即停：
//  1. 人群近邻（demographic_knn）：按上下文属性找相似用户投票
//  2. 上下文启发（context_aware）：设备/地域规则
//  3. 聚类先验（cluster_based）：最高频簇的聚合统计
//  4. 硬兜底（popularity_based）：固定热度品类，永不失败
//
// 任一信号失败只记日志并降级到下一级，绝不把错误抛给调用方。
package coldstart

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rushteam/persokit/cluster"
	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/feature"
	"github.com/rushteam/persokit/segment"
)

// CategoryWeight 是带权重的推荐品类（权重归一到 0-1，按权重降序）。
type CategoryWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// NeighborMetrics 是近邻用户的行为均值（解释用）。
type NeighborMetrics struct {
	TotalSessions       float64 `json:"total_sessions"`
	AvgSessionDuration  float64 `json:"avg_session_duration"`
	Transactions        float64 `json:"transactions"`
	AvgTransactionValue float64 `json:"avg_transaction_value"`
}

// Recommendation 是一次冷启动级联的产物。
// Confidence 只标识信号来源的可信档位，不做数值运算：
// 人群近邻 0.8/0.6，上下文 0.7/0.6，聚类 0.7，硬兜底 0.0。
type Recommendation struct {
	Strategy            Strategy           `json:"-"`
	StrategyName        string             `json:"strategy"`
	TopCategories       []CategoryWeight   `json:"top_categories"`
	RecommendedProducts []core.Product     `json:"recommended_products"`
	Segment             string             `json:"segment"`
	Confidence          float64            `json:"confidence"`
	SimilarUsers        int                `json:"similar_users,omitempty"`
	AvgMetrics          *NeighborMetrics   `json:"avg_metrics,omitempty"`
	ClusterStats        map[string]float64 `json:"cluster_stats,omitempty"`
	Message             string             `json:"message"`
}

// Policy 是冷启动策略：持有快照期内不可变的目录、画像与模型。
// 所有字段都可缺省，缺什么信号就跳过什么信号。
type Policy struct {
	Catalog  []core.Product
	Profiles map[string]*core.UserProfile

	// Segments 是训练期算好的 RFM 打分（近邻投票分群用）
	Segments map[string]segment.Score

	// Demo 人群近邻模型；未训练时为 nil
	Demo *DemoModel

	// Clusters / ClusterStats 聚类先验；未训练时为 nil / 空
	Clusters     *cluster.Model
	ClusterStats []cluster.Stats

	Clock    core.Clock
	Calendar core.HolidayCalendar
	Logger   *slog.Logger

	// K 是近邻数；<=0 时默认 5
	K int
}

// Recommend 执行级联并返回推荐。永不返回错误：
// 最差情况命中硬兜底（confidence 0.0）。n<=0 时默认 5。
func (p *Policy) Recommend(rctx *core.RecommendContext, overrides map[string]float64, n int) *Recommendation {
	if n <= 0 {
		n = 5
	}

	var rec *Recommendation
	if r, err := p.demographicSignal(rctx, overrides); err != nil {
		p.warn("demographic_knn", err)
	} else if r != nil {
		rec = r
	}
	if rec == nil {
		rec = p.contextSignal(rctx)
	}
	if rec == nil {
		rec = p.clusterSignal()
	}
	if rec == nil {
		rec = p.defaultSignal()
	}

	rec.StrategyName = rec.Strategy.String()
	rec.RecommendedProducts = p.ProductsForCategories(rec.TopCategories, n)
	return rec
}

// demographicSignal 人群近邻：上下文属性向量化后查近邻，
// 对近邻的偏好品类与分群投票。上下文无任何人群属性时不适用。
func (p *Policy) demographicSignal(rctx *core.RecommendContext, overrides map[string]float64) (*Recommendation, error) {
	if p.Demo == nil || p.Demo.Index == nil || !p.Demo.Index.Fitted() {
		return nil, nil
	}
	if !rctx.HasDemographics() && len(overrides) == 0 {
		return nil, nil
	}

	record := feature.DemoFromContext(rctx, p.now(), p.Calendar)
	vec, err := p.Demo.QueryVector(record, overrides)
	if err != nil {
		return nil, err
	}
	neighbors, err := p.Demo.Index.Query(vec, p.k())
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	// 品类投票：近邻偏好品类按出现次数计权，同票按首见顺序保序
	counts := map[string]int{}
	order := make([]string, 0, 8)
	vote := func(cat string, weight int) {
		if cat == "" {
			return
		}
		if _, seen := counts[cat]; !seen {
			order = append(order, cat)
		}
		counts[cat] += weight
	}

	var metrics NeighborMetrics
	segCounts := map[string]int{}
	segOrder := make([]string, 0, 4)
	for _, nb := range neighbors {
		prof := p.Profiles[nb.ID]
		if prof == nil {
			continue
		}
		vote(prof.PrimaryCategory, 2)
		for _, cat := range prof.TopCategories {
			vote(cat, 1)
		}
		metrics.TotalSessions += float64(prof.TotalSessions)
		metrics.AvgSessionDuration += prof.AvgSessionDuration
		metrics.Transactions += float64(prof.Transactions)
		if prof.Transactions > 0 {
			metrics.AvgTransactionValue += prof.TotalSpent / float64(prof.Transactions)
		}
		if sc, ok := p.Segments[nb.ID]; ok && sc.Segment != "" {
			if _, seen := segCounts[sc.Segment]; !seen {
				segOrder = append(segOrder, sc.Segment)
			}
			segCounts[sc.Segment]++
		}
	}
	if len(order) == 0 {
		return nil, nil
	}

	nf := float64(len(neighbors))
	metrics.TotalSessions /= nf
	metrics.AvgSessionDuration /= nf
	metrics.Transactions /= nf
	metrics.AvgTransactionValue /= nf

	weights := rankedWeights(order, counts, 3)

	// 近邻带 RFM 分群标签时置信 0.8，否则 0.6
	seg := "similar_visitor"
	conf := 0.6
	if len(segOrder) > 0 {
		best := segOrder[0]
		for _, s := range segOrder[1:] {
			if segCounts[s] > segCounts[best] {
				best = s
			}
		}
		seg = best
		conf = 0.8
	}

	return &Recommendation{
		Strategy:      StrategyDemographicKNN,
		TopCategories: weights,
		Segment:       seg,
		Confidence:    conf,
		SimilarUsers:  len(neighbors),
		AvgMetrics:    &metrics,
		Message:       fmt.Sprintf("Based on %d similar user profiles", len(neighbors)),
	}, nil
}

// contextSignal 上下文启发：移动端优先，其次地域。两者皆缺时不适用。
func (p *Policy) contextSignal(rctx *core.RecommendContext) *Recommendation {
	if rctx == nil {
		return nil
	}
	if isMobile(rctx.DeviceType) {
		return &Recommendation{
			Strategy: StrategyContextAware,
			TopCategories: []CategoryWeight{
				{Name: "mobile_accessories", Weight: 1.0},
				{Name: "electronics", Weight: 0.9},
				{Name: "fashion", Weight: 0.7},
			},
			Segment:    "mobile_visitor",
			Confidence: 0.7,
			Message:    "Optimized for mobile browsing",
		}
	}
	if rctx.Region != "" {
		return &Recommendation{
			Strategy: StrategyContextAware,
			TopCategories: []CategoryWeight{
				{Name: "local_products", Weight: 1.0},
				{Name: "popular", Weight: 0.8},
				{Name: "trending", Weight: 0.6},
			},
			Segment:    "local_visitor",
			Confidence: 0.6,
			Message:    "Popular items in your area",
		}
	}
	return nil
}

// clusterSignal 聚类先验：最高频簇的聚合统计作为弱先验。
func (p *Policy) clusterSignal() *Recommendation {
	if p.Clusters == nil || len(p.ClusterStats) == 0 {
		return nil
	}
	c := p.Clusters.MostFrequent()
	if c < 0 || c >= len(p.ClusterStats) {
		return nil
	}
	stats := p.ClusterStats[c]
	means := make(map[string]float64, len(stats.Means)+1)
	for k, v := range stats.Means {
		means[k] = v
	}
	means["size"] = float64(stats.Size)

	return &Recommendation{
		Strategy: StrategyClusterBased,
		TopCategories: []CategoryWeight{
			{Name: "popular", Weight: 1.0},
			{Name: "trending", Weight: 0.8},
			{Name: "recommended", Weight: 0.7},
		},
		Segment:      fmt.Sprintf("cluster_%d", c),
		Confidence:   0.7,
		ClusterStats: means,
		Message:      "Based on most common user behavior patterns",
	}
}

// defaultSignal 硬兜底：固定品类权重，置信 0.0，永不失败。
func (p *Policy) defaultSignal() *Recommendation {
	return &Recommendation{
		Strategy: StrategyDefault,
		TopCategories: []CategoryWeight{
			{Name: "electronics", Weight: 1.0},
			{Name: "clothing", Weight: 0.8},
			{Name: "home", Weight: 0.6},
		},
		Segment:    "new_visitor",
		Confidence: 0.0,
		Message:    "Default recommendations based on popular items",
	}
}

// rankedWeights 把计票结果转成按票数降序的归一化权重表。
func rankedWeights(order []string, counts map[string]int, limit int) []CategoryWeight {
	ranked := make([]string, len(order))
	copy(ranked, order)
	// 插入排序保持首见顺序的稳定性
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && counts[ranked[j]] > counts[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	max := counts[ranked[0]]
	weights := make([]CategoryWeight, len(ranked))
	for i, cat := range ranked {
		weights[i] = CategoryWeight{Name: cat, Weight: float64(counts[cat]) / float64(max)}
	}
	return weights
}

func (p *Policy) now() time.Time {
	if p.Clock != nil {
		return p.Clock.Now()
	}
	return time.Now()
}

func (p *Policy) k() int {
	if p.K > 0 {
		return p.K
	}
	return 5
}

func (p *Policy) warn(signal string, err error) {
	if err == nil || p.Logger == nil {
		return
	}
	p.Logger.Warn("cold start signal degraded", "signal", signal, "err", err)
}

func isMobile(device string) bool {
	return device == "mobile" || device == "Mobile"
}
