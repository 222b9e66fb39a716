package coldstart

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/persokit/cluster"
	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/holiday"
	"github.com/rushteam/persokit/segment"
)

var fixedNow = time.Date(2026, 6, 3, 10, 0, 0, 0, time.UTC) // 周三上午

func demoProfiles() []*core.UserProfile {
	return []*core.UserProfile{
		{
			UserID: "u1", Age: 25, Gender: "F", Region: "west",
			PrimaryDevice: "desktop", PrimaryCategory: "electronics",
			TopCategories: []string{"electronics", "books"},
			LastActive:    fixedNow, TotalSessions: 10,
			AvgSessionDuration: 100, Transactions: 2, TotalSpent: 200,
		},
		{
			UserID: "u2", Age: 26, Gender: "F", Region: "west",
			PrimaryDevice: "desktop", PrimaryCategory: "electronics",
			TopCategories: []string{"electronics"},
			LastActive:    fixedNow, TotalSessions: 8,
			AvgSessionDuration: 90, Transactions: 1, TotalSpent: 50,
		},
		{
			UserID: "u3", Age: 60, Gender: "M", Region: "east",
			PrimaryDevice: "tablet", PrimaryCategory: "books",
			LastActive: fixedNow, TotalSessions: 2,
		},
	}
}

func smallCatalog() []core.Product {
	return []core.Product{
		{ID: "e1", Name: "Laptop", Category: "electronics", Popularity: 5, Purchases: 20, Views: 100, Rating: 4.0},
		{ID: "e2", Name: "Phone", Category: "electronics", Popularity: 9, Purchases: 50, Views: 300, Rating: 4.5},
		{ID: "c1", Name: "Jacket", Category: "clothing", Popularity: 7, Purchases: 30, Views: 200, Rating: 4.2},
	}
}

func TestRecommend_HardDefault(t *testing.T) {
	// 空策略无任何信号：必须命中硬兜底且不失败
	p := &Policy{Clock: core.FixedClock{T: fixedNow}}
	rec := p.Recommend(nil, nil, 0)
	if rec == nil {
		t.Fatal("级联不应返回 nil")
	}
	if rec.Strategy != StrategyDefault || rec.StrategyName != "popularity_based" {
		t.Errorf("期望硬兜底策略，实际 %s", rec.StrategyName)
	}
	if rec.Confidence != 0.0 {
		t.Errorf("硬兜底置信度期望 0.0，实际 %v", rec.Confidence)
	}
	if rec.Segment != "new_visitor" {
		t.Errorf("期望分群 new_visitor，实际 %s", rec.Segment)
	}
	if len(rec.TopCategories) != 3 || rec.TopCategories[0].Name != "electronics" {
		t.Errorf("期望固定品类权重表，实际 %v", rec.TopCategories)
	}
}

func TestRecommend_MobileContext(t *testing.T) {
	p := &Policy{Catalog: smallCatalog(), Clock: core.FixedClock{T: fixedNow}}
	rec := p.Recommend(&core.RecommendContext{DeviceType: "mobile"}, nil, 5)
	if rec.Strategy != StrategyContextAware {
		t.Fatalf("期望 context_aware，实际 %s", rec.StrategyName)
	}
	if rec.Confidence != 0.7 || rec.Segment != "mobile_visitor" {
		t.Errorf("移动端期望 (0.7, mobile_visitor)，实际 (%v, %s)", rec.Confidence, rec.Segment)
	}
	if rec.TopCategories[0].Name != "mobile_accessories" {
		t.Errorf("移动端首选品类期望 mobile_accessories，实际 %v", rec.TopCategories)
	}
}

func TestRecommend_RegionContext(t *testing.T) {
	p := &Policy{Catalog: smallCatalog(), Clock: core.FixedClock{T: fixedNow}}
	rec := p.Recommend(&core.RecommendContext{Region: "west", DeviceType: "desktop"}, nil, 5)
	if rec.Strategy != StrategyContextAware {
		t.Fatalf("期望 context_aware，实际 %s", rec.StrategyName)
	}
	if rec.Confidence != 0.6 || rec.Segment != "local_visitor" {
		t.Errorf("地域期望 (0.6, local_visitor)，实际 (%v, %s)", rec.Confidence, rec.Segment)
	}
}

func TestRecommend_ClusterSignal(t *testing.T) {
	model, err := cluster.Fit([][]float64{{1}, {1.1}, {5}}, 2)
	if err != nil {
		t.Fatalf("聚类失败: %v", err)
	}
	stats := cluster.ComputeStats(model, []map[string]float64{
		{"total_sessions": 1}, {"total_sessions": 2}, {"total_sessions": 10},
	}, []string{"total_sessions"})

	p := &Policy{
		Catalog:      smallCatalog(),
		Clusters:     model,
		ClusterStats: stats,
		Clock:        core.FixedClock{T: fixedNow},
	}
	// 无上下文：跳过人群近邻与上下文信号，命中聚类先验
	rec := p.Recommend(nil, nil, 5)
	if rec.Strategy != StrategyClusterBased {
		t.Fatalf("期望 cluster_based，实际 %s", rec.StrategyName)
	}
	if rec.Confidence != 0.7 {
		t.Errorf("聚类信号置信度期望 0.7，实际 %v", rec.Confidence)
	}
	if rec.ClusterStats == nil || rec.ClusterStats["size"] == 0 {
		t.Errorf("期望附带簇统计，实际 %v", rec.ClusterStats)
	}
}

func TestRecommend_DemographicKNN(t *testing.T) {
	profiles := demoProfiles()
	demo, err := BuildDemoModel(profiles, nil)
	if err != nil {
		t.Fatalf("人群模型训练失败: %v", err)
	}

	byID := map[string]*core.UserProfile{}
	for _, p := range profiles {
		byID[p.UserID] = p
	}
	p := &Policy{
		Catalog:  smallCatalog(),
		Profiles: byID,
		Segments: map[string]segment.Score{
			"u1": {Segment: segment.SegmentChampions},
			"u2": {Segment: segment.SegmentChampions},
			"u3": {Segment: segment.SegmentAtRisk},
		},
		Demo:  demo,
		Clock: core.FixedClock{T: fixedNow},
		K:     2,
	}

	rctx := &core.RecommendContext{Age: 24, Gender: "F", Region: "west", DeviceType: "desktop"}
	rec := p.Recommend(rctx, nil, 5)
	if rec.Strategy != StrategyDemographicKNN {
		t.Fatalf("期望 demographic_knn，实际 %s（%s）", rec.StrategyName, rec.Message)
	}
	if rec.SimilarUsers != 2 {
		t.Errorf("期望 2 个近邻，实际 %d", rec.SimilarUsers)
	}
	// 近邻带 RFM 分群标签 → 置信 0.8，分群取众数
	if rec.Confidence != 0.8 || rec.Segment != segment.SegmentChampions {
		t.Errorf("期望 (0.8, %s)，实际 (%v, %s)", segment.SegmentChampions, rec.Confidence, rec.Segment)
	}
	if len(rec.TopCategories) == 0 || rec.TopCategories[0].Name != "electronics" {
		t.Errorf("近邻投票首选品类期望 electronics，实际 %v", rec.TopCategories)
	}
	if rec.AvgMetrics == nil || rec.AvgMetrics.TotalSessions != 9 {
		t.Errorf("近邻均值 sessions 期望 9，实际 %+v", rec.AvgMetrics)
	}
	if len(rec.RecommendedProducts) == 0 {
		t.Error("期望按品类权重带出商品")
	}
}

func TestProductsForCategories(t *testing.T) {
	p := &Policy{Catalog: smallCatalog()}

	got := p.ProductsForCategories([]CategoryWeight{{Name: "electronics", Weight: 1}}, 2)
	if len(got) != 2 || got[0].ID != "e2" || got[1].ID != "e1" {
		t.Errorf("品类内按热度降序，期望 [e2 e1]，实际 %v", ids(got))
	}

	// 品类无命中时回补全目录热度榜
	got = p.ProductsForCategories([]CategoryWeight{{Name: "toys", Weight: 1}}, 2)
	if len(got) != 2 || got[0].ID != "e2" || got[1].ID != "c1" {
		t.Errorf("回补期望 [e2 c1]，实际 %v", ids(got))
	}
}

func TestFallbackLayout(t *testing.T) {
	catalog := append(smallCatalog(),
		core.Product{ID: "m1", Name: "Coffee Maker", Category: "home", TimeSlot: "morning", Purchases: 40, Views: 80, Rating: 4.1},
		core.Product{ID: "m2", Name: "Toaster", Category: "home", TimeSlot: "morning", Purchases: 35, Views: 60, Rating: 3.9},
	)
	p := &Policy{Catalog: catalog, Clock: core.FixedClock{T: fixedNow}}

	layout := p.FallbackLayout(context.Background(), &core.RecommendContext{Region: "west"})
	if layout.Personalized {
		t.Error("回退布局不应标记 personalized")
	}
	if len(layout.HeroProducts) == 0 || len(layout.HeroProducts) > 3 {
		t.Errorf("主推位期望 1-3 个时段商品，实际 %d", len(layout.HeroProducts))
	}
	if layout.HeroProducts[0].ID != "m1" {
		t.Errorf("时段 Top 期望 m1 居首，实际 %s", layout.HeroProducts[0].ID)
	}
	if layout.Carousels == nil || len(layout.Carousels.Trending) == 0 {
		t.Fatal("趋势轮播不应为空")
	}
	if layout.Carousels.Trending[0].ID != "e2" {
		t.Errorf("趋势榜期望 e2 居首，实际 %s", layout.Carousels.Trending[0].ID)
	}
	if len(layout.Featured) == 0 || len(layout.Featured) > 3 {
		t.Errorf("精选品类期望 1-3 个，实际 %d", len(layout.Featured))
	}
	// 周三上午：CTA 为 morning 对，优先级升序
	if len(layout.CTAModules) != 2 || layout.CTAModules[0].Priority != 1 {
		t.Errorf("工作日上午期望 2 个 CTA 且首位优先级 1，实际 %+v", layout.CTAModules)
	}
}

func TestCTAModules_HolidayFirst(t *testing.T) {
	christmas := time.Date(2026, 12, 25, 18, 0, 0, 0, time.UTC) // 周五晚
	p := &Policy{Calendar: holiday.NewUS(), Clock: core.FixedClock{T: christmas}}

	ctas := p.CTAModules(christmas)
	if len(ctas) != 3 {
		t.Fatalf("节日晚间期望 3 个 CTA，实际 %d", len(ctas))
	}
	if ctas[0].Priority != 0 || ctas[0].Type != "holiday" {
		t.Errorf("节日 CTA 应以优先级 0 居首，实际 %+v", ctas[0])
	}
	if ctas[0].Text != "Christmas Specials" {
		t.Errorf("节日 CTA 文案期望 Christmas Specials，实际 %q", ctas[0].Text)
	}
}

func TestSeasonalTop(t *testing.T) {
	christmas := time.Date(2026, 12, 25, 10, 0, 0, 0, time.UTC)
	catalog := append(smallCatalog(),
		core.Product{ID: "x1", Name: "Christmas Sweater", Category: "clothing", Purchases: 15},
	)
	p := &Policy{Catalog: catalog, Calendar: holiday.NewUS()}

	got := p.SeasonalTop(christmas)
	if len(got) != 1 || got[0].ID != "x1" {
		t.Errorf("圣诞应景商品期望 [x1]，实际 %v", ids(got))
	}
	if got := p.SeasonalTop(fixedNow); len(got) != 0 {
		t.Errorf("非节日期望空应景内容，实际 %v", ids(got))
	}
}

func TestEmergencyLayout(t *testing.T) {
	p := &Policy{Catalog: smallCatalog(), Clock: core.FixedClock{T: fixedNow}}
	layout := p.EmergencyLayout()
	if !layout.IsFallback {
		t.Error("应急布局必须标记 is_fallback")
	}
	if len(layout.CTAModules) != 1 || layout.CTAModules[0].Text != "Shop Now" {
		t.Errorf("应急布局期望单个 Shop Now CTA，实际 %+v", layout.CTAModules)
	}
	if layout.Carousels == nil || len(layout.Carousels.Trending) == 0 {
		t.Error("应急布局至少带趋势轮播")
	}
}

func ids(products []core.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
