package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/rushteam/persokit/cluster"
	"github.com/rushteam/persokit/coldstart"
	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/feature"
	"github.com/rushteam/persokit/knn"
	"github.com/rushteam/persokit/segment"
)

// Snapshot 是一次训练的不可变产物：画像、目录、索引、分群、聚类与
// 冷启动策略整体打包。发布后只读，请求路径并发共享无锁。
// 单个子模型数据不足时留空（请求路径相应降级），不阻断整体训练。
type Snapshot struct {
	TrainedAt time.Time

	profiles   map[string]*core.UserProfile
	profileIDs []string
	catalog    []core.Product
	products   map[string]core.Product

	behaviorVec   *feature.Vectorizer
	behaviorIndex *knn.Index

	segments     map[string]segment.Score
	clusters     *cluster.Model
	clusterStats []cluster.Stats

	policy *coldstart.Policy

	// 热度排行（训练时算好，请求路径只切片）
	byPopularity []core.Product
	byPurchases  []core.Product
	byViews      []core.Product

	// "age_group|gender" → 该人群购买量领先的品类
	demoCategories map[string][]string
	// 商品数领先的品类（人群分桶无命中时的模块兜底）
	defaultCategories []string
}

// Size 返回快照中的画像数。
func (s *Snapshot) Size() int { return len(s.profileIDs) }

// newSnapshot 在全量画像与目录上训练一个快照。
func newSnapshot(
	now time.Time,
	profiles []*core.UserProfile,
	products []core.Product,
	cfg Config,
	clock core.Clock,
	calendar core.HolidayCalendar,
	logger *slog.Logger,
) (*Snapshot, error) {
	snap := &Snapshot{
		TrainedAt: now,
		profiles:  make(map[string]*core.UserProfile, len(profiles)),
		products:  make(map[string]core.Product, len(products)),
	}

	for _, p := range profiles {
		if p == nil || p.UserID == "" {
			continue
		}
		if _, ok := snap.profiles[p.UserID]; ok {
			continue
		}
		snap.profiles[p.UserID] = p
		snap.profileIDs = append(snap.profileIDs, p.UserID)
	}
	// 目录按 ID 去重：冷启动路径直接迭代 catalog 切片，
	// 去重必须在训练期一次做掉
	snap.catalog = make([]core.Product, 0, len(products))
	for _, prod := range products {
		if prod.ID == "" {
			continue
		}
		if _, ok := snap.products[prod.ID]; ok {
			continue
		}
		snap.products[prod.ID] = prod
		snap.catalog = append(snap.catalog, prod)
	}

	ordered := make([]*core.UserProfile, len(snap.profileIDs))
	for i, id := range snap.profileIDs {
		ordered[i] = snap.profiles[id]
	}

	// 协同过滤：行为向量 + cosine KNN
	if err := snap.fitBehavior(ordered, logger); err != nil {
		return nil, err
	}

	// RFM 分群
	inputs := make([]segment.Input, len(ordered))
	for i, p := range ordered {
		inputs[i] = segment.Input{
			UserID:     p.UserID,
			LastActive: p.LastActive,
			Frequency:  float64(p.Transactions),
			Monetary:   p.TotalSpent,
		}
	}
	snap.segments = segment.ScorePopulation(now, inputs)
	for _, p := range ordered {
		sc := snap.segments[p.UserID]
		sc.EngagementLevel = segment.EngagementLevelFor(p.TotalSessions)
		// 无交易历史时 RFM 不可信，换用主导会话类型的行为分群
		if p.Transactions == 0 {
			sc.Segment = segment.BehavioralSegmentFor(p)
		}
		snap.segments[p.UserID] = sc
	}

	// 行为聚类（冷启动第三级信号）
	if err := snap.fitClusters(ordered, cfg.Clusters, logger); err != nil {
		return nil, err
	}

	// 人群近邻模型（冷启动第一级信号）
	demo, err := coldstart.BuildDemoModel(ordered, calendar)
	if err != nil {
		if !core.IsInsufficientData(err) {
			return nil, err
		}
		degraded(logger, "demographic model", err)
		demo = nil
	}

	snap.rankCatalog()
	snap.indexCategories()

	snap.policy = &coldstart.Policy{
		Catalog:      snap.catalog,
		Profiles:     snap.profiles,
		Segments:     snap.segments,
		Demo:         demo,
		Clusters:     snap.clusters,
		ClusterStats: snap.clusterStats,
		Clock:        clock,
		Calendar:     calendar,
		Logger:       logger,
		K:            cfg.Neighbors,
	}
	return snap, nil
}

// fitBehavior 拟合行为向量化器并建 cosine 索引。
// 画像不足时留空索引（协同路径降级冷启动），其余错误上抛。
func (s *Snapshot) fitBehavior(ordered []*core.UserProfile, logger *slog.Logger) error {
	population := make([]map[string]float64, len(ordered))
	for i, p := range ordered {
		population[i] = feature.BehaviorFeatures(p)
	}
	vec := feature.NewVectorizer(feature.BehaviorFields, feature.ImputeZero)
	vectors, err := vec.FitTransform(population)
	if err != nil {
		return err
	}
	index := knn.NewIndex(knn.MetricCosine)
	index.SetSchemaVersion(vec.SchemaVersion())
	if err := index.Fit(s.profileIDs, vectors); err != nil {
		if !core.IsInsufficientData(err) {
			return err
		}
		degraded(logger, "behavior index", err)
		return nil
	}
	s.behaviorVec = vec
	s.behaviorIndex = index
	return nil
}

// fitClusters 在聚类特征上跑确定性 k-means，并留存每簇原始均值统计。
func (s *Snapshot) fitClusters(ordered []*core.UserProfile, k int, logger *slog.Logger) error {
	raw := make([]map[string]float64, len(ordered))
	for i, p := range ordered {
		raw[i] = feature.ClusterFeatures(p)
	}
	vec := feature.NewVectorizer(feature.ClusterFields, feature.ImputeZero)
	vectors, err := vec.FitTransform(raw)
	if err != nil {
		return err
	}
	model, err := cluster.Fit(vectors, k)
	if err != nil {
		if !core.IsInsufficientData(err) {
			return err
		}
		degraded(logger, "behavior clusters", err)
		return nil
	}
	s.clusters = model
	s.clusterStats = cluster.ComputeStats(model, raw, feature.ClusterFields)
	return nil
}

// rankCatalog 预排热度/购买/浏览三个榜单（平稳排序，可复现）。
func (s *Snapshot) rankCatalog() {
	s.byPopularity = append([]core.Product(nil), s.catalog...)
	sort.SliceStable(s.byPopularity, func(i, j int) bool {
		return s.byPopularity[i].Popularity > s.byPopularity[j].Popularity
	})
	s.byPurchases = append([]core.Product(nil), s.catalog...)
	sort.SliceStable(s.byPurchases, func(i, j int) bool {
		return s.byPurchases[i].Purchases > s.byPurchases[j].Purchases
	})
	s.byViews = append([]core.Product(nil), s.catalog...)
	sort.SliceStable(s.byViews, func(i, j int) bool {
		return s.byViews[i].Views > s.byViews[j].Views
	})
}

// indexCategories 预聚合人群分桶品类热度与默认品类表。
func (s *Snapshot) indexCategories() {
	type bucket struct {
		counts map[string]float64
		order  []string
	}
	buckets := map[string]*bucket{}
	prodCount := map[string]int{}
	var prodOrder []string

	for _, prod := range s.catalog {
		if prod.Category == "" {
			continue
		}
		if _, ok := prodCount[prod.Category]; !ok {
			prodOrder = append(prodOrder, prod.Category)
		}
		prodCount[prod.Category]++

		if prod.AgeGroup == "" || prod.Gender == "" {
			continue
		}
		key := demoKey(prod.AgeGroup, prod.Gender)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{counts: map[string]float64{}}
			buckets[key] = b
		}
		if _, seen := b.counts[prod.Category]; !seen {
			b.order = append(b.order, prod.Category)
		}
		b.counts[prod.Category] += prod.Purchases
	}

	s.demoCategories = make(map[string][]string, len(buckets))
	for key, b := range buckets {
		ranked := append([]string(nil), b.order...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return b.counts[ranked[i]] > b.counts[ranked[j]]
		})
		if len(ranked) > 3 {
			ranked = ranked[:3]
		}
		s.demoCategories[key] = ranked
	}

	ranked := append([]string(nil), prodOrder...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return prodCount[ranked[i]] > prodCount[ranked[j]]
	})
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	s.defaultCategories = ranked
}

func demoKey(ageGroup, gender string) string {
	return ageGroup + "|" + gender
}

func degraded(logger *slog.Logger, component string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("training component degraded", "component", component, "err", err)
}
