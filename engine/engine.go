// Package engine 是个性化引擎的编排层。
//
// 服务模型：
//   - Train 在全量画像与目录上训练一个不可变 Snapshot，
//     经 atomic.Pointer 原子发布；重训期间旧快照继续服务
//   - GetRecommendations 已知用户走协同过滤流水线，
//     未知/新用户降级冷启动
//   - GetLandingPageLayout 按漏斗阶段组装落地页；超时预算内
//     未完成则降级应急布局
//   - GetColdStartRecommendations 不依赖训练状态，永不失败
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rushteam/persokit/coldstart"
	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/filter"
	"github.com/rushteam/persokit/pipeline"
	"github.com/rushteam/persokit/pkg/dsl"
	"github.com/rushteam/persokit/pkg/utils"
	"github.com/rushteam/persokit/rerank"
	"github.com/rushteam/persokit/segment"
)

// Engine 是个性化引擎。创建后通过 Train 装载数据；
// 查询路径只读当前快照，与重训并发安全。
type Engine struct {
	cfg      Config
	profiles core.ProfileStore
	catalog  core.CatalogStore
	clock    core.Clock
	calendar core.HolidayCalendar
	logger   *slog.Logger
	offers   []compiledOffer

	trainMu sync.Mutex // 串行化重训
	snap    atomic.Pointer[Snapshot]
}

type compiledOffer struct {
	rule OfferRule
	prg  *dsl.Rule
}

// Option 是引擎构造选项。
type Option func(*Engine)

// WithStores 注入画像与目录存储（Train 从存储加载时必需）。
func WithStores(profiles core.ProfileStore, catalog core.CatalogStore) Option {
	return func(e *Engine) {
		e.profiles = profiles
		e.catalog = catalog
	}
}

// WithClock 注入时间源（测试/回放用）。
func WithClock(clock core.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithCalendar 注入节日日历。
func WithCalendar(cal core.HolidayCalendar) Option {
	return func(e *Engine) { e.calendar = cal }
}

// WithLogger 注入结构化日志；nil 表示静默。
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New 创建引擎；优惠规则在此编译，规则非法即报错。
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg.normalize()
	e := &Engine{
		cfg:   cfg,
		clock: core.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, rule := range cfg.Offers {
		prg, err := dsl.Compile(rule.When)
		if err != nil {
			return nil, fmt.Errorf("offer rule %q: %w", rule.Type, err)
		}
		e.offers = append(e.offers, compiledOffer{rule: rule, prg: prg})
	}
	return e, nil
}

// Train 从注入的存储加载全量数据并重训。
// 任一输入为空时返回 false 且保留现有快照。
func (e *Engine) Train(ctx context.Context) (bool, error) {
	if e.profiles == nil || e.catalog == nil {
		return false, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"train: no stores configured")
	}
	profiles, err := e.profiles.ListProfiles(ctx)
	if err != nil {
		return false, fmt.Errorf("train: list profiles: %w", err)
	}
	products, err := e.catalog.ListProducts(ctx)
	if err != nil {
		return false, fmt.Errorf("train: list products: %w", err)
	}
	return e.TrainWith(ctx, profiles, products)
}

// TrainWith 直接在给定数据上重训（测试与批处理入口）。
// 空输入返回 (false, nil)；训练失败时现有快照不被替换。
func (e *Engine) TrainWith(_ context.Context, profiles []*core.UserProfile, products []core.Product) (bool, error) {
	if len(profiles) == 0 || len(products) == 0 {
		return false, nil
	}
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	snap, err := newSnapshot(e.clock.Now(), profiles, products, e.cfg, e.clock, e.calendar, e.logger)
	if err != nil {
		return false, err
	}
	e.snap.Store(snap)
	return true, nil
}

// Trained 返回是否已有可服务的快照。
func (e *Engine) Trained() bool { return e.snap.Load() != nil }

// Profile 返回快照中的画像；未训练/不存在时分别报
// MODEL_NOT_TRAINED / NOT_FOUND。
func (e *Engine) Profile(userID string) (*core.UserProfile, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, errNotTrained()
	}
	p, ok := snap.profiles[userID]
	if !ok {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound,
			"profile not found: "+userID)
	}
	return p, nil
}

// Segment 返回用户的 RFM 打分与分群。
func (e *Engine) Segment(userID string) (segment.Score, error) {
	snap := e.snap.Load()
	if snap == nil {
		return segment.Score{}, errNotTrained()
	}
	sc, ok := snap.segments[userID]
	if !ok {
		return segment.Score{}, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound,
			"segment not found: "+userID)
	}
	return sc, nil
}

// GetRecommendations 返回至多 n 条推荐。
// 有历史的已知用户走协同过滤流水线；其余走冷启动热度路径。
// 不变量：结果 ≤ n、按 ID 去重、不含 exclude 中的 ID。
func (e *Engine) GetRecommendations(
	ctx context.Context,
	rctx *core.RecommendContext,
	n int,
	exclude ...string,
) (*core.RecommendationResponse, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, errNotTrained()
	}
	if n <= 0 {
		n = e.cfg.DefaultN
	}

	var prof *core.UserProfile
	if rctx != nil && rctx.UserID != "" {
		prof = snap.profiles[rctx.UserID]
	}
	if prof != nil && !isNewUser(rctx) && prof.HasHistory() && snap.behaviorIndex != nil {
		resp, err := e.collaborative(ctx, snap, rctx, prof, n, exclude)
		if err == nil {
			return resp, nil
		}
		if !core.IsNotFound(err) && !core.IsInsufficientData(err) {
			return nil, err
		}
		e.warn("collaborative path degraded", err)
	}
	return e.coldResponse(snap, rctx, n, exclude), nil
}

// collaborative 协同过滤路径：近邻用户的浏览商品按相似度累加计分，
// 经 排除过滤 → 热度补足 → 去重 → TopN 流水线出结果。
func (e *Engine) collaborative(
	ctx context.Context,
	snap *Snapshot,
	rctx *core.RecommendContext,
	prof *core.UserProfile,
	n int,
	exclude []string,
) (*core.RecommendationResponse, error) {
	neighbors, err := snap.behaviorIndex.QueryByID(prof.UserID, e.cfg.Neighbors)
	if err != nil {
		return nil, err
	}

	own := make(map[string]bool, len(prof.ProductsViewed))
	for _, pid := range prof.ProductsViewed {
		own[pid] = true
	}

	// 候选计分：近邻浏览过、本人没看过的商品，相似度累加
	scores := map[string]float64{}
	var order []string
	for _, nb := range neighbors {
		np := snap.profiles[nb.ID]
		if np == nil {
			continue
		}
		for _, pid := range np.ProductsViewed {
			if own[pid] {
				continue
			}
			if _, ok := snap.products[pid]; !ok {
				continue
			}
			if _, seen := scores[pid]; !seen {
				order = append(order, pid)
			}
			scores[pid] += nb.Similarity
		}
	}

	items := make([]*core.Item, 0, len(order))
	for _, pid := range order {
		it := core.NewItem(pid)
		it.Score = scores[pid]
		it.PutLabel("recall_source", utils.Label{Value: "collaborative", Source: "recall"})
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })

	pipe := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&filter.Node{Filters: []filter.Filter{filter.NewExcludeIDs(exclude)}},
		&backfillNode{Popular: snap.byPopularity, Exclude: exclude, N: n},
		&rerank.DedupNode{},
		&rerank.TopNNode{N: n},
	}}
	items, err = pipe.Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}

	products := make([]core.Product, 0, len(items))
	for _, it := range items {
		if prod, ok := snap.products[it.ID]; ok {
			products = append(products, prod)
		}
	}
	return &core.RecommendationResponse{
		Type:                core.RecommendationPersonalized,
		UserID:              prof.UserID,
		RecommendedProducts: products,
		Explanation:         fmt.Sprintf("Based on %d similar users", len(neighbors)),
	}, nil
}

// coldResponse 冷启动热度路径：移动端只出移动友好商品，
// 按时段热度（早/晚）或综合热度排序。
func (e *Engine) coldResponse(snap *Snapshot, rctx *core.RecommendContext, n int, exclude []string) *core.RecommendationResponse {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	mobile := rctx != nil && isMobileDevice(rctx.DeviceType)
	pool := make([]core.Product, 0, len(snap.catalog))
	for _, prod := range snap.catalog {
		if excluded[prod.ID] {
			continue
		}
		if mobile && !prod.IsMobileFriendly {
			continue
		}
		pool = append(pool, prod)
	}

	slot := ""
	if rctx != nil {
		slot = rctx.TimeOfDay
	}
	if slot == "" {
		slot = core.TimeOfDayFromHour(e.clock.Now().Hour())
	}
	sort.SliceStable(pool, func(i, j int) bool {
		switch slot {
		case core.TimeMorning:
			return pool[i].PopularityMorning > pool[j].PopularityMorning
		case core.TimeEvening:
			return pool[i].PopularityEvening > pool[j].PopularityEvening
		default:
			return pool[i].Popularity > pool[j].Popularity
		}
	})
	if len(pool) > n {
		pool = pool[:n]
	}

	resp := &core.RecommendationResponse{
		Type:                core.RecommendationColdStart,
		RecommendedProducts: pool,
		Explanation:         "Popular products for new visitors",
	}
	if rctx != nil {
		resp.UserID = rctx.UserID
		resp.ContextUsed = rctx.AsMap()
	}
	return resp
}

// GetColdStartRecommendations 执行冷启动级联。
// 未训练时仍可用：直接命中硬兜底（confidence 0.0），永不返回错误。
func (e *Engine) GetColdStartRecommendations(
	_ context.Context,
	rctx *core.RecommendContext,
	overrides map[string]float64,
	n int,
) *coldstart.Recommendation {
	if n <= 0 {
		n = e.cfg.DefaultN
	}
	snap := e.snap.Load()
	if snap != nil {
		return snap.policy.Recommend(rctx, overrides, n)
	}
	policy := &coldstart.Policy{
		Clock:    e.clock,
		Calendar: e.calendar,
		Logger:   e.logger,
		K:        e.cfg.Neighbors,
	}
	return policy.Recommend(rctx, overrides, n)
}

func (e *Engine) warn(msg string, err error) {
	if e.logger == nil || err == nil {
		return
	}
	e.logger.Warn(msg, "err", err)
}

func errNotTrained() error {
	return core.NewDomainError(core.ModuleEngine, core.ErrorCodeModelNotTrained,
		"engine: train has not been called")
}

func isNewUser(rctx *core.RecommendContext) bool {
	return rctx != nil && rctx.IsNewUser
}

func isMobileDevice(device string) bool {
	return device == "mobile" || device == "Mobile"
}
