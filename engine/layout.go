package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rushteam/persokit/core"
)

// 漏斗阶段（落地页模板选择的闭集取值）。
const (
	StageDiscovery     = "discovery"
	StageConsideration = "consideration"
	StagePurchase      = "purchase"
)

// GetLandingPageLayout 组装落地页布局。
// 有历史的已知用户出个性化布局，其余出冷启动回退布局；
// 超时预算内未完成或组装 panic 时降级应急布局（IsFallback）。
func (e *Engine) GetLandingPageLayout(ctx context.Context, rctx *core.RecommendContext) (*core.Layout, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, errNotTrained()
	}

	budget := time.Duration(e.cfg.LayoutTimeoutMS) * time.Millisecond
	cctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan *core.Layout, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.warn("layout build panicked", fmt.Errorf("%v", r))
				done <- nil
			}
		}()
		done <- e.buildLayout(cctx, snap, rctx)
	}()

	select {
	case layout := <-done:
		if layout == nil {
			return snap.policy.EmergencyLayout(), nil
		}
		return layout, nil
	case <-cctx.Done():
		return snap.policy.EmergencyLayout(), nil
	}
}

func (e *Engine) buildLayout(ctx context.Context, snap *Snapshot, rctx *core.RecommendContext) *core.Layout {
	var prof *core.UserProfile
	if rctx != nil && rctx.UserID != "" {
		prof = snap.profiles[rctx.UserID]
	}
	if prof == nil || isNewUser(rctx) || !prof.HasHistory() {
		return snap.policy.FallbackLayout(ctx, rctx)
	}

	stage := funnelStage(prof, rctx)
	banner := heroBanner(stage)
	return &core.Layout{
		HeroBanner:     &banner,
		ProductModules: e.productModules(snap, prof),
		CTAModules:     stageCTAs(stage),
		Dynamic:        e.dynamicContent(snap, prof, rctx),
		Personalized:   true,
	}
}

// funnelStage 判定漏斗阶段。purchase 只认本次上下文中已完成的购买，
// 弃购为 consideration，其余一律 discovery——历史买家回访时
// 仍按发现阶段引导，而不是停在感谢页模板。
func funnelStage(prof *core.UserProfile, rctx *core.RecommendContext) string {
	if rctx != nil && rctx.PurchaseCompleted {
		return StagePurchase
	}
	if prof.CartAbandoned {
		return StageConsideration
	}
	return StageDiscovery
}

// heroBanner 按漏斗阶段返回主横幅模板。
func heroBanner(stage string) core.HeroBanner {
	switch stage {
	case StageConsideration:
		return core.HeroBanner{
			Title:    "Your Cart Awaits",
			Subtitle: "Complete Your Purchase",
			Image:    "cart-banner.jpg",
		}
	case StagePurchase:
		return core.HeroBanner{
			Title:    "Thank You for Shopping",
			Subtitle: "Explore More Deals",
			Image:    "thank-you-banner.jpg",
		}
	default:
		return core.HeroBanner{
			Title:    "Welcome to Our Store",
			Subtitle: "Discover Amazing Products",
			Image:    "welcome-banner.jpg",
		}
	}
}

// stageCTAs 按漏斗阶段返回 CTA 模板对。
func stageCTAs(stage string) []core.CTAModule {
	switch stage {
	case StageConsideration:
		return []core.CTAModule{
			{Type: "cart", Text: "View Cart", Action: "cart", Priority: 1},
			{Type: "coupon", Text: "Apply Coupon", Action: "coupon", Priority: 2},
		}
	case StagePurchase:
		return []core.CTAModule{
			{Type: "shop", Text: "Shop Again", Action: "shop", Priority: 1},
			{Type: "recommendations", Text: "View Recommendations", Action: "recommend", Priority: 2},
		}
	default:
		return []core.CTAModule{
			{Type: "browse", Text: "Explore Categories", Action: "browse", Priority: 1},
			{Type: "new_arrivals", Text: "New Arrivals", Action: "new", Priority: 2},
		}
	}
}

// productModules 人群分桶的品类模块：优先取用户年龄段 × 性别的
// 高购买品类；无命中时回退商品数领先的默认品类。
func (e *Engine) productModules(snap *Snapshot, prof *core.UserProfile) []core.ProductModule {
	ageGroup := prof.AgeGroup
	if ageGroup == "" {
		ageGroup = "25-34"
	}
	gender := prof.Gender
	if gender == "" {
		gender = "M"
	}

	var modules []core.ProductModule
	for _, cat := range snap.demoCategories[demoKey(ageGroup, gender)] {
		products := topRatedInCategory(snap.catalog, cat, ageGroup, gender, 5)
		if len(products) == 0 {
			continue
		}
		modules = append(modules, core.ProductModule{
			Title:    "Top " + capitalize(cat),
			Category: cat,
			Products: products,
		})
	}
	if len(modules) > 0 {
		return modules
	}

	for _, cat := range snap.defaultCategories {
		products := topRatedInCategory(snap.catalog, cat, "", "", 5)
		if len(products) == 0 {
			continue
		}
		modules = append(modules, core.ProductModule{
			Title:    "Top " + capitalize(cat),
			Category: cat,
			Products: products,
		})
	}
	return modules
}

// dynamicContent 动态内容块：最近浏览、当前热卖、个性化优惠。
func (e *Engine) dynamicContent(snap *Snapshot, prof *core.UserProfile, rctx *core.RecommendContext) *core.DynamicContent {
	recent := make([]core.Product, 0, 5)
	for _, pid := range prof.ProductsViewed {
		if prod, ok := snap.products[pid]; ok {
			recent = append(recent, prod)
		}
		if len(recent) == 5 {
			break
		}
	}
	if len(recent) == 0 {
		recent = headProducts(snap.byViews, 5)
	}

	return &core.DynamicContent{
		RecentViews:        recent,
		PopularNow:         headProducts(snap.byPurchases, 5),
		PersonalizedOffers: e.offersFor(prof, rctx),
	}
}

// offersFor 逐条求值优惠资格规则；单条求值失败只记日志跳过。
func (e *Engine) offersFor(prof *core.UserProfile, rctx *core.RecommendContext) []core.Offer {
	user := prof.AsMap()
	ctx := rctx.AsMap()
	var offers []core.Offer
	for _, off := range e.offers {
		ok, err := off.prg.EvalBool(user, ctx)
		if err != nil {
			e.warn("offer rule degraded", err)
			continue
		}
		if ok {
			offers = append(offers, core.Offer{
				Type:        off.rule.Type,
				Discount:    off.rule.Discount,
				Description: off.rule.Description,
			})
		}
	}
	return offers
}

// topRatedInCategory 取品类内评分最高的前 n 个商品；
// ageGroup/gender 非空时按人群过滤。
func topRatedInCategory(catalog []core.Product, category, ageGroup, gender string, n int) []core.Product {
	var matched []core.Product
	for _, prod := range catalog {
		if !strings.EqualFold(prod.Category, category) {
			continue
		}
		if ageGroup != "" && prod.AgeGroup != ageGroup {
			continue
		}
		if gender != "" && prod.Gender != gender {
			continue
		}
		matched = append(matched, prod)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Rating > matched[j].Rating })
	return headProducts(matched, n)
}

func headProducts(products []core.Product, n int) []core.Product {
	if len(products) > n {
		return products[:n]
	}
	return products
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
