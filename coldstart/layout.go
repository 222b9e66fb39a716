package coldstart

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/persokit/core"
)

// FallbackLayout 组装零历史访客的回退落地页布局。
// 各目录切片互相独立，errgroup 并发取数后一次组装；
// 切片为空只意味着该板块缺席，不影响整体布局。
func (p *Policy) FallbackLayout(ctx context.Context, rctx *core.RecommendContext) *core.Layout {
	now := p.now()
	var (
		slot   string
		device string
		region string
	)
	if rctx != nil {
		slot = rctx.TimeOfDay
		device = rctx.DeviceType
		region = rctx.Region
	}

	var (
		heroPool []core.Product
		forYou   []core.Product
		local    []core.Product
		trending []core.Product
		seasonal []core.Product
		featured []core.CategoryStat
		ctas     []core.CTAModule
	)

	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		heroPool = p.TimeBasedTop(slot, now)
		return nil
	})
	eg.Go(func() error {
		forYou = p.DeviceBasedTop(device)
		return nil
	})
	eg.Go(func() error {
		local = p.RegionBasedTop(region)
		return nil
	})
	eg.Go(func() error {
		trending = p.TrendingTop()
		return nil
	})
	eg.Go(func() error {
		seasonal = p.SeasonalTop(now)
		return nil
	})
	eg.Go(func() error {
		featured = p.FeaturedCategories()
		return nil
	})
	eg.Go(func() error {
		ctas = p.CTAModules(now)
		return nil
	})
	_ = eg.Wait() // 切片函数不返回错误，Wait 只做汇合

	hero := heroPool
	if len(hero) > 3 {
		hero = hero[:3]
	}
	return &core.Layout{
		HeroProducts: hero,
		Carousels: &core.Carousels{
			ForYou:         forYou,
			Trending:       trending,
			LocalFavorites: local,
		},
		Featured:     featured,
		CTAModules:   ctas,
		Seasonal:     seasonal,
		Personalized: false,
	}
}

// EmergencyLayout 是布局失败时的最小可用布局：
// 只有趋势轮播和一个固定 CTA，永不失败。
func (p *Policy) EmergencyLayout() *core.Layout {
	return &core.Layout{
		Carousels: &core.Carousels{
			Trending: p.TrendingTop(),
		},
		CTAModules: []core.CTAModule{
			{Type: "shop", Text: "Shop Now", Action: "browse_all", Priority: 1},
		},
		Personalized: false,
		IsFallback:   true,
	}
}
