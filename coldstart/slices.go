package coldstart

import (
	"sort"
	"strings"
	"time"

	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/holiday"
)

// 目录切片：时段/设备/地域/趋势/节日的 Top 商品，回退布局的原料。
// 所有切片排序平稳，同分按目录顺序保序，结果可复现。

const sliceSize = 5

// TimeBasedTop 返回时段 Top 商品。slot 为空时由 now 推导；
// 周末只保留周末高热商品（无命中即空，属于允许的空信号）。
func (p *Policy) TimeBasedTop(slot string, now time.Time) []core.Product {
	if slot == "" {
		slot = core.TimeOfDayFromHour(now.Hour())
	}
	matched := make([]core.Product, 0, sliceSize)
	for _, prod := range p.Catalog {
		if prod.TimeSlot != slot {
			continue
		}
		if core.IsWeekend(now) && !prod.IsWeekendHot {
			continue
		}
		matched = append(matched, prod)
	}
	sortByEngagement(matched)
	return head(matched, sliceSize)
}

// DeviceBasedTop 返回设备亲和 Top 商品。
// 目录完全没有设备标注时退化为全目录（标注缺失不算无命中）。
func (p *Policy) DeviceBasedTop(device string) []core.Product {
	anyTyped := false
	for _, prod := range p.Catalog {
		if prod.DeviceType != "" {
			anyTyped = true
			break
		}
	}
	var matched []core.Product
	if !anyTyped || device == "" {
		matched = append([]core.Product(nil), p.Catalog...)
	} else {
		for _, prod := range p.Catalog {
			if strings.EqualFold(prod.DeviceType, device) {
				matched = append(matched, prod)
			}
		}
	}
	sortByEngagement(matched)
	return head(matched, sliceSize)
}

// RegionBasedTop 返回地域 Top 商品；无地域信号时返回空。
func (p *Policy) RegionBasedTop(region string) []core.Product {
	if region == "" {
		return nil
	}
	var matched []core.Product
	for _, prod := range p.Catalog {
		if strings.EqualFold(prod.Region, region) {
			matched = append(matched, prod)
		}
	}
	sortByEngagement(matched)
	return head(matched, sliceSize)
}

// TrendingTop 返回全目录趋势 Top 商品。
func (p *Policy) TrendingTop() []core.Product {
	all := append([]core.Product(nil), p.Catalog...)
	sortByEngagement(all)
	return head(all, sliceSize)
}

// SeasonalTop 返回节日应景商品：节日名 → 关键词 → 商品名包含匹配。
// 非节日返回空。
func (p *Policy) SeasonalTop(now time.Time) []core.Product {
	if p.Calendar == nil {
		return nil
	}
	name, ok := p.Calendar.HolidayName(now)
	if !ok {
		return nil
	}
	keywords := holiday.Keywords(name)
	if len(keywords) == 0 {
		return nil
	}
	var matched []core.Product
	for _, prod := range p.Catalog {
		if holiday.MatchName(prod.Name, keywords) {
			matched = append(matched, prod)
		}
	}
	sortByEngagement(matched)
	return head(matched, sliceSize)
}

// FeaturedCategories 返回购买量领先的前三个品类聚合。
func (p *Policy) FeaturedCategories() []core.CategoryStat {
	stats := map[string]*core.CategoryStat{}
	counts := map[string]int{}
	order := make([]string, 0, 8)
	for _, prod := range p.Catalog {
		if prod.Category == "" {
			continue
		}
		st, ok := stats[prod.Category]
		if !ok {
			st = &core.CategoryStat{Name: prod.Category}
			stats[prod.Category] = st
			order = append(order, prod.Category)
		}
		st.Purchases += prod.Purchases
		st.Views += prod.Views
		st.Rating += prod.Rating
		counts[prod.Category]++
	}

	out := make([]core.CategoryStat, 0, len(order))
	for _, name := range order {
		st := *stats[name]
		if c := counts[name]; c > 0 {
			st.Rating /= float64(c)
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Purchases != out[j].Purchases {
			return out[i].Purchases > out[j].Purchases
		}
		return out[i].Views > out[j].Views
	})
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// CTAModules 按时段/周末/节日组装 CTA 模块，按优先级升序（0 最高）。
// 时段 → CTA 对的映射是固定模板，节日 CTA 恒为最高优先级。
func (p *Policy) CTAModules(now time.Time) []core.CTAModule {
	var ctas []core.CTAModule
	switch core.TimeOfDayFromHour(now.Hour()) {
	case core.TimeMorning:
		ctas = append(ctas,
			core.CTAModule{Type: "explore", Text: "Start Your Day Right", Action: "browse_new", Priority: 1},
			core.CTAModule{Type: "browse", Text: "Morning Deals", Action: "view_deals", Priority: 2},
		)
	case core.TimeAfternoon:
		ctas = append(ctas,
			core.CTAModule{Type: "browse", Text: "Best Sellers", Action: "view_bestsellers", Priority: 1},
			core.CTAModule{Type: "explore", Text: "Trending Now", Action: "view_trending", Priority: 2},
		)
	default:
		ctas = append(ctas,
			core.CTAModule{Type: "buy", Text: "Limited Time Offers", Action: "view_offers", Priority: 1},
			core.CTAModule{Type: "explore", Text: "Staff Picks", Action: "view_staff_picks", Priority: 2},
		)
	}
	if core.IsWeekend(now) {
		ctas = append(ctas, core.CTAModule{
			Type: "special", Text: "Weekend Specials", Action: "view_weekend_specials", Priority: 3,
		})
	}
	if p.Calendar != nil {
		if name, ok := p.Calendar.HolidayName(now); ok {
			ctas = append(ctas, core.CTAModule{
				Type: "holiday", Text: name + " Specials", Action: "view_holiday_specials", Priority: 0,
			})
		}
	}
	sort.SliceStable(ctas, func(i, j int) bool { return ctas[i].Priority < ctas[j].Priority })
	return ctas
}

// ProductsForCategories 按品类权重顺序取商品：每个品类内按综合热度降序，
// 跨品类去重；不足 n 时用全目录热度榜补足。
func (p *Policy) ProductsForCategories(weights []CategoryWeight, n int) []core.Product {
	if n <= 0 {
		n = sliceSize
	}
	out := make([]core.Product, 0, n)
	seen := make(map[string]bool, n)
	take := func(prod core.Product) bool {
		if seen[prod.ID] {
			return len(out) < n
		}
		seen[prod.ID] = true
		out = append(out, prod)
		return len(out) < n
	}

	for _, w := range weights {
		var matched []core.Product
		for _, prod := range p.Catalog {
			if strings.EqualFold(prod.Category, w.Name) {
				matched = append(matched, prod)
			}
		}
		sortByPopularity(matched)
		for _, prod := range matched {
			if !take(prod) {
				return out
			}
		}
	}

	// 品类命中不足时回补全目录热度榜
	backfill := append([]core.Product(nil), p.Catalog...)
	sortByPopularity(backfill)
	for _, prod := range backfill {
		if !take(prod) {
			break
		}
	}
	return out
}

// sortByEngagement 按购买、浏览、评分降序平稳排序。
func sortByEngagement(products []core.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Purchases != products[j].Purchases {
			return products[i].Purchases > products[j].Purchases
		}
		if products[i].Views != products[j].Views {
			return products[i].Views > products[j].Views
		}
		return products[i].Rating > products[j].Rating
	})
}

// sortByPopularity 按综合热度分降序平稳排序。
func sortByPopularity(products []core.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Popularity > products[j].Popularity
	})
}

func head(products []core.Product, n int) []core.Product {
	if len(products) > n {
		return products[:n]
	}
	return products
}
