package engine

import (
	"context"

	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/pipeline"
	"github.com/rushteam/persokit/pkg/utils"
)

// backfillNode 是热度补足节点：协同候选不足 N 时，
// 用热度榜商品补齐（跳过已有候选与排除 ID），分数置 0 排在候选之后。
type backfillNode struct {
	Popular []core.Product
	Exclude []string
	N       int
}

func (n *backfillNode) Name() string {
	return "engine.popularity_backfill"
}

func (n *backfillNode) Kind() pipeline.Kind {
	return pipeline.KindBackfill
}

func (n *backfillNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) >= n.N {
		return items, nil
	}

	present := make(map[string]bool, n.N)
	for _, it := range items {
		present[it.ID] = true
	}
	for _, id := range n.Exclude {
		present[id] = true
	}

	for _, prod := range n.Popular {
		if len(items) >= n.N {
			break
		}
		if present[prod.ID] {
			continue
		}
		present[prod.ID] = true
		it := core.NewItem(prod.ID)
		it.PutLabel("recall_source", utils.Label{Value: "popularity_backfill", Source: "backfill"})
		items = append(items, it)
	}
	return items, nil
}
