package rerank

import (
	"context"

	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/pipeline"
)

// DedupNode 按商品 ID 去重，保留首个出现的候选并合并后来者的 Labels。
// 推荐结果按 ID 去重是响应的硬性不变量。
type DedupNode struct{}

func (n *DedupNode) Name() string {
	return "rerank.dedup"
}

func (n *DedupNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *DedupNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	seen := make(map[string]*core.Item, len(items))
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if old, ok := seen[it.ID]; ok {
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			continue
		}
		seen[it.ID] = it
		out = append(out, it)
	}
	return out, nil
}
