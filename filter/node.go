package filter

import (
	"context"

	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/pipeline"
	"github.com/rushteam/persokit/pkg/utils"
)

// Node 是过滤 Node，可以组合多个过滤器。
// 任何一个过滤器返回 true，该候选就会被剔除；过滤器自身出错时跳过该过滤器，不中断流程。
type Node struct {
	Filters []Filter
}

func (n *Node) Name() string {
	return "filter.node"
}

func (n *Node) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		shouldFilter := false
		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				continue
			}
			if ok {
				shouldFilter = true
				reason = f.Name()
				break
			}
		}

		if shouldFilter {
			item.PutLabel("filtered", utils.Label{Value: "true", Source: reason})
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
