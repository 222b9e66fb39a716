package rerank

import (
	"context"

	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/pipeline"
)

// TopNNode 是 Top-N 截断节点：补足之后把候选截到请求的 n。
// 如果 N <= 0 或候选不足 N，原样返回。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
