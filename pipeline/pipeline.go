package pipeline

import (
	"context"

	"github.com/rushteam/persokit/core"
)

// Pipeline 把个性化服务路径拆成可组合的 Node 链：
// 协同召回 → 排除过滤 → 热度补足 → TopN 截断。
type Pipeline struct {
	Nodes []Node
}

// Run 按序执行各节点。服务路径带超时预算，
// 节点间检查 ctx 以便尽早让出给降级布局。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
