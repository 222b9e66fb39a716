package filter

import (
	"context"

	"github.com/rushteam/persokit/core"
)

// ExcludeIDs 是排除过滤器：剔除调用方明确排除的商品 ID。
// 推荐结果绝不包含被排除 ID 是响应的硬性不变量。
type ExcludeIDs struct {
	IDs map[string]bool
}

// NewExcludeIDs 以 ID 列表创建排除过滤器。
func NewExcludeIDs(ids []string) *ExcludeIDs {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return &ExcludeIDs{IDs: set}
}

func (f *ExcludeIDs) Name() string {
	return "filter.exclude_ids"
}

func (f *ExcludeIDs) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return f.IDs[item.ID], nil
}
