package utils

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// 引擎用它标注候选商品的来源（collaborative / backfill / coldstart）
// 与解释信息，最终汇入响应的 explanation。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // collaborative / backfill / coldstart / rule ...
}

// MergeLabel 用于合并同名 Label，遵循"保留历史、可追踪"的默认策略。
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
