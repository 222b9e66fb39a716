package feature

import "fmt"

// OneHotEncoder One-Hot 编码（独热编码）
// 将类别特征转换为二进制向量，每个类别对应一个维度。
// 未知类别全零（等价于 handle_unknown=ignore），缺失值按 "missing" 类别处理。
type OneHotEncoder struct {
	Categories map[string][]string // 每个特征名对应的类别列表（含 "missing"）
}

// MissingCategory 是缺失类别占位值。
const MissingCategory = "missing"

// FitOneHot 从总体取值拟合类别表；每列追加 "missing" 类别兜底。
// columns 为 列名 → 全体取值，类别按首次出现顺序编号（确定性）。
func FitOneHot(columns map[string][]string) *OneHotEncoder {
	cats := make(map[string][]string, len(columns))
	for key, values := range columns {
		seen := make(map[string]bool, len(values))
		ordered := make([]string, 0, 8)
		for _, v := range values {
			if v == "" {
				v = MissingCategory
			}
			if !seen[v] {
				seen[v] = true
				ordered = append(ordered, v)
			}
		}
		if !seen[MissingCategory] {
			ordered = append(ordered, MissingCategory)
		}
		cats[key] = ordered
	}
	return &OneHotEncoder{Categories: cats}
}

// EncodeWithKey 编码单个值（指定特征名），输出 "<key>_<i>" → 0/1。
func (e *OneHotEncoder) EncodeWithKey(key string, value string) map[string]float64 {
	encoded := make(map[string]float64)
	categories, ok := e.Categories[key]
	if !ok {
		return encoded
	}
	if value == "" {
		value = MissingCategory
	}
	for i, cat := range categories {
		name := fmt.Sprintf("%s_%d", key, i)
		if cat == value {
			encoded[name] = 1.0
		} else {
			encoded[name] = 0.0
		}
	}
	return encoded
}

// EncodedFields 返回某个特征编码后的输出列名（固定顺序）。
func (e *OneHotEncoder) EncodedFields(key string) []string {
	categories := e.Categories[key]
	fields := make([]string, len(categories))
	for i := range categories {
		fields[i] = fmt.Sprintf("%s_%d", key, i)
	}
	return fields
}

// EncodeFeatures 编码类别特征字典（批量）。
func (e *OneHotEncoder) EncodeFeatures(features map[string]string) map[string]float64 {
	encoded := make(map[string]float64)
	for k := range e.Categories {
		for ek, ev := range e.EncodeWithKey(k, features[k]) {
			encoded[ek] = ev
		}
	}
	return encoded
}
