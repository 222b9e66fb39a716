package feature

import (
	"math"
	"sort"
)

// Normalizer 是特征标准化接口。
type Normalizer interface {
	// NormalizeWithKey 标准化单个值（指定特征名）
	NormalizeWithKey(key string, value float64) float64
	// Normalize 标准化特征字典
	Normalize(features map[string]float64) map[string]float64
}

// ZScoreNormalizer Z-score 标准化（Standardization）
// 公式: z = (x - μ) / σ
// 特点: 均值变为 0，标准差变为 1；σ=0 的退化列原样返回
type ZScoreNormalizer struct {
	Mean map[string]float64 // 特征均值
	Std  map[string]float64 // 特征标准差
}

// FitZScore 在总体上拟合 Z-score 参数（总体标准差，非样本标准差）。
// columns 为 列名 → 全体取值；拟合一次，之后仅 transform，绝不在单条查询上重拟合。
func FitZScore(columns map[string][]float64) *ZScoreNormalizer {
	mean := make(map[string]float64, len(columns))
	std := make(map[string]float64, len(columns))
	for key, values := range columns {
		if len(values) == 0 {
			continue
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		m := sum / float64(len(values))
		var sq float64
		for _, v := range values {
			d := v - m
			sq += d * d
		}
		mean[key] = m
		std[key] = math.Sqrt(sq / float64(len(values)))
	}
	return &ZScoreNormalizer{Mean: mean, Std: std}
}

// NormalizeWithKey 标准化单个值（指定特征名）
func (n *ZScoreNormalizer) NormalizeWithKey(key string, value float64) float64 {
	mean := n.Mean[key]
	std := n.Std[key]
	if std > 0 {
		return (value - mean) / std
	}
	return value - mean
}

// Normalize 标准化特征字典
func (n *ZScoreNormalizer) Normalize(features map[string]float64) map[string]float64 {
	normalized := make(map[string]float64, len(features))
	for k, v := range features {
		normalized[k] = n.NormalizeWithKey(k, v)
	}
	return normalized
}

// Median 计算中位数（插补默认值用）；空切片返回 0。
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
