// Package segment 提供 RFM 分位打分与行为分群。
//
// RFM 三维各自在总体上做 5 分位分桶（recency 反转：越近期分越高），
// 三个桶分的均值即 RFM 分，按固定阈值映射到分群标签。
package segment

import (
	"math"
	"sort"
	"time"
)

// 分群标签（固定阈值映射）。
const (
	SegmentChampions      = "Champions"           // RFM ≥ 4.5
	SegmentLoyal          = "Loyal Customers"     // RFM ≥ 4.0
	SegmentPotential      = "Potential Loyalists" // RFM ≥ 3.0
	SegmentAtRisk         = "At Risk"             // RFM ≥ 2.0
	SegmentNeedsAttention = "Needs Attention"     // 其余
)

// Input 是单个用户的 RFM 原始值。
// Monetary 为该用户的总消费额（按用户归集，不做跨用户平均）。
type Input struct {
	UserID     string
	LastActive time.Time
	Frequency  float64
	Monetary   float64
}

// Score 是单个用户的 RFM 打分结果。
type Score struct {
	R   int     // recency 桶分 1-5（越近期越高）
	F   int     // frequency 桶分 1-5
	M   int     // monetary 桶分 1-5
	RFM float64 // 三者均值，保留两位小数

	Segment      string // 分群标签
	ValueSegment string // low / medium / high / very_high

	// EngagementLevel 活跃档位（new / light / medium / heavy），
	// 由调用方按会话数经 EngagementLevelFor 补齐
	EngagementLevel string
}

// ScorePopulation 在总体上计算每个用户的 RFM 打分。
// now 为 recency 的参照时间（注入时钟，保证可复现）；空总体返回空表。
func ScorePopulation(now time.Time, population []Input) map[string]Score {
	if len(population) == 0 {
		return map[string]Score{}
	}

	recency := make([]float64, len(population))
	frequency := make([]float64, len(population))
	monetary := make([]float64, len(population))
	for i, in := range population {
		if in.LastActive.IsZero() {
			// 无活动时间视为最久远
			recency[i] = math.MaxFloat64
		} else {
			recency[i] = now.Sub(in.LastActive).Hours() / 24
		}
		frequency[i] = in.Frequency
		monetary[i] = in.Monetary
	}

	rBuckets := quantileBuckets(recency, 5)
	fBuckets := quantileBuckets(frequency, 5)
	mBuckets := quantileBuckets(monetary, 5)

	out := make(map[string]Score, len(population))
	for i, in := range population {
		r := 6 - rBuckets[i] // 反转：天数越小（越近期）分越高
		f := fBuckets[i]
		m := mBuckets[i]
		rfm := math.Round(float64(r+f+m)/3*100) / 100
		out[in.UserID] = Score{
			R:            r,
			F:            f,
			M:            m,
			RFM:          rfm,
			Segment:      SegmentFor(rfm),
			ValueSegment: ValueSegmentFor(rfm),
		}
	}
	return out
}

// SegmentFor 按固定阈值把 RFM 分映射到分群标签。
func SegmentFor(score float64) string {
	switch {
	case score >= 4.5:
		return SegmentChampions
	case score >= 4.0:
		return SegmentLoyal
	case score >= 3.0:
		return SegmentPotential
	case score >= 2.0:
		return SegmentAtRisk
	default:
		return SegmentNeedsAttention
	}
}

// ValueSegmentFor 把 RFM 分映射到价值档位。
func ValueSegmentFor(score float64) string {
	switch {
	case score > 4.5:
		return "very_high"
	case score > 3:
		return "high"
	case score > 1.5:
		return "medium"
	default:
		return "low"
	}
}

// EngagementLevelFor 按会话数映射活跃档位。
func EngagementLevelFor(totalSessions int) string {
	switch {
	case totalSessions <= 0:
		return "new"
	case totalSessions <= 3:
		return "light"
	case totalSessions <= 10:
		return "medium"
	default:
		return "heavy"
	}
}

// quantileBuckets 基于秩做 q 分位分桶，返回每个元素的桶号 1..q。
// 相同取值恒得相同桶号：按该取值首次出现的秩定桶（重复分位边界塌缩，
// 等价于丢弃重复切点）；取值档位不足 q 档时自然塌缩到可达的桶号，不报错。
func quantileBuckets(values []float64, q int) []int {
	n := len(values)
	buckets := make([]int, n)
	if n == 0 || q <= 0 {
		return buckets
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	cur := 0
	for rank, idx := range order {
		if rank == 0 || values[idx] != values[order[rank-1]] {
			cur = rank*q/n + 1
			if cur > q {
				cur = q
			}
		}
		buckets[idx] = cur
	}
	return buckets
}
