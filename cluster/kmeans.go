// Package cluster 提供行为特征上的确定性 k-means 聚类。
//
// 用途是冷启动第三级信号：最高频簇的聚合统计作为弱先验。
// 初始质心取插入顺序上前 k 个互异向量，不引入随机源，结果可复现。
package cluster

import (
	"math"

	"github.com/rushteam/persokit/core"
)

// Model 是一次聚类的不可变产物。
type Model struct {
	K           int
	Centroids   [][]float64
	Assignments []int // 与输入向量下标对齐
	Sizes       []int // 每簇成员数
}

// Stats 是单个簇的聚合统计（字段含义由调用方的特征表决定）。
type Stats struct {
	Cluster int
	Size    int
	Means   map[string]float64
}

const maxIterations = 100

// Fit 在 N 个向量上聚 k 簇。
// N<2 返回 INSUFFICIENT_DATA；k 自动压到不超过 N-1。
func Fit(vectors [][]float64, k int) (*Model, error) {
	n := len(vectors)
	if n < 2 {
		return nil, core.NewDomainError(core.ModuleCluster, core.ErrorCodeInsufficientData,
			"kmeans fit: need at least 2 vectors")
	}
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}
	dim := len(vectors[0])
	for _, vec := range vectors {
		if len(vec) != dim {
			return nil, core.NewDomainError(core.ModuleCluster, core.ErrorCodeInvalidInput,
				"kmeans fit: inconsistent vector dimensions")
		}
	}

	centroids := initialCentroids(vectors, k)
	k = len(centroids) // 互异向量不足 k 个时收缩

	assignments := make([]int, n)
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, vec := range vectors {
			c := nearestCentroid(vec, centroids)
			if c != assignments[i] {
				assignments[i] = c
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// 重算质心；空簇保留原质心
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, vec := range vectors {
			c := assignments[i]
			counts[c]++
			for d, v := range vec {
				sums[c][d] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for d := range centroids[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	sizes := make([]int, k)
	for _, c := range assignments {
		sizes[c]++
	}
	return &Model{K: k, Centroids: centroids, Assignments: assignments, Sizes: sizes}, nil
}

// MostFrequent 返回成员最多的簇号；并列取簇号较小者。
func (m *Model) MostFrequent() int {
	best := 0
	for c, size := range m.Sizes {
		if size > m.Sizes[best] {
			best = c
		}
	}
	return best
}

// Assign 返回向量最近的簇号。
func (m *Model) Assign(vec []float64) int {
	return nearestCentroid(vec, m.Centroids)
}

// ComputeStats 基于原始（未缩放）特征计算每簇均值统计。
// raw 与聚类输入向量下标对齐；fields 决定统计哪些列。
func ComputeStats(m *Model, raw []map[string]float64, fields []string) []Stats {
	stats := make([]Stats, m.K)
	for c := range stats {
		stats[c] = Stats{Cluster: c, Size: m.Sizes[c], Means: make(map[string]float64, len(fields))}
	}
	if len(raw) != len(m.Assignments) {
		return stats
	}
	sums := make([]map[string]float64, m.K)
	for c := range sums {
		sums[c] = make(map[string]float64, len(fields))
	}
	for i, rec := range raw {
		c := m.Assignments[i]
		for _, f := range fields {
			sums[c][f] += rec[f]
		}
	}
	for c := range stats {
		if m.Sizes[c] == 0 {
			continue
		}
		for _, f := range fields {
			stats[c].Means[f] = sums[c][f] / float64(m.Sizes[c])
		}
	}
	return stats
}

// initialCentroids 取插入顺序上前 k 个互异向量作为初始质心。
func initialCentroids(vectors [][]float64, k int) [][]float64 {
	centroids := make([][]float64, 0, k)
	for _, vec := range vectors {
		dup := false
		for _, c := range centroids {
			if equalVec(c, vec) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		cp := make([]float64, len(vec))
		copy(cp, vec)
		centroids = append(centroids, cp)
		if len(centroids) == k {
			break
		}
	}
	return centroids
}

// nearestCentroid 返回最近质心下标；等距取下标较小者。
func nearestCentroid(vec []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.MaxFloat64
	for c, centroid := range centroids {
		var sum float64
		for d := range vec {
			diff := vec[d] - centroid[d]
			sum += diff * diff
		}
		if sum < bestDist {
			bestDist = sum
			best = c
		}
	}
	return best
}

func equalVec(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
