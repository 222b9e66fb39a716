// Package knn 提供向量总体上的精确最近邻检索。
//
// 设计要点：
//   - 暴力检索：总体是内存特征表规模，线性扫描即可，无 ANN 近似
//   - 不支持在线插入：总体变化必须整体重建（Fit），不做增量更新
//   - 平稳排序：相同分数按插入顺序保序，结果可复现
package knn

import (
	"math"
	"sort"

	"github.com/rushteam/persokit/core"
)

// Metric 是距离度量方式。
// cosine 适合高维稀疏的行为向量，euclidean 适合小而稠密的人群向量。
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
)

// Neighbor 是一个近邻结果。
// Similarity 统一为越大越近：cosine 即余弦相似度（1 − 余弦距离），
// euclidean 经 1/(1+d) 折算；Distance 保留原始距离便于解释。
type Neighbor struct {
	ID         string
	Similarity float64
	Distance   float64
}

// Index 是向量总体上的 KNN 索引。
type Index struct {
	metric  Metric
	schema  string
	ids     []string
	vectors [][]float64
	dim     int
	fitted  bool
}

// NewIndex 创建索引；metric 为空时默认 cosine。
func NewIndex(metric Metric) *Index {
	if metric == "" {
		metric = MetricCosine
	}
	return &Index{metric: metric}
}

// SetSchemaVersion 记录建库时的特征模式版本（与 Vectorizer.SchemaVersion 对应）。
func (ix *Index) SetSchemaVersion(v string) { ix.schema = v }

// SchemaVersion 返回建库时记录的特征模式版本。
func (ix *Index) SchemaVersion() string { return ix.schema }

// Metric 返回配置的距离度量。
func (ix *Index) Metric() Metric { return ix.metric }

// Size 返回总体规模。
func (ix *Index) Size() int { return len(ix.ids) }

// Fitted 返回索引是否已建好。
func (ix *Index) Fitted() bool { return ix.fitted }

// Fit 在 N 个向量上建库。N<2 返回 INSUFFICIENT_DATA，
// ids 与 vectors 长度不一致或维度不齐返回 INVALID_INPUT。
func (ix *Index) Fit(ids []string, vectors [][]float64) error {
	if len(vectors) < 2 {
		return core.NewDomainError(core.ModuleKNN, core.ErrorCodeInsufficientData,
			"knn fit: need at least 2 vectors")
	}
	if len(ids) != len(vectors) {
		return core.NewDomainError(core.ModuleKNN, core.ErrorCodeInvalidInput,
			"knn fit: ids and vectors length mismatch")
	}
	dim := len(vectors[0])
	for _, vec := range vectors {
		if len(vec) != dim {
			return core.NewDomainError(core.ModuleKNN, core.ErrorCodeInvalidInput,
				"knn fit: inconsistent vector dimensions")
		}
	}

	ix.ids = make([]string, len(ids))
	copy(ix.ids, ids)
	ix.vectors = make([][]float64, len(vectors))
	for i, vec := range vectors {
		cp := make([]float64, len(vec))
		copy(cp, vec)
		ix.vectors[i] = cp
	}
	ix.dim = dim
	ix.fitted = true
	return nil
}

// Query 返回至多 min(k, N-1) 个近邻，按相似度非递增排序，
// 相同分数按插入顺序保序；与查询向量完全相等的首个候选视为自身被排除。
func (ix *Index) Query(vector []float64, k int) ([]Neighbor, error) {
	return ix.query(vector, k, "")
}

// QueryByID 以库内某成员为查询点检索近邻（排除该成员自身）。
// 成员不存在返回 NOT_FOUND。
func (ix *Index) QueryByID(id string, k int) ([]Neighbor, error) {
	if !ix.fitted {
		return nil, core.NewDomainError(core.ModuleKNN, core.ErrorCodeModelNotTrained,
			"knn query: index has not been fitted")
	}
	for i, known := range ix.ids {
		if known == id {
			return ix.query(ix.vectors[i], k, id)
		}
	}
	return nil, core.NewDomainError(core.ModuleKNN, core.ErrorCodeNotFound,
		"knn query: unknown member id "+id)
}

func (ix *Index) query(vector []float64, k int, excludeID string) ([]Neighbor, error) {
	if !ix.fitted {
		return nil, core.NewDomainError(core.ModuleKNN, core.ErrorCodeModelNotTrained,
			"knn query: index has not been fitted")
	}
	if len(vector) != ix.dim {
		return nil, core.NewDomainError(core.ModuleKNN, core.ErrorCodeInvalidInput,
			"knn query: vector dimension mismatch")
	}
	if k <= 0 {
		k = 5
	}

	neighbors := make([]Neighbor, 0, len(ix.ids))
	selfSkipped := excludeID != "" // 按 ID 排除时不再做向量相等判定
	for i, candidate := range ix.vectors {
		if ix.ids[i] == excludeID && excludeID != "" {
			continue
		}
		if !selfSkipped && equalVectors(vector, candidate) {
			selfSkipped = true
			continue
		}
		var sim, dist float64
		switch ix.metric {
		case MetricEuclidean:
			dist = euclideanDistance(vector, candidate)
			sim = 1.0 / (1.0 + dist)
		default:
			sim = cosineSimilarity(vector, candidate)
			dist = 1 - sim
		}
		neighbors = append(neighbors, Neighbor{ID: ix.ids[i], Similarity: sim, Distance: dist})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})

	limit := k
	if max := len(ix.vectors) - 1; limit > max {
		limit = max
	}
	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}

func equalVectors(a, b []float64) bool {
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

// cosineSimilarity 计算余弦相似度；零向量相似度为 0。
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// euclideanDistance 计算欧氏距离。
func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
