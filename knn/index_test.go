package knn

import (
	"math"
	"testing"

	"github.com/rushteam/persokit/core"
)

func TestIndex_FitErrors(t *testing.T) {
	ix := NewIndex(MetricCosine)
	if err := ix.Fit([]string{"a"}, [][]float64{{1, 0}}); !core.IsInsufficientData(err) {
		t.Errorf("单向量期望 INSUFFICIENT_DATA，实际 %v", err)
	}
	if err := ix.Fit([]string{"a"}, [][]float64{{1, 0}, {0, 1}}); err == nil {
		t.Error("ids/vectors 长度不齐期望报错")
	}
	if err := ix.Fit([]string{"a", "b"}, [][]float64{{1, 0}, {0, 1, 2}}); err == nil {
		t.Error("维度不齐期望报错")
	}
}

func TestIndex_QueryBeforeFit(t *testing.T) {
	ix := NewIndex(MetricCosine)
	if _, err := ix.Query([]float64{1, 0}, 3); !core.IsModelNotTrained(err) {
		t.Errorf("未 Fit 期望 MODEL_NOT_TRAINED，实际 %v", err)
	}
}

func TestIndex_CosineQuery(t *testing.T) {
	ix := NewIndex(MetricCosine)
	err := ix.Fit(
		[]string{"a", "b", "c"},
		[][]float64{{1, 0}, {0, 1}, {1, 1}},
	)
	if err != nil {
		t.Fatalf("Fit 失败: %v", err)
	}

	// 与 a 完全相等的查询向量：a 视为自身被排除
	got, err := ix.Query([]float64{1, 0}, 5)
	if err != nil {
		t.Fatalf("Query 失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个近邻（min(k, N-1)），实际 %d", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("期望顺序 [c b]，实际 [%s %s]", got[0].ID, got[1].ID)
	}
	if math.Abs(got[0].Similarity-1/math.Sqrt2) > 1e-9 {
		t.Errorf("c 的余弦相似度期望 %.4f，实际 %.4f", 1/math.Sqrt2, got[0].Similarity)
	}
}

func TestIndex_QueryByID(t *testing.T) {
	ix := NewIndex(MetricCosine)
	if err := ix.Fit(
		[]string{"a", "b", "c"},
		[][]float64{{1, 0}, {0, 1}, {1, 1}},
	); err != nil {
		t.Fatalf("Fit 失败: %v", err)
	}

	got, err := ix.QueryByID("a", 1)
	if err != nil {
		t.Fatalf("QueryByID 失败: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("期望 [c]，实际 %v", got)
	}
	for _, nb := range got {
		if nb.ID == "a" {
			t.Error("结果不应包含查询成员自身")
		}
	}

	if _, err := ix.QueryByID("ghost", 1); !core.IsNotFound(err) {
		t.Errorf("未知成员期望 NOT_FOUND，实际 %v", err)
	}
}

func TestIndex_EuclideanSimilarity(t *testing.T) {
	ix := NewIndex(MetricEuclidean)
	if err := ix.Fit([]string{"a", "b"}, [][]float64{{0}, {3}}); err != nil {
		t.Fatalf("Fit 失败: %v", err)
	}
	got, err := ix.Query([]float64{0}, 5)
	if err != nil {
		t.Fatalf("Query 失败: %v", err)
	}
	// d=3 → sim = 1/(1+3) = 0.25
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("期望 [b]，实际 %v", got)
	}
	if math.Abs(got[0].Similarity-0.25) > 1e-9 || math.Abs(got[0].Distance-3) > 1e-9 {
		t.Errorf("期望 sim=0.25 dist=3，实际 sim=%v dist=%v", got[0].Similarity, got[0].Distance)
	}
}

func TestIndex_StableTies(t *testing.T) {
	ix := NewIndex(MetricCosine)
	// b 与 c 对查询向量的相似度同为 0，按插入顺序保序
	if err := ix.Fit(
		[]string{"a", "b", "c"},
		[][]float64{{1, 0}, {0, 1}, {0, 2}},
	); err != nil {
		t.Fatalf("Fit 失败: %v", err)
	}
	got, err := ix.Query([]float64{2, 0}, 5)
	if err != nil {
		t.Fatalf("Query 失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个近邻，实际 %d", len(got))
	}
	if got[0].ID != "a" {
		t.Errorf("非等值向量不触发自排除，期望首位 a，实际 %s", got[0].ID)
	}
	if got[1].ID != "b" {
		t.Errorf("同分按插入顺序，期望次位 b，实际 %s", got[1].ID)
	}
}

func TestIndex_DefaultK(t *testing.T) {
	ix := NewIndex(MetricCosine)
	vectors := [][]float64{{1, 0}, {0, 1}, {1, 1}, {2, 1}, {1, 2}, {3, 1}, {1, 3}}
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	if err := ix.Fit(ids, vectors); err != nil {
		t.Fatalf("Fit 失败: %v", err)
	}
	got, err := ix.Query([]float64{9, 9}, 0)
	if err != nil {
		t.Fatalf("Query 失败: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("k<=0 期望默认 5 个近邻，实际 %d", len(got))
	}
}
