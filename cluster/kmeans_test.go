package cluster

import (
	"testing"

	"github.com/rushteam/persokit/core"
)

func TestFit_Errors(t *testing.T) {
	if _, err := Fit([][]float64{{1}}, 2); !core.IsInsufficientData(err) {
		t.Errorf("单向量期望 INSUFFICIENT_DATA，实际 %v", err)
	}
	if _, err := Fit([][]float64{{1}, {1, 2}}, 2); err == nil {
		t.Error("维度不齐期望报错")
	}
}

func TestFit_TwoClusters(t *testing.T) {
	vectors := [][]float64{{1}, {1.1}, {5}, {5.1}}
	m, err := Fit(vectors, 2)
	if err != nil {
		t.Fatalf("Fit 失败: %v", err)
	}
	if m.K != 2 {
		t.Fatalf("期望 2 簇，实际 %d", m.K)
	}
	// 两组向量应分属两簇
	if m.Assignments[0] != m.Assignments[1] {
		t.Errorf("1 与 1.1 应同簇：%v", m.Assignments)
	}
	if m.Assignments[2] != m.Assignments[3] {
		t.Errorf("5 与 5.1 应同簇：%v", m.Assignments)
	}
	if m.Assignments[0] == m.Assignments[2] {
		t.Errorf("两组不应同簇：%v", m.Assignments)
	}
	if m.Sizes[0]+m.Sizes[1] != 4 {
		t.Errorf("簇规模之和期望 4，实际 %v", m.Sizes)
	}

	// 新向量归属最近质心
	if got := m.Assign([]float64{4.9}); got != m.Assignments[2] {
		t.Errorf("4.9 期望归入高值簇 %d，实际 %d", m.Assignments[2], got)
	}
}

func TestFit_Deterministic(t *testing.T) {
	vectors := [][]float64{{1, 2}, {8, 9}, {1.2, 2.1}, {8.1, 9.2}, {0.9, 1.8}}
	m1, err := Fit(vectors, 2)
	if err != nil {
		t.Fatalf("Fit 失败: %v", err)
	}
	m2, err := Fit(vectors, 2)
	if err != nil {
		t.Fatalf("Fit 失败: %v", err)
	}
	for i := range m1.Assignments {
		if m1.Assignments[i] != m2.Assignments[i] {
			t.Fatalf("同输入两次聚类结果不一致：%v vs %v", m1.Assignments, m2.Assignments)
		}
	}
}

func TestFit_KClamp(t *testing.T) {
	m, err := Fit([][]float64{{1}, {2}, {3}}, 10)
	if err != nil {
		t.Fatalf("Fit 失败: %v", err)
	}
	if m.K > 2 {
		t.Errorf("k 应压到 N-1=2，实际 %d", m.K)
	}
}

func TestMostFrequent(t *testing.T) {
	m := &Model{K: 3, Sizes: []int{2, 5, 5}}
	// 并列取簇号较小者
	if got := m.MostFrequent(); got != 1 {
		t.Errorf("期望簇 1，实际 %d", got)
	}
}

func TestComputeStats(t *testing.T) {
	vectors := [][]float64{{1}, {1.1}, {5}, {5.1}}
	m, err := Fit(vectors, 2)
	if err != nil {
		t.Fatalf("Fit 失败: %v", err)
	}
	raw := []map[string]float64{
		{"sessions": 1}, {"sessions": 3}, {"sessions": 10}, {"sessions": 20},
	}
	stats := ComputeStats(m, raw, []string{"sessions"})
	if len(stats) != m.K {
		t.Fatalf("期望 %d 条统计，实际 %d", m.K, len(stats))
	}
	low := stats[m.Assignments[0]]
	if low.Means["sessions"] != 2 {
		t.Errorf("低值簇均值期望 2，实际 %v", low.Means["sessions"])
	}
	high := stats[m.Assignments[2]]
	if high.Means["sessions"] != 15 {
		t.Errorf("高值簇均值期望 15，实际 %v", high.Means["sessions"])
	}
}
