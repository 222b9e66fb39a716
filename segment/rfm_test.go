package segment

import (
	"testing"
	"time"

	"github.com/rushteam/persokit/core"
)

func TestScorePopulation(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	daysAgo := func(d int) time.Time { return now.AddDate(0, 0, -d) }

	// 五个用户在三个维度上单调递增（E 最近/最频/最高消费）
	population := []Input{
		{UserID: "a", LastActive: daysAgo(5), Frequency: 1, Monetary: 10},
		{UserID: "b", LastActive: daysAgo(4), Frequency: 2, Monetary: 20},
		{UserID: "c", LastActive: daysAgo(3), Frequency: 3, Monetary: 30},
		{UserID: "d", LastActive: daysAgo(2), Frequency: 4, Monetary: 40},
		{UserID: "e", LastActive: daysAgo(1), Frequency: 5, Monetary: 50},
	}
	scores := ScorePopulation(now, population)
	if len(scores) != 5 {
		t.Fatalf("期望 5 条打分，实际 %d", len(scores))
	}

	tests := []struct {
		user    string
		r, f, m int
		rfm     float64
		segment string
	}{
		{"a", 1, 1, 1, 1.0, SegmentNeedsAttention},
		{"c", 3, 3, 3, 3.0, SegmentPotential},
		{"e", 5, 5, 5, 5.0, SegmentChampions},
	}
	for _, tt := range tests {
		sc := scores[tt.user]
		if sc.R != tt.r || sc.F != tt.f || sc.M != tt.m {
			t.Errorf("%s 期望 R/F/M=%d/%d/%d，实际 %d/%d/%d",
				tt.user, tt.r, tt.f, tt.m, sc.R, sc.F, sc.M)
		}
		if sc.RFM != tt.rfm {
			t.Errorf("%s 期望 RFM=%v，实际 %v", tt.user, tt.rfm, sc.RFM)
		}
		if sc.Segment != tt.segment {
			t.Errorf("%s 期望分群 %s，实际 %s", tt.user, tt.segment, sc.Segment)
		}
	}

	// 单调性：各维度全面占优的用户 RFM 分不低于被占优者
	if scores["e"].RFM < scores["a"].RFM {
		t.Error("全面占优用户的 RFM 分不应更低")
	}
}

func TestScorePopulation_ZeroLastActive(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	population := []Input{
		{UserID: "fresh", LastActive: now.AddDate(0, 0, -1), Frequency: 1, Monetary: 1},
		{UserID: "stale", Frequency: 1, Monetary: 1}, // 无活动时间视为最久远
	}
	scores := ScorePopulation(now, population)
	if scores["stale"].R >= scores["fresh"].R {
		t.Errorf("零活动时间应得最低 R 分：stale=%d fresh=%d",
			scores["stale"].R, scores["fresh"].R)
	}
}

func TestScorePopulation_IdenticalValues(t *testing.T) {
	// 退化分布：五个用户三维全部同值，必须塌缩进同一个桶、
	// 得到完全一致的打分与分群，而不是按下标摊开五个分位
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	active := now.AddDate(0, 0, -3)
	var population []Input
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		population = append(population, Input{UserID: id, LastActive: active, Frequency: 10, Monetary: 100})
	}

	scores := ScorePopulation(now, population)
	want := scores["a"]
	if want.R != 5 || want.F != 1 || want.M != 1 {
		t.Errorf("同值总体期望 R/F/M=5/1/1，实际 %d/%d/%d", want.R, want.F, want.M)
	}
	for _, id := range []string{"b", "c", "d", "e"} {
		if scores[id] != want {
			t.Errorf("同值用户 %s 打分应与 a 一致：%+v vs %+v", id, scores[id], want)
		}
	}
}

func TestScorePopulation_PartialTies(t *testing.T) {
	// 部分并列：同频次用户必须同 F 桶，并列组不拆桶
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	daysAgo := func(d int) time.Time { return now.AddDate(0, 0, -d) }
	population := []Input{
		{UserID: "a", LastActive: daysAgo(1), Frequency: 1, Monetary: 10},
		{UserID: "b", LastActive: daysAgo(2), Frequency: 1, Monetary: 20},
		{UserID: "c", LastActive: daysAgo(3), Frequency: 1, Monetary: 30},
		{UserID: "d", LastActive: daysAgo(4), Frequency: 5, Monetary: 40},
		{UserID: "e", LastActive: daysAgo(5), Frequency: 5, Monetary: 50},
	}
	scores := ScorePopulation(now, population)
	if scores["a"].F != scores["b"].F || scores["b"].F != scores["c"].F {
		t.Errorf("同频次用户 F 桶应一致：a=%d b=%d c=%d",
			scores["a"].F, scores["b"].F, scores["c"].F)
	}
	if scores["d"].F != scores["e"].F {
		t.Errorf("同频次用户 F 桶应一致：d=%d e=%d", scores["d"].F, scores["e"].F)
	}
	if scores["d"].F <= scores["a"].F {
		t.Errorf("高频次组的 F 桶应更高：d=%d a=%d", scores["d"].F, scores["a"].F)
	}
}

func TestScorePopulation_Empty(t *testing.T) {
	if got := ScorePopulation(time.Now(), nil); len(got) != 0 {
		t.Errorf("空总体期望空表，实际 %d 条", len(got))
	}
}

func TestSegmentFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{5.0, SegmentChampions},
		{4.5, SegmentChampions},
		{4.2, SegmentLoyal},
		{3.5, SegmentPotential},
		{2.5, SegmentAtRisk},
		{1.0, SegmentNeedsAttention},
	}
	for _, tt := range tests {
		if got := SegmentFor(tt.score); got != tt.want {
			t.Errorf("SegmentFor(%v) 期望 %s，实际 %s", tt.score, tt.want, got)
		}
	}
}

func TestValueSegmentFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{4.8, "very_high"},
		{3.5, "high"},
		{2.0, "medium"},
		{1.0, "low"},
	}
	for _, tt := range tests {
		if got := ValueSegmentFor(tt.score); got != tt.want {
			t.Errorf("ValueSegmentFor(%v) 期望 %s，实际 %s", tt.score, tt.want, got)
		}
	}
}

func TestEngagementLevelFor(t *testing.T) {
	tests := []struct {
		sessions int
		want     string
	}{
		{0, "new"},
		{2, "light"},
		{7, "medium"},
		{20, "heavy"},
	}
	for _, tt := range tests {
		if got := EngagementLevelFor(tt.sessions); got != tt.want {
			t.Errorf("EngagementLevelFor(%d) 期望 %s，实际 %s", tt.sessions, tt.want, got)
		}
	}
}

func TestBehavioralSegmentFor(t *testing.T) {
	tests := []struct {
		name    string
		profile *core.UserProfile
		want    string
	}{
		{"nil 画像", nil, BehavioralNewVisitor},
		{"零会话", &core.UserProfile{}, BehavioralNewVisitor},
		{"购买", &core.UserProfile{TotalSessions: 3, CommonSessionType: "purchase"}, BehavioralBuyer},
		{"弃购", &core.UserProfile{TotalSessions: 3, CommonSessionType: "cart_abandoned"}, BehavioralConsideration},
		{"加购", &core.UserProfile{TotalSessions: 3, CommonSessionType: "cart_added"}, BehavioralConsideration},
		{"浏览", &core.UserProfile{TotalSessions: 3, CommonSessionType: "browsing"}, BehavioralExplorer},
		{"其他", &core.UserProfile{TotalSessions: 3, CommonSessionType: "weird"}, BehavioralOther},
	}
	for _, tt := range tests {
		if got := BehavioralSegmentFor(tt.profile); got != tt.want {
			t.Errorf("%s: 期望 %s，实际 %s", tt.name, tt.want, got)
		}
	}
}
