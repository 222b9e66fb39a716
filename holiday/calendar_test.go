package holiday

import (
	"testing"
	"time"
)

func TestCalendar_HolidayName(t *testing.T) {
	cal := NewUS()
	tests := []struct {
		date string
		want string
		ok   bool
	}{
		{"2026-12-25", "Christmas", true},
		{"2026-01-01", "New Year's Day", true},
		{"2026-10-31", "Halloween", true},
		{"2026-11-26", "Thanksgiving", true}, // 2026 年 11 月第 4 个星期四
		{"2026-11-19", "", false},            // 第 3 个星期四不是感恩节
		{"2026-06-15", "", false},
	}
	for _, tt := range tests {
		day, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatal(err)
		}
		name, ok := cal.HolidayName(day)
		if ok != tt.ok || name != tt.want {
			t.Errorf("%s 期望 (%q,%v)，实际 (%q,%v)", tt.date, tt.want, tt.ok, name, ok)
		}
	}
}

func TestCalendar_Custom(t *testing.T) {
	cal := NewCalendar(map[string]string{"06-18": "Mid-Year Sale"})
	day := time.Date(2026, 6, 18, 10, 0, 0, 0, time.UTC)
	name, ok := cal.HolidayName(day)
	if !ok || name != "Mid-Year Sale" {
		t.Errorf("自定义日历期望命中，实际 (%q,%v)", name, ok)
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		holiday string
		wantLen int
	}{
		{"Christmas", 3},
		{"Christmas Day", 3}, // 包含匹配
		{"Thanksgiving", 3},
		{"Arbor Day", 0}, // 未知节日
	}
	for _, tt := range tests {
		got := Keywords(tt.holiday)
		if len(got) != tt.wantLen {
			t.Errorf("Keywords(%q) 期望 %d 个关键词，实际 %v", tt.holiday, tt.wantLen, got)
		}
	}
}

func TestMatchName(t *testing.T) {
	keywords := Keywords("Christmas")
	tests := []struct {
		product string
		want    bool
	}{
		{"Christmas Sweater", true}, // 大小写不敏感
		{"Holiday Gifts Box", true},
		{"Plain T-Shirt", false},
	}
	for _, tt := range tests {
		if got := MatchName(tt.product, keywords); got != tt.want {
			t.Errorf("MatchName(%q) 期望 %v，实际 %v", tt.product, tt.want, got)
		}
	}
}
