// Package holiday 提供节日日历查询与节日→关键词映射。
// 日历通过 core.HolidayCalendar 注入引擎；配合可注入时钟，节日判定完全确定。
package holiday

import (
	"strings"
	"time"
)

// Calendar 是固定日期的节日日历实现（外加按规则推算的感恩节）。
type Calendar struct {
	fixed map[string]string // "MM-DD" → 节日名
}

// NewUS 创建美国常用节日日历。
func NewUS() *Calendar {
	return &Calendar{fixed: map[string]string{
		"01-01": "New Year's Day",
		"02-14": "Valentine's Day",
		"07-04": "Independence Day",
		"10-31": "Halloween",
		"12-25": "Christmas",
	}}
}

// NewCalendar 以自定义 "MM-DD"→名称 表创建日历。
func NewCalendar(dates map[string]string) *Calendar {
	fixed := make(map[string]string, len(dates))
	for k, v := range dates {
		fixed[k] = v
	}
	return &Calendar{fixed: fixed}
}

// HolidayName 实现 core.HolidayCalendar。
func (c *Calendar) HolidayName(t time.Time) (string, bool) {
	key := t.Format("01-02")
	if name, ok := c.fixed[key]; ok {
		return name, true
	}
	// 感恩节：11 月第 4 个星期四
	if t.Month() == time.November && t.Weekday() == time.Thursday {
		if (t.Day()-1)/7 == 3 {
			return "Thanksgiving", true
		}
	}
	return "", false
}

// keywordTable 是节日名到商品名关键词的映射。
var keywordTable = map[string][]string{
	"Christmas":       {"gifts", "decorations", "christmas"},
	"Thanksgiving":    {"turkey", "thanksgiving", "fall"},
	"Halloween":       {"costumes", "candy", "halloween"},
	"Valentine's Day": {"romance", "chocolate", "valentine"},
	"Easter":          {"easter", "candy", "spring"},
}

// keywordOrder 保证遍历顺序确定。
var keywordOrder = []string{"Christmas", "Thanksgiving", "Halloween", "Valentine's Day", "Easter"}

// Keywords 返回节日名匹配到的关键词表；未知节日返回 nil。
// 匹配为不区分大小写的包含关系（"Christmas Day" 也命中 "Christmas"）。
func Keywords(holidayName string) []string {
	lower := strings.ToLower(holidayName)
	for _, name := range keywordOrder {
		if strings.Contains(lower, strings.ToLower(name)) {
			return keywordTable[name]
		}
	}
	return nil
}

// MatchName 判断商品名是否命中任一关键词（不区分大小写）。
func MatchName(productName string, keywords []string) bool {
	lower := strings.ToLower(productName)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
