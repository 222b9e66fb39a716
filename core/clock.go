package core

import "time"

// Clock 是可注入的时间源：时段、周末、节日判定都经由它，测试可完全确定。
type Clock interface {
	Now() time.Time
}

// SystemClock 使用系统时间。
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock 固定返回同一时间，测试/回放用。
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// HolidayCalendar 是节日日历查询接口（日期 → 节日名）。
type HolidayCalendar interface {
	// HolidayName 返回日期对应的节日名；非节日返回 ("", false)
	HolidayName(t time.Time) (string, bool)
}

// IsWeekend 判断是否周末（周六/周日）。
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
