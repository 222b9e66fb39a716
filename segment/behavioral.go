package segment

import "github.com/rushteam/persokit/core"

// 行为分群标签（交易历史缺失时的独立分群，按主导会话类型推导）。
const (
	BehavioralNewVisitor    = "New Visitor"
	BehavioralBuyer         = "Buyer"
	BehavioralConsideration = "Consideration"
	BehavioralExplorer      = "Explorer"
	BehavioralOther         = "Other"
)

// BehavioralSegmentFor 按主导会话类型推导行为分群。
func BehavioralSegmentFor(p *core.UserProfile) string {
	if p == nil || p.TotalSessions == 0 {
		return BehavioralNewVisitor
	}
	switch p.CommonSessionType {
	case "purchase":
		return BehavioralBuyer
	case "cart_added", "cart_abandoned":
		return BehavioralConsideration
	case "browsing":
		return BehavioralExplorer
	default:
		return BehavioralOther
	}
}
