package dsl

import "testing"

func TestRule_EvalBool(t *testing.T) {
	user := map[string]any{
		"new_user":        true,
		"cart_abandoned":  false,
		"total_purchases": 6,
	}
	ctx := map[string]any{"time_of_day": "evening"}

	tests := []struct {
		expr string
		want bool
	}{
		{"", true}, // 空表达式恒为 true
		{"user.new_user", true},
		{"user.cart_abandoned", false},
		{"user.total_purchases > 5", true},
		{"user.total_purchases > 5 && ctx.time_of_day == 'evening'", true},
		{"ctx.time_of_day == 'morning'", false},
	}
	for _, tt := range tests {
		rule, err := Compile(tt.expr)
		if err != nil {
			t.Fatalf("Compile(%q) 失败: %v", tt.expr, err)
		}
		got, err := rule.EvalBool(user, ctx)
		if err != nil {
			t.Fatalf("EvalBool(%q) 失败: %v", tt.expr, err)
		}
		if got != tt.want {
			t.Errorf("EvalBool(%q) 期望 %v，实际 %v", tt.expr, tt.want, got)
		}
	}
}

func TestCompile_Invalid(t *testing.T) {
	if _, err := Compile("user.new_user &&"); err == nil {
		t.Error("残缺表达式期望编译报错")
	}
}

func TestEvalBool_NonBoolean(t *testing.T) {
	rule, err := Compile("user.total_purchases")
	if err != nil {
		t.Fatalf("Compile 失败: %v", err)
	}
	if _, err := rule.EvalBool(map[string]any{"total_purchases": 3}, nil); err == nil {
		t.Error("非布尔结果期望报错")
	}
}
