// Package dsl 提供基于 CEL (Common Expression Language) 的资格规则求值。
//
// 引擎用它判定个性化优惠的发放资格，规则以表达式形式配置：
//   - `user.new_user`                          → 新客欢迎折扣
//   - `user.cart_abandoned`                    → 购物车挽回折扣
//   - `user.total_purchases > 5 && ctx.time_of_day == "evening"`
//
// 变量：
//   - user：画像导出的 map（见 core.UserProfile.AsMap）
//   - ctx：请求上下文导出的 map（见 core.RecommendContext.AsMap）
//
// 注意：CEL 访问不存在的 key 会报错，检查存在性请用 user.key != null。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = cel.NewEnv(
			cel.Variable("user", cel.DynType),
			cel.Variable("ctx", cel.DynType),
		)
	})
	return celEnv, err
}

// Rule 是一条编译好的资格规则：编译一次，可并发多次求值。
type Rule struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。空表达式合法，求值恒为 true。
func Compile(expr string) (*Rule, error) {
	if expr == "" {
		return &Rule{}, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Rule{expr: expr, prg: prg}, nil
}

// Expr 返回规则的原始表达式。
func (r *Rule) Expr() string { return r.expr }

// EvalBool 对给定的用户/上下文求值，返回布尔结果。
// 表达式结果非布尔时报错。
func (r *Rule) EvalBool(user, ctx map[string]any) (bool, error) {
	if r.prg == nil {
		return true, nil
	}
	if user == nil {
		user = map[string]any{}
	}
	if ctx == nil {
		ctx = map[string]any{}
	}
	out, _, err := r.prg.Eval(map[string]any{"user": user, "ctx": ctx})
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", r.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return boolean, got %T", r.expr, out.Value())
	}
	return result, nil
}
