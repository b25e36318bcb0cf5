package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，声明一行交互日志可用的变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("user", cel.StringType),
		cel.Variable("item", cel.StringType),
		cel.Variable("fields", cel.ListType(cel.StringType)),
		cel.Variable("line", cel.IntType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// LineFilter 是交互日志的行过滤器，使用 CEL (Common Expression Language) 实现。
// 表达式在构造时编译一次，之后每行只做求值。
//
// 可用变量：
//   - user：第一列，原始用户 ID
//   - item：第二列，原始物品 ID
//   - fields：整行按空白切分后的所有列（list(string)）
//   - line：行号，从 1 开始
//
// 示例：
//   - `size(fields) >= 3 && fields[2] != "0"` → 只保留第三列（如评分）非 0 的行
//   - `!user.startsWith("bot_")` → 过滤机器人用户
//   - `item in ["a", "b"]`
type LineFilter struct {
	expr string
	prg  cel.Program
}

// NewLineFilter 编译表达式。空表达式返回 nil，表示不过滤。
// 表达式的结果类型必须是 bool。
func NewLineFilter(expr string) (*LineFilter, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return bool, got %s", out)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &LineFilter{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式。
func (f *LineFilter) Expr() string {
	return f.expr
}

// Match 对一行求值。nil 过滤器接受所有行。
// fields 至少包含 user、item 两列，由调用方保证。
func (f *LineFilter) Match(fields []string, line int) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(map[string]any{
		"user":   fields[0],
		"item":   fields[1],
		"fields": fields,
		"line":   int64(line),
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}
