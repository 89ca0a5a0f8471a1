package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/vitrine/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译好的布尔表达式，使用 CEL (Common Expression Language) 实现。
// 编译一次，可并发多次求值。
//
// 表达式语法（CEL 标准语法）：
//   - 字段：item.price > 0 / item.image != "" / item.gender == "Women"
//   - 类目：item.category in ["Shirts", "Jeans"]
//   - 标签：label.recall_source == "similar"
//   - 上下文：rctx.feed == "offers" && item.price < 500.0
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；空表达式恒为 true。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return &Program{}, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// MustCompile 与 Compile 相同，失败时 panic。用于包级默认规则。
func MustCompile(expr string) *Program {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Eval 对 item 求值，返回布尔结果。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p == nil || p.prg == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 对于不存在的 key，CEL 会返回错误
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = v.Value
	}

	p := it.Product
	var discounted any
	if p.DiscountedPrice != nil {
		discounted = *p.DiscountedPrice
	}
	item := map[string]any{
		"id":               it.ID,
		"score":            it.Score,
		"name":             p.Name,
		"brand":            p.Brand,
		"price":            p.Price,
		"discounted_price": discounted,
		"rating":           p.Rating,
		"gender":           p.Gender,
		"base_colour":      p.BaseColor,
		"category":         it.CategoryName(),
		"image":            p.Image,
		"is_listing":       it.IsListing(),
	}

	ctx := map[string]any{
		"user_id": "",
		"feed":    "",
		"page":    int64(0),
	}
	if rctx != nil {
		ctx["user_id"] = rctx.UserID
		ctx["feed"] = rctx.Provenance()
		ctx["page"] = int64(rctx.Page)
	}

	return map[string]any{
		"item":  item,
		"label": labels,
		"rctx":  ctx,
	}
}
