package filter

import (
	"context"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pkg/dsl"
)

// DefaultAdmissionRule 要求商品有图且价格为正。
const DefaultAdmissionRule = `item.image != "" && item.price > 0.0`

// ExprFilter 是表达式准入过滤器：表达式为 false 的物品被剔除。
type ExprFilter struct {
	Program *dsl.Program
}

// NewExprFilter 编译准入规则；rule 为空时使用 DefaultAdmissionRule。
func NewExprFilter(rule string) (*ExprFilter, error) {
	if rule == "" {
		rule = DefaultAdmissionRule
	}
	prg, err := dsl.Compile(rule)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Program: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	ok, err := f.Program.Eval(item, rctx)
	if err != nil {
		return true, err
	}
	return !ok, nil
}
