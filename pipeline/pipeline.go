package pipeline

import (
	"context"
	"time"

	"github.com/rushteam/vitrine/core"
)

// Hook 在每个 Node 执行后被调用，用于打点/日志。
type Hook func(node Node, in, out int, elapsed time.Duration, err error)

// Pipeline 把取数逻辑拆成可组合的 Node 链：Recall → Filter → Rank → ReRank → PostProcess。
type Pipeline struct {
	Nodes []Node
	Hooks []Hook
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		for _, h := range p.Hooks {
			h(node, len(cur), len(next), time.Since(start), err)
		}
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
