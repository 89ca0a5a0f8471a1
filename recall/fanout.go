package recall

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/pipeline"
	"github.com/rushteam/vitrine/pkg/utils"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，按 Sources 顺序合并结果。
// 同 ID 保留优先级高的（索引更小），labels 合并。
type Fanout struct {
	Sources []Source
	Dedup   bool
	Timeout time.Duration // 每个召回源的超时时间

	// Critical 中的召回源失败时整个 Fanout 返回错误并取消其余召回源，
	// 其余召回源失败只返回空结果
	Critical []string

	// OnError 召回源失败时回调，可为空
	OnError func(source string, err error)
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) critical(name string) bool {
	for _, c := range n.Critical {
		if c == name {
			return true
		}
	}
	return false
}

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		results  = make([][]*core.Item, len(n.Sources))
		eg, gctx = errgroup.WithContext(ctx)
	)

	for i, src := range n.Sources {
		s := src
		priority := i // 优先级（索引越小优先级越高）

		eg.Go(func() error {
			recallCtx := gctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(gctx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				if n.OnError != nil {
					n.OnError(s.Name(), err)
				}
				if n.critical(s.Name()) {
					return err
				}
				// 超时或错误时返回空结果，不中断其他召回源
				return nil
			}

			// 记录召回来源 label，方便 explain / 观测
			for _, it := range items {
				it.PutLabel("recall_source", utils.Label{Value: s.Name(), Source: "recall"})
				it.PutLabel("recall_priority", utils.Label{Value: strconv.Itoa(priority), Source: "recall"})
			}

			mu.Lock()
			results[priority] = items
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []*core.Item
	for _, items := range results {
		all = append(all, items...)
	}
	if !n.Dedup {
		return all, nil
	}
	return dedup(all), nil
}

func dedup(all []*core.Item) []*core.Item {
	seen := make(map[string]*core.Item, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		if old, ok := seen[it.ID]; ok {
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			continue
		}
		seen[it.ID] = it
		out = append(out, it)
	}
	return out
}
