package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/vitrine/core"
)

// FeedBuilder 根据 feed 定义构建 FeedContext。
// 各种 feed 在 init 中调用 RegisterKind(kind, builder) 即可被配置驱动。
type FeedBuilder func(def FeedDef) (core.FeedContext, error)

var (
	defaultBuilders   = make(map[core.FeedKind]FeedBuilder)
	defaultBuildersMu sync.RWMutex
)

// RegisterKind 注册一种 feed 的构建逻辑。
func RegisterKind(kind core.FeedKind, builder FeedBuilder) {
	if kind == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[kind] = builder
}

// SupportedKinds 返回当前已注册的 feed 类型（排序），用于错误提示与校验。
func SupportedKinds() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	kinds := make([]string, 0, len(defaultBuilders))
	for k := range defaultBuilders {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return kinds
}

func builderFor(kind core.FeedKind) (FeedBuilder, bool) {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	b, ok := defaultBuilders[kind]
	return b, ok
}

func init() {
	RegisterKind(core.FeedCatalog, func(d FeedDef) (core.FeedContext, error) {
		return core.CatalogFeed{Name: d.Name, Genders: d.Genders}, nil
	})
	RegisterKind(core.FeedPriceCapped, func(d FeedDef) (core.FeedContext, error) {
		return core.PriceCappedFeed{Name: d.Name, Genders: d.Genders, Ceiling: d.Ceiling}, nil
	})
	RegisterKind(core.FeedRental, func(d FeedDef) (core.FeedContext, error) {
		return core.RentalFeed{Name: d.Name, Genders: d.Genders}, nil
	})
	RegisterKind(core.FeedBlended, func(d FeedDef) (core.FeedContext, error) {
		ratio := 0.7
		if d.Ratio != nil {
			ratio = *d.Ratio
		}
		return core.BlendedFeed{
			Name:          d.Name,
			Genders:       d.Genders,
			Ratio:         ratio,
			Market:        core.Market(d.Market),
			Rental:        d.Rental,
			ExcludeSeller: d.ExcludeSeller,
		}, nil
	})
}

// Registry 是按名字索引的 feed 集合，构建后只读。
type Registry struct {
	feeds map[string]core.FeedContext
	names []string
}

// NewRegistry 构建并校验所有 feed；类型未注册、重名或参数不合法时返回错误。
func NewRegistry(defs []FeedDef) (*Registry, error) {
	r := &Registry{feeds: make(map[string]core.FeedContext, len(defs))}
	for _, d := range defs {
		b, ok := builderFor(core.FeedKind(d.Kind))
		if !ok {
			return nil, fmt.Errorf("feed %q: unsupported kind %q (supported: %v)", d.Name, d.Kind, SupportedKinds())
		}
		if _, dup := r.feeds[d.Name]; dup {
			return nil, fmt.Errorf("feed %q: duplicate name", d.Name)
		}
		f, err := b(d)
		if err != nil {
			return nil, fmt.Errorf("feed %q: %w", d.Name, err)
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("feed %q: %w", d.Name, err)
		}
		r.feeds[d.Name] = f
		r.names = append(r.names, d.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Get 按名字查找 feed，不存在时返回 INVALID_INPUT。
func (r *Registry) Get(name string) (core.FeedContext, error) {
	f, ok := r.feeds[name]
	if !ok {
		return nil, core.InvalidInput(core.ModuleEngine, fmt.Sprintf("unknown feed %q", name))
	}
	return f, nil
}

// Names 返回全部 feed 名（排序）。
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
