package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeedDef 是 feed 定义文件中的一项。
type FeedDef struct {
	Name          string   `yaml:"name"`
	Kind          string   `yaml:"kind"` // catalog / price_capped / rental / blended
	Genders       []string `yaml:"genders"`
	Ceiling       float64  `yaml:"ceiling"`
	Ratio         *float64 `yaml:"ratio"`
	Market        string   `yaml:"market"`
	Rental        bool     `yaml:"rental"`
	ExcludeSeller string   `yaml:"exclude_seller"`
}

// FeedsFile 是 feed 定义文件的结构。
type FeedsFile struct {
	Feeds []FeedDef `yaml:"feeds"`
}

// DefaultFeeds 是内置的 feed：首页、女装、低价、租赁、二手。
func DefaultFeeds() []FeedDef {
	return []FeedDef{
		{Name: "home", Kind: "catalog"},
		{Name: "ai", Kind: "catalog", Genders: []string{"Women"}},
		{Name: "offers", Kind: "price_capped", Ceiling: 500},
		{Name: "rent", Kind: "blended", Market: "rent", Rental: true},
		{Name: "p2p", Kind: "blended", Genders: []string{"Men"}, Market: "p2p"},
	}
}

// ParseFeeds 解析 YAML 格式的 feed 定义。
func ParseFeeds(data []byte) ([]FeedDef, error) {
	var f FeedsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return f.Feeds, nil
}

// LoadFeeds 从 YAML 文件加载 feed 定义；path 为空时返回 DefaultFeeds。
func LoadFeeds(path string) ([]FeedDef, error) {
	if path == "" {
		return DefaultFeeds(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFeeds(data)
}

// Registry 加载 FeedsFile 中的 feed 并构建 Registry；混合 feed 未给出比例时使用 blend.ratio。
func (c *Config) Registry() (*Registry, error) {
	defs, err := LoadFeeds(c.FeedsFile)
	if err != nil {
		return nil, err
	}
	for i := range defs {
		if defs[i].Kind == "blended" && defs[i].Ratio == nil {
			r := c.Blend.Ratio
			defs[i].Ratio = &r
		}
	}
	return NewRegistry(defs)
}
