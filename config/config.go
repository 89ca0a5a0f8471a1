// Package config 加载引擎配置（默认值 → YAML 文件 → 环境变量）与 feed 定义。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/vitrine/filter"
	"github.com/rushteam/vitrine/price"
)

// EnvPrefix 是环境变量前缀：VITRINE_CURRENCY_RATE → currency.rate
const EnvPrefix = "VITRINE_"

type Config struct {
	Currency   CurrencyConfig   `koanf:"currency"`
	Pricing    PricingConfig    `koanf:"pricing"`
	Taxonomy   TaxonomyConfig   `koanf:"taxonomy"`
	Overfetch  OverfetchConfig  `koanf:"overfetch"`
	Preference PreferenceConfig `koanf:"preference"`
	Blend      BlendConfig      `koanf:"blend"`
	Engine     EngineConfig     `koanf:"engine"`
	Admission  AdmissionConfig  `koanf:"admission"`
	Store      StoreConfig      `koanf:"store"`
	Breaker    BreakerConfig    `koanf:"breaker"`
	Recorder   RecorderConfig   `koanf:"recorder"`
	Server     ServerConfig     `koanf:"server"`
	Log        LogConfig        `koanf:"log"`

	// FeedsFile 是 feed 定义文件，为空时使用内置 feed
	FeedsFile string `koanf:"feeds_file"`
}

type CurrencyConfig struct {
	Rate float64 `koanf:"rate" validate:"gt=0"`
}

type PricingConfig struct {
	RentalFraction float64 `koanf:"rental_fraction" validate:"gt=0,lte=1"`
}

type TaxonomyConfig struct {
	Allow []string `koanf:"allow" validate:"omitempty,dive,required"`
}

type OverfetchConfig struct {
	WarmMultiplier  int `koanf:"warm_multiplier" validate:"gte=1"`
	WarmJitter      int `koanf:"warm_jitter" validate:"gte=0"`
	ColdMultiplier  int `koanf:"cold_multiplier" validate:"gte=1"`
	ColdJitter      int `koanf:"cold_jitter" validate:"gte=0"`
	PlainMultiplier int `koanf:"plain_multiplier" validate:"gte=1"`
}

type PreferenceConfig struct {
	Window       time.Duration `koanf:"window" validate:"gt=0"`
	TopPurchases int           `koanf:"top_purchases" validate:"gte=1"`
}

type BlendConfig struct {
	Ratio float64 `koanf:"ratio" validate:"gte=0,lte=1"`
}

type EngineConfig struct {
	Timeout     time.Duration `koanf:"timeout" validate:"gte=0"`
	ShuffleHead int           `koanf:"shuffle_head" validate:"gte=1"`
}

type AdmissionConfig struct {
	Rule string `koanf:"rule"`
}

type StoreConfig struct {
	// Catalog 是 SQLite 目录路径，":memory:" 为内存库
	Catalog string `koanf:"catalog" validate:"required"`

	// KV 为 "memory" 或 "redis"
	KV            string `koanf:"kv" validate:"oneof=memory redis"`
	RedisAddr     string `koanf:"redis_addr" validate:"required_if=KV redis"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"gte=0"`
	KeyPrefix     string `koanf:"key_prefix"`
}

type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gte=0,lte=1"`
}

type RecorderConfig struct {
	Buffer  int           `koanf:"buffer" validate:"gte=1"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxPageSize     int           `koanf:"max_page_size" validate:"gte=1"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default 返回默认配置。
func Default() *Config {
	return &Config{
		Currency: CurrencyConfig{Rate: price.DefaultRate},
		Pricing:  PricingConfig{RentalFraction: price.DefaultRentalFraction},
		Taxonomy: TaxonomyConfig{Allow: filter.DefaultAllowList()},
		Overfetch: OverfetchConfig{
			WarmMultiplier:  10,
			WarmJitter:      500,
			ColdMultiplier:  8,
			ColdJitter:      1000,
			PlainMultiplier: 5,
		},
		Preference: PreferenceConfig{Window: 30 * 24 * time.Hour, TopPurchases: 3},
		Blend:      BlendConfig{Ratio: 0.7},
		Engine:     EngineConfig{Timeout: 3 * time.Second, ShuffleHead: 5},
		Admission:  AdmissionConfig{Rule: filter.DefaultAdmissionRule},
		Store:      StoreConfig{Catalog: "vitrine.db", KV: "memory"},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
		},
		Recorder: RecorderConfig{Buffer: 256, Timeout: 2 * time.Second},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxPageSize:     100,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// sliceConfigPaths 中的 key 从环境变量读入时按逗号拆分
var sliceConfigPaths = []string{"taxonomy.allow"}

// Load 依次加载默认值、可选的 YAML 文件（path 为空时跳过）与 VITRINE_* 环境变量，然后校验。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envTransform 把 VITRINE_OVERFETCH_WARM_JITTER 映射为 overfetch.warm_jitter：
// 第一个下划线分隔段落，其余保留在 key 中。
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	if section == "feeds" && rest == "file" {
		return "feeds_file"
	}
	return section + "." + rest
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验配置。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
