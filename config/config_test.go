package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rushteam/vitrine/core"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Currency.Rate != 0.055 || cfg.Pricing.RentalFraction != 0.2 {
		t.Errorf("pricing defaults = %+v %+v", cfg.Currency, cfg.Pricing)
	}
	if cfg.Overfetch.WarmMultiplier != 10 || cfg.Overfetch.ColdJitter != 1000 {
		t.Errorf("overfetch defaults = %+v", cfg.Overfetch)
	}
	if cfg.Preference.Window != 720*time.Hour {
		t.Errorf("preference window = %v", cfg.Preference.Window)
	}
	if len(cfg.Taxonomy.Allow) == 0 {
		t.Error("taxonomy allow list empty")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitrine.yaml")
	yml := `
currency:
  rate: 0.06
preference:
  window: 168h
taxonomy:
  allow: [Shirts, Jeans]
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VITRINE_OVERFETCH_WARM_JITTER", "42")
	t.Setenv("VITRINE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Currency.Rate != 0.06 {
		t.Errorf("rate = %v, want 0.06", cfg.Currency.Rate)
	}
	if cfg.Preference.Window != 168*time.Hour {
		t.Errorf("window = %v, want 168h", cfg.Preference.Window)
	}
	if len(cfg.Taxonomy.Allow) != 2 {
		t.Errorf("allow = %v", cfg.Taxonomy.Allow)
	}
	if cfg.Overfetch.WarmJitter != 42 {
		t.Errorf("warm jitter = %d, want 42 from env", cfg.Overfetch.WarmJitter)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadEnvSliceAndValidation(t *testing.T) {
	t.Setenv("VITRINE_TAXONOMY_ALLOW", "Shirts, Jeans ,Watches")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Taxonomy.Allow) != 3 || cfg.Taxonomy.Allow[1] != "Jeans" {
		t.Errorf("allow = %q", cfg.Taxonomy.Allow)
	}

	t.Setenv("VITRINE_BLEND_RATIO", "1.5")
	if _, err := Load(""); err == nil {
		t.Error("ratio 1.5 should fail validation")
	}
}

func TestEnvTransform(t *testing.T) {
	tests := map[string]string{
		"VITRINE_CURRENCY_RATE":         "currency.rate",
		"VITRINE_OVERFETCH_COLD_JITTER": "overfetch.cold_jitter",
		"VITRINE_FEEDS_FILE":            "feeds_file",
		"VITRINE_STORE_REDIS_ADDR":      "store.redis_addr",
	}
	for in, want := range tests {
		if got := envTransform(in); got != want {
			t.Errorf("envTransform(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegistry(t *testing.T) {
	cfg := Default()
	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	want := []string{"ai", "home", "offers", "p2p", "rent"}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("Names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names = %v, want %v", got, want)
		}
	}

	f, err := reg.Get("p2p")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, ok := f.(core.BlendedFeed)
	if !ok || b.Ratio != 0.7 || b.Market != core.MarketP2P {
		t.Errorf("p2p = %#v", f)
	}
	if _, err := reg.Get("nope"); !core.IsInvalidInput(err) {
		t.Errorf("unknown feed err = %v", err)
	}
}

func TestParseFeedsErrors(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"unknown kind", "feeds:\n  - {name: x, kind: magic}\n"},
		{"duplicate", "feeds:\n  - {name: x, kind: catalog}\n  - {name: x, kind: catalog}\n"},
		{"bad ceiling", "feeds:\n  - {name: x, kind: price_capped}\n"},
		{"bad market", "feeds:\n  - {name: x, kind: blended, ratio: 0.5, market: swap}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs, err := ParseFeeds([]byte(tt.yml))
			if err != nil {
				t.Fatalf("ParseFeeds: %v", err)
			}
			if _, err := NewRegistry(defs); err == nil {
				t.Error("NewRegistry should fail")
			}
		})
	}
}
