package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/danielpatrickdp/knowledge-tracer/internal/tracker"
)

// Layered configuration: struct defaults, then an optional YAML file,
// then KT_-prefixed environment variables. ENV > file > defaults.

// #region types

// StoreConfig selects the state backend.
type StoreConfig struct {
	Backend string `koanf:"backend"` // "memory" | "sqlite"
	Path    string `koanf:"path"`    // sqlite file path
}

// Config is the full tool/service configuration.
type Config struct {
	Tracker tracker.Config `koanf:"tracker"`
	Store   StoreConfig    `koanf:"store"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tracker: tracker.DefaultConfig(),
		Store: StoreConfig{
			Backend: "memory",
			Path:    "knowledge_tracer.db",
		},
	}
}

// #endregion types

// #region load

// EnvPrefix namespaces environment overrides, e.g.
// KT_TRACKER_BKT_WEIGHT=0.7 sets tracker.bkt_weight.
const EnvPrefix = "KT_"

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "KT_CONFIG"

// defaultConfigPaths are searched in order; the first hit wins.
var defaultConfigPaths = []string{
	"knowledge_tracer.yaml",
	"knowledge_tracer.yml",
}

// Load assembles configuration from defaults, an optional YAML file, and
// environment variables, then validates the result.
func Load() (Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path (empty skips the
// file layer).
func LoadFile(path string) (Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Config{}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// envTransform maps KT_TRACKER_BKT_WEIGHT to tracker.bkt_weight: the
// first underscore after the prefix separates the section from the key.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(s, "_", 2)
	if len(parts) == 2 {
		return parts[0] + "." + parts[1]
	}
	return s
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// #endregion load

// #region validate

// Validate rejects configurations the tracker cannot run with. Weight
// sums get a small tolerance for YAML round-off.
func (c Config) Validate() error {
	t := c.Tracker

	if blend := t.BKTWeight + t.IRTWeight; math.Abs(blend-1) > 1e-6 {
		return fmt.Errorf("bkt_weight + irt_weight must sum to 1, got %.4f", blend)
	}
	if conf := t.StabilityWeight + t.TimeWeight + t.BoundaryWeight; math.Abs(conf-1) > 1e-6 {
		return fmt.Errorf("confidence weights must sum to 1, got %.4f", conf)
	}
	if t.MinConfidence < 0 || t.MaxConfidence > 1 || t.MinConfidence >= t.MaxConfidence {
		return fmt.Errorf("confidence clamp [%.2f, %.2f] is not a valid sub-range of [0,1]", t.MinConfidence, t.MaxConfidence)
	}
	if t.DefaultPrior <= 0 || t.DefaultPrior >= 1 {
		return fmt.Errorf("default_prior must lie inside (0,1), got %.4f", t.DefaultPrior)
	}
	switch t.Strategy {
	case "bayes_filter", "beta_bernoulli":
	default:
		return fmt.Errorf("unknown strategy %q", t.Strategy)
	}

	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("sqlite backend requires store.path")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	return nil
}

// #endregion validate
