// Package config loads cadence settings from a YAML file and CADENCE_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/cadence/internal/halflife"
	"github.com/abhisek/cadence/internal/llm"
	"github.com/abhisek/cadence/internal/logging"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	fileName  = "cadence"
	envPrefix = "CADENCE"
)

// predictorKinds is every kind a config may name. The onnx kind is only
// registered in builds with the onnx tag; halflife.New reports that.
var predictorKinds = []string{
	halflife.KindHeuristic, halflife.KindNone, halflife.KindConstant,
	halflife.KindRegression, halflife.KindLLM, halflife.KindONNX,
}

type Config struct {
	DB        string          `yaml:"db,omitempty" mapstructure:"db"`
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`
	Predictor PredictorConfig `yaml:"predictor" mapstructure:"predictor"`
	LLM       llm.Settings    `yaml:"llm" mapstructure:"llm"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

type SchedulerConfig struct {
	Mode            string  `yaml:"mode" mapstructure:"mode"`
	Policy          string  `yaml:"policy" mapstructure:"policy"`
	Strict          bool    `yaml:"strict" mapstructure:"strict"`
	HardBelow       float64 `yaml:"hard_below" mapstructure:"hard_below"`
	EasyAtOrAbove   float64 `yaml:"easy_at_or_above" mapstructure:"easy_at_or_above"`
	MinIntervalDays float64 `yaml:"min_interval_days" mapstructure:"min_interval_days"`
}

type PredictorConfig struct {
	Kind         string        `yaml:"kind" mapstructure:"kind"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CacheSize    int64         `yaml:"cache_size" mapstructure:"cache_size"`
	ConstantDays float64       `yaml:"constant_days" mapstructure:"constant_days"`
	ONNX         ONNXConfig    `yaml:"onnx" mapstructure:"onnx"`
}

type ONNXConfig struct {
	ModelPath   string `yaml:"model_path" mapstructure:"model_path"`
	LibraryPath string `yaml:"library_path" mapstructure:"library_path"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

func DefaultConfig() *Config {
	sc := spacedrep.DefaultConfig()
	return &Config{
		Scheduler: SchedulerConfig{
			Mode:            string(sc.Mode),
			Policy:          string(sc.Policy),
			HardBelow:       sc.Thresholds.HardBelow,
			EasyAtOrAbove:   sc.Thresholds.EasyAtOrAbove,
			MinIntervalDays: sc.MinIntervalDays,
		},
		Predictor: PredictorConfig{
			Kind:         halflife.KindHeuristic,
			Timeout:      sc.PredictorTimeout,
			CacheSize:    halflife.DefaultCacheSize,
			ConstantDays: 3,
		},
		LLM: llm.DefaultSettings(),
		Log: LogConfig{Level: "warn", Format: "console"},
	}
}

// Path returns the default config file location.
func Path() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cadence", fileName+".yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cadence", fileName+".yaml")
}

// Load reads the config file at path, or searches the working directory and
// the user config directories when path is empty. A missing file is not an
// error. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fileName)
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "cadence"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "cadence"))
		}
	}

	// Defaults register every key so AutomaticEnv can override it.
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if path == "" || !os.IsNotExist(err) {
				return nil, goerr.Wrap(err, "read config", goerr.V("path", path))
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, goerr.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("db", d.DB)
	v.SetDefault("scheduler.mode", d.Scheduler.Mode)
	v.SetDefault("scheduler.policy", d.Scheduler.Policy)
	v.SetDefault("scheduler.strict", d.Scheduler.Strict)
	v.SetDefault("scheduler.hard_below", d.Scheduler.HardBelow)
	v.SetDefault("scheduler.easy_at_or_above", d.Scheduler.EasyAtOrAbove)
	v.SetDefault("scheduler.min_interval_days", d.Scheduler.MinIntervalDays)
	v.SetDefault("predictor.kind", d.Predictor.Kind)
	v.SetDefault("predictor.timeout", d.Predictor.Timeout)
	v.SetDefault("predictor.cache_size", d.Predictor.CacheSize)
	v.SetDefault("predictor.constant_days", d.Predictor.ConstantDays)
	v.SetDefault("predictor.onnx.model_path", d.Predictor.ONNX.ModelPath)
	v.SetDefault("predictor.onnx.library_path", d.Predictor.ONNX.LibraryPath)
	v.SetDefault("llm.vendor", string(d.LLM.Vendor))
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.retry.attempts", d.LLM.Retry.Attempts)
	v.SetDefault("llm.retry.base", d.LLM.Retry.Base)
	v.SetDefault("llm.retry.cap", d.LLM.Retry.Cap)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.SchedulerConfig().Validate(); err != nil {
		return fmt.Errorf("config: scheduler: %w", err)
	}
	if !slices.Contains(predictorKinds, c.Predictor.Kind) {
		return fmt.Errorf("config: predictor.kind %q is not one of %s",
			c.Predictor.Kind, strings.Join(predictorKinds, ", "))
	}
	if c.Predictor.CacheSize < 0 {
		return fmt.Errorf("config: predictor.cache_size must not be negative")
	}
	if c.Predictor.Kind == halflife.KindConstant && !halflife.Valid(c.Predictor.ConstantDays) {
		return fmt.Errorf("config: predictor.constant_days must be positive")
	}
	if c.Predictor.Kind == halflife.KindONNX && c.Predictor.ONNX.ModelPath == "" {
		return fmt.Errorf("config: predictor.onnx.model_path is required for the onnx predictor")
	}
	if c.LLM.Vendor != "" {
		// The key may still come from the vendor's own variable, so only
		// the vendor name and retry schedule are checked here.
		if !slices.Contains(llm.Vendors, c.LLM.Vendor) {
			return fmt.Errorf("config: llm.vendor %q is not known", c.LLM.Vendor)
		}
	}
	if err := c.LLM.Retry.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("config: log.format: %w", err)
	}
	return nil
}

// SchedulerConfig converts the scheduler and predictor settings to a
// spacedrep.Config.
func (c *Config) SchedulerConfig() spacedrep.Config {
	return spacedrep.Config{
		Mode:   spacedrep.Mode(c.Scheduler.Mode),
		Policy: spacedrep.Policy(c.Scheduler.Policy),
		Thresholds: spacedrep.Thresholds{
			HardBelow:     c.Scheduler.HardBelow,
			EasyAtOrAbove: c.Scheduler.EasyAtOrAbove,
		},
		Strict:           c.Scheduler.Strict,
		MinIntervalDays:  c.Scheduler.MinIntervalDays,
		PredictorTimeout: c.Predictor.Timeout,
	}
}

// PredictorOptions converts the predictor settings to halflife.Options. The
// caller fills in training samples and the LLM provider.
func (c *Config) PredictorOptions() halflife.Options {
	return halflife.Options{
		ConstantDays: c.Predictor.ConstantDays,
		ModelPath:    c.Predictor.ONNX.ModelPath,
		LibraryPath:  c.Predictor.ONNX.LibraryPath,
		CacheSize:    c.Predictor.CacheSize,
	}
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, goerr.Wrap(err, "encode config")
	}
	return out, nil
}

// Save writes the config as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	out, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return goerr.Wrap(err, "create config directory", goerr.V("path", path))
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return goerr.Wrap(err, "write config", goerr.V("path", path))
	}
	return nil
}
