package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PipelineConfig tunes the medallion ETL pipeline at runtime. The file is
// optional; defaults keep a self-hosted install usable out of the box.
type PipelineConfig struct {
	RunInterval       time.Duration `mapstructure:"runInterval"`
	JobTimeout        time.Duration `mapstructure:"jobTimeout"`
	LoadBatchSize     int           `mapstructure:"loadBatchSize"`
	PromoteBatchSize  int           `mapstructure:"promoteBatchSize"`
	BrandMatchMinimum float64       `mapstructure:"brandMatchMinimum"`
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		RunInterval:       time.Minute,
		JobTimeout:        2 * time.Minute,
		LoadBatchSize:     500,
		PromoteBatchSize:  500,
		BrandMatchMinimum: 0.6,
	}
}

// PipelineConfigHolder exposes the current pipeline config and hot-reloads it
// when the backing file changes.
type PipelineConfigHolder struct {
	current atomic.Value // holds PipelineConfig
}

func NewPipelineConfigHolder(log *zap.Logger) (*PipelineConfigHolder, error) {
	log = log.Named("config.pipeline")

	v := viper.New()

	v.SetConfigName("pipeline")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/scout/config")
	v.AddConfigPath("/etc/scout")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPipelineConfig()
		v.SetDefault("pipeline.runInterval", defaults.RunInterval)
		v.SetDefault("pipeline.jobTimeout", defaults.JobTimeout)
		v.SetDefault("pipeline.loadBatchSize", defaults.LoadBatchSize)
		v.SetDefault("pipeline.promoteBatchSize", defaults.PromoteBatchSize)
		v.SetDefault("pipeline.brandMatchMinimum", defaults.BrandMatchMinimum)
	}

	var cfg PipelineConfig
	if err := v.UnmarshalKey("pipeline", &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if err := validatePipelineConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PipelineConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		var next PipelineConfig
		if err := v.UnmarshalKey("pipeline", &next); err != nil {
			log.Warn("pipeline config reload skipped", zap.Error(err))
			return
		}
		next = next.withDefaults()
		if err := validatePipelineConfig(next); err != nil {
			log.Warn("pipeline config reload skipped", zap.Error(err))
			return
		}
		holder.current.Store(next)
		log.Info("pipeline config reloaded")
	})

	return holder, nil
}

// Current returns the active pipeline config.
func (h *PipelineConfigHolder) Current() PipelineConfig {
	if h == nil {
		return DefaultPipelineConfig()
	}
	cfg, ok := h.current.Load().(PipelineConfig)
	if !ok {
		return DefaultPipelineConfig()
	}
	return cfg
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	defaults := DefaultPipelineConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LoadBatchSize <= 0 {
		c.LoadBatchSize = defaults.LoadBatchSize
	}
	if c.PromoteBatchSize <= 0 {
		c.PromoteBatchSize = defaults.PromoteBatchSize
	}
	if c.BrandMatchMinimum <= 0 {
		c.BrandMatchMinimum = defaults.BrandMatchMinimum
	}
	return c
}

func validatePipelineConfig(cfg PipelineConfig) error {
	if cfg.BrandMatchMinimum > 1 {
		return errors.New("pipeline.brandMatchMinimum must be <= 1")
	}
	return nil
}
