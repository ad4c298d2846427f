package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig controls commission and the weekly invoicing cadence.
// Commission defaults here apply only when a store carries no rate of
// its own; the store record is the source of truth.
type BillingConfig struct {
	DefaultCommissionPercent float64 `mapstructure:"defaultCommissionPercent"`
	InvoiceWeekday           string  `mapstructure:"invoiceWeekday"`
	AggregationPageSize      int     `mapstructure:"aggregationPageSize"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DefaultCommissionPercent: 25,
		InvoiceWeekday:           "Monday",
		AggregationPageSize:      1000,
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/shipguard/config")
	v.AddConfigPath("/etc/shipguard")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SHIPGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.defaultCommissionPercent", defaults.DefaultCommissionPercent)
	v.SetDefault("billing.invoiceWeekday", defaults.InvoiceWeekday)
	v.SetDefault("billing.aggregationPageSize", defaults.AggregationPageSize)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

// NewStaticBillingConfigHolder wraps a fixed config with no file watch.
// Used in tests and one-shot tooling.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// Weekday resolves the configured invoicing weekday, defaulting to Monday
// on unrecognized values.
func (c BillingConfig) Weekday() time.Weekday {
	switch strings.ToLower(strings.TrimSpace(c.InvoiceWeekday)) {
	case "sunday":
		return time.Sunday
	case "monday":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.DefaultCommissionPercent <= 0 || cfg.DefaultCommissionPercent > 100 {
		return errors.New("billing.defaultCommissionPercent must be in (0, 100]")
	}
	if cfg.AggregationPageSize <= 0 {
		return errors.New("billing.aggregationPageSize must be positive")
	}
	return nil
}
