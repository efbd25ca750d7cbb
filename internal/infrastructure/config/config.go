package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/homechef-inc/mealsub/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Auth      sharedConfig.AuthConfig      `mapstructure:"auth"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Cache     sharedConfig.CacheConfig     `mapstructure:"cache"`
	Gateway   sharedConfig.GatewayConfig   `mapstructure:"gateway"`
	Platform  sharedConfig.PlatformConfig  `mapstructure:"platform"`
	Scheduler sharedConfig.SchedulerConfig `mapstructure:"scheduler"`
	Alert     sharedConfig.AlertConfig     `mapstructure:"alert"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// A missing config file is tolerated so the binary can run on env vars alone.
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("MEALSUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	switch cfg.Platform.RefundPolicy {
	case "refund_only", "credit_only", "customer_choice":
	default:
		return fmt.Errorf("unsupported refund policy %q", cfg.Platform.RefundPolicy)
	}
	if cfg.Platform.MonthlyRenewalDay < 1 || cfg.Platform.MonthlyRenewalDay > 28 {
		return fmt.Errorf("monthly_renewal_day must be between 1 and 28, got %d", cfg.Platform.MonthlyRenewalDay)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.timezone", "Asia/Kolkata")

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "mealsub_dev")
	v.SetDefault("database.path", "mealsub.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.issuer", "homechef")
	v.SetDefault("auth.jwt.admin_role", "admin")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.capacity_ttl", "10s")

	// Gateway defaults
	v.SetDefault("gateway.base_url", "https://api.gateway.local/v1")
	v.SetDefault("gateway.signature_header", "X-Gateway-Signature")
	v.SetDefault("gateway.currency", "INR")
	v.SetDefault("gateway.timeout", "10s")
	v.SetDefault("gateway.max_elapsed_time", "30s")
	v.SetDefault("gateway.retry_interval", "500ms")
	v.SetDefault("gateway.breaker_failures", 5)
	v.SetDefault("gateway.breaker_timeout", "30s")
	v.SetDefault("gateway.dedup_ttl", "24h")
	v.SetDefault("gateway.dedup_inflight_ttl", "2m")

	// Platform defaults
	v.SetDefault("platform.skip_cutoff_hours_before_slot", 12)
	v.SetDefault("platform.credit_expiry_days", 60)
	v.SetDefault("platform.weekly_renewal_day", "fri")
	v.SetDefault("platform.monthly_renewal_day", 25)
	v.SetDefault("platform.notice_hours", 24)
	v.SetDefault("platform.refund_policy", "customer_choice")
	v.SetDefault("platform.trial_days", 3)

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.worker_limit", 8)
	v.SetDefault("scheduler.fulfillment_retry_period", "5m")
	v.SetDefault("scheduler.credit_expiry_period", "1h")

	// Alert defaults
	v.SetDefault("alert.enabled", false)
	v.SetDefault("alert.smtp_host", "localhost")
	v.SetDefault("alert.smtp_port", 1025)
	v.SetDefault("alert.from_address", "billing-alerts@homechef.local")
	v.SetDefault("alert.from_name", "HomeChef Billing")
}
