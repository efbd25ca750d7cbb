package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Timezone       string   `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the store. Driver is "mysql" in production and
// "sqlite" for local development; Path is only read by sqlite.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	Issuer    string `mapstructure:"issuer"`
	AdminRole string `mapstructure:"admin_role"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig configures the outbound payment gateway client and the
// inbound webhook verifier.
// CacheConfig tunes the per-process caches. Their entries are not
// invalidated across instances, so the TTL is the staleness bound.
type CacheConfig struct {
	CapacityTTL time.Duration `mapstructure:"capacity_ttl"`
}

type GatewayConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	KeyID           string        `mapstructure:"key_id"`
	KeySecret       string        `mapstructure:"key_secret"`
	WebhookSecret   string        `mapstructure:"webhook_secret"`
	SignatureHeader string        `mapstructure:"signature_header"`
	Currency        string        `mapstructure:"currency"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
	DedupTTL        time.Duration `mapstructure:"dedup_ttl"`
	DedupInFlight   time.Duration `mapstructure:"dedup_inflight_ttl"`
}

// PlatformConfig holds the default platform settings. Rows in the
// platform_settings table override these values at read time.
type PlatformConfig struct {
	SkipCutoffHoursBeforeSlot int    `mapstructure:"skip_cutoff_hours_before_slot"`
	CreditExpiryDays          int    `mapstructure:"credit_expiry_days"`
	WeeklyRenewalDay          string `mapstructure:"weekly_renewal_day"`
	MonthlyRenewalDay         int    `mapstructure:"monthly_renewal_day"`
	NoticeHours               int    `mapstructure:"notice_hours"`
	RefundPolicy              string `mapstructure:"refund_policy"`
	TrialDays                 int    `mapstructure:"trial_days"`
}

type SchedulerConfig struct {
	Enabled                bool          `mapstructure:"enabled"`
	WorkerLimit            int           `mapstructure:"worker_limit"`
	FulfillmentRetryPeriod time.Duration `mapstructure:"fulfillment_retry_period"`
	CreditExpiryPeriod     time.Duration `mapstructure:"credit_expiry_period"`
}

// AlertConfig configures the SMTP channel used to notify operators about
// payments whose fulfillment did not complete.
type AlertConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	SMTPHost     string   `mapstructure:"smtp_host"`
	SMTPPort     int      `mapstructure:"smtp_port"`
	SMTPUser     string   `mapstructure:"smtp_user"`
	SMTPPassword string   `mapstructure:"smtp_password"`
	FromAddress  string   `mapstructure:"from_address"`
	FromName     string   `mapstructure:"from_name"`
	Recipients   []string `mapstructure:"recipients"`
}
