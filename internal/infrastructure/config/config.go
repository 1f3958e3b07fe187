package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/custos-grc/custos/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Jira      sharedConfig.JiraConfig      `mapstructure:"jira"`
	Directory sharedConfig.DirectoryConfig `mapstructure:"directory"`
	Reconcile sharedConfig.ReconcileConfig `mapstructure:"reconcile"`
	Scheduler sharedConfig.SchedulerConfig `mapstructure:"scheduler"`

	// Tenants lists the tenant IDs the scheduled jobs iterate over. API
	// callers always pass the tenant explicitly.
	Tenants []string `mapstructure:"tenants"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("CUSTOS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
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

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Database defaults
	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "custos_dev")
	viper.SetDefault("database.path", "custos.db")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Jira defaults (queue statuses map logical queues to tracker labels)
	viper.SetDefault("jira.base_url", "")
	viper.SetDefault("jira.project_key", "ACC")
	viper.SetDefault("jira.pending_statuses", "Open,Waiting for approval")
	viper.SetDefault("jira.approved_statuses", "Approved")
	viper.SetDefault("jira.done_statuses", "Done,Closed")
	viper.SetDefault("jira.resolve_transition", "Resolve")
	viper.SetDefault("jira.request_email_field", "customfield_10042")
	viper.SetDefault("jira.request_timeout_secs", 15)

	// Directory defaults
	viper.SetDefault("directory.base_url", "")
	viper.SetDefault("directory.snapshot_ttl_minutes", 15)
	viper.SetDefault("directory.request_timeout_secs", 10)

	// Reconcile defaults
	viper.SetDefault("reconcile.missing_weight", 10)
	viper.SetDefault("reconcile.extra_weight", 20)

	// Scheduler defaults
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.ticket_sync_interval_mins", 10)
	viper.SetDefault("scheduler.drift_recompute_hour_utc", 3)
	viper.SetDefault("scheduler.drift_recompute_concurrent", 4)

	viper.SetDefault("tenants", []string{"default"})
}
