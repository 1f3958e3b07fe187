// Package config defines the configuration structures shared across the engine.
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
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // mysql or sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"` // sqlite file path
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
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

// JiraConfig configures the ticket gateway adapter. Queue JQL fragments map the
// engine's logical queues (pending/approved/done) onto deployment-specific
// status labels.
type JiraConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	Username           string `mapstructure:"username"`
	APIToken           string `mapstructure:"api_token"`
	ProjectKey         string `mapstructure:"project_key"`
	PendingStatuses    string `mapstructure:"pending_statuses"`
	ApprovedStatuses   string `mapstructure:"approved_statuses"`
	DoneStatuses       string `mapstructure:"done_statuses"`
	ResolveTransition  string `mapstructure:"resolve_transition"`
	RequestEmailField  string `mapstructure:"request_email_field"`
	RequestTimeoutSecs int    `mapstructure:"request_timeout_secs"`
}

func (j *JiraConfig) RequestTimeout() time.Duration {
	if j.RequestTimeoutSecs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(j.RequestTimeoutSecs) * time.Second
}

// DirectoryConfig configures the external directory adapter and the
// snapshot cache in front of it.
type DirectoryConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	Token              string `mapstructure:"token"`
	SnapshotTTLMinutes int    `mapstructure:"snapshot_ttl_minutes"`
	RequestTimeoutSecs int    `mapstructure:"request_timeout_secs"`
}

func (d *DirectoryConfig) SnapshotTTL() time.Duration {
	if d.SnapshotTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(d.SnapshotTTLMinutes) * time.Minute
}

func (d *DirectoryConfig) RequestTimeout() time.Duration {
	if d.RequestTimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(d.RequestTimeoutSecs) * time.Second
}

// ReconcileConfig holds the drift scoring weights. The weights are policy
// knobs, not invariants; defaults are 10 per missing and 20 per extra group.
type ReconcileConfig struct {
	MissingWeight int `mapstructure:"missing_weight"`
	ExtraWeight   int `mapstructure:"extra_weight"`
}

type SchedulerConfig struct {
	Enabled                  bool `mapstructure:"enabled"`
	TicketSyncIntervalMins   int  `mapstructure:"ticket_sync_interval_mins"`
	DriftRecomputeHourUTC    int  `mapstructure:"drift_recompute_hour_utc"`
	DriftRecomputeConcurrent int  `mapstructure:"drift_recompute_concurrent"`
}
