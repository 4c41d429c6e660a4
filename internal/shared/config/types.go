package config

import (
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the GORM dialect. Driver "sqlite" uses Path and ignores the
// network fields.
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
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

func (d *DatabaseConfig) IsSQLite() bool {
	return strings.EqualFold(d.Driver, "sqlite")
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PermissionConfig controls how user roles are expanded into permission strings.
type PermissionConfig struct {
	// UseDatabase stores casbin policies through the gorm adapter instead of the
	// built-in default policy set.
	UseDatabase bool          `mapstructure:"use_database"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

type LoaderConfig struct {
	// ResolveTimeout bounds a single component resolution. Zero disables the bound.
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`
}

type SyncConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Channel string `mapstructure:"channel"`
}

// RateLimitConfig allows Limit requests per client IP in each Window. A zero
// Limit disables the limiter.
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type FeaturesConfig struct {
	// Environment is the evaluation environment: development, staging or production.
	Environment string `mapstructure:"environment"`
	CatalogPath string `mapstructure:"catalog_path"`
	// AssetBaseURL prefixes the bundle URLs served for component locators.
	AssetBaseURL  string          `mapstructure:"asset_base_url"`
	Preload       bool            `mapstructure:"preload"`
	Loader        LoaderConfig    `mapstructure:"loader"`
	Sync          SyncConfig      `mapstructure:"sync"`
	LoadRateLimit RateLimitConfig `mapstructure:"load_rate_limit"`
}
