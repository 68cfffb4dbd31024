// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Tenancy   TenancyConfig   `koanf:"tenancy"`
	Bootstrap BootstrapConfig `koanf:"bootstrap"`
	Audit     AuditConfig     `koanf:"audit"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment" validate:"oneof=development staging production test"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"             validate:"gte=0,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"                validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns"     validate:"gte=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"            validate:"required"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath    string        `koanf:"private_key_path"    validate:"required"`
	PublicKeyPath     string        `koanf:"public_key_path"     validate:"required"`
	AccessTokenExpire time.Duration `koanf:"access_token_expire" validate:"gt=0"`
	Issuer            string        `koanf:"issuer"`
	Audience          string        `koanf:"audience"`
}

// RateLimitConfig budgets are per Window. Requests applies per client IP,
// TenantRequests is shared by every user of a tenant, and LoginRequests
// caps credential attempts per IP.
type RateLimitConfig struct {
	Requests       int           `koanf:"requests"        validate:"gte=1"`
	Window         time.Duration `koanf:"window"`
	Burst          int           `koanf:"burst"`
	TenantRequests int           `koanf:"tenant_requests" validate:"gte=1"`
	LoginRequests  int           `koanf:"login_requests"  validate:"gte=1"`
}

// TenancyConfig holds the plan and limits applied to newly registered
// tenants.
type TenancyConfig struct {
	DefaultPlan        string `koanf:"default_plan"         validate:"oneof=free pro enterprise"`
	DefaultMaxUsers    int    `koanf:"default_max_users"    validate:"gte=1"`
	DefaultMaxProjects int    `koanf:"default_max_projects" validate:"gte=1"`
}

// BootstrapConfig seeds a super_admin at startup when SuperAdminEmail is set.
type BootstrapConfig struct {
	SuperAdminEmail    string `koanf:"super_admin_email"    validate:"omitempty,email"`
	SuperAdminPassword string `koanf:"super_admin_password" validate:"omitempty,min=8"`
	SuperAdminName     string `koanf:"super_admin_name"`
}

type AuditConfig struct {
	Sink string `koanf:"sink" validate:"oneof=database log both none"`
}

type LogConfig struct {
	Level  string `koanf:"level"  validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"  validate:"gte=0,lte=1"`
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

var defaults = map[string]any{
	"app.name":        "multi-tenant-saas",
	"app.version":     "1.0.0",
	"app.environment": "development",

	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.read_timeout":     "30s",
	"server.write_timeout":    "30s",
	"server.idle_timeout":     "120s",
	"server.shutdown_timeout": "15s",

	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "1h",
	"database.conn_max_idle_time": "30m",

	"redis.pool_size":      10,
	"redis.min_idle_conns": 2,

	"jwt.access_token_expire": "24h",
	"jwt.issuer":              "multi-tenant-saas",
	"jwt.audience":            "multi-tenant-saas-api",
	"jwt.private_key_path":    "keys/private.pem",
	"jwt.public_key_path":     "keys/public.pem",

	"rate_limit.requests":        100,
	"rate_limit.window":          "1m",
	"rate_limit.burst":           20,
	"rate_limit.tenant_requests": 600,
	"rate_limit.login_requests":  10,

	"tenancy.default_plan":         "free",
	"tenancy.default_max_users":    5,
	"tenancy.default_max_projects": 3,

	"bootstrap.super_admin_name": "Super Admin",

	"audit.sink": "database",

	"log.level":  "info",
	"log.format": "json",

	"otel.enabled":      false,
	"otel.insecure":     true,
	"otel.sample_rate":  0.1,
	"otel.service_name": "multi-tenant-saas",
}

// envKeys maps the supported environment variables onto config paths.
// Variables not listed here are ignored.
var envKeys = map[string]string{
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"RATE_LIMIT_TENANT_REQUESTS":  "rate_limit.tenant_requests",
	"RATE_LIMIT_LOGIN_REQUESTS":   "rate_limit.login_requests",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"DEFAULT_PLAN":                "tenancy.default_plan",
	"DEFAULT_MAX_USERS":           "tenancy.default_max_users",
	"DEFAULT_MAX_PROJECTS":        "tenancy.default_max_projects",
	"SUPER_ADMIN_EMAIL":           "bootstrap.super_admin_email",
	"SUPER_ADMIN_PASSWORD":        "bootstrap.super_admin_password",
	"SUPER_ADMIN_NAME":            "bootstrap.super_admin_name",
	"AUDIT_SINK":                  "audit.sink",
}

// Load layers built-in defaults, the optional YAML file at path and the
// mapped environment variables, in that order, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("default %s: %w", key, err)
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", func(name string) string { return envKeys[name] }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var structValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})
	return v
}()

func (c *Config) validate() error {
	if err := structValidator.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if !errors.As(err, &fields) {
			return fmt.Errorf("validate config: %w", err)
		}
		msgs := make([]string, 0, len(fields))
		for _, fe := range fields {
			msgs = append(msgs, describeField(fe))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	if c.Bootstrap.SuperAdminEmail != "" && c.Bootstrap.SuperAdminPassword == "" {
		return errors.New("invalid config: SUPER_ADMIN_PASSWORD is required with SUPER_ADMIN_EMAIL")
	}
	if c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure {
		return errors.New("invalid config: OTEL_INSECURE must be false in production")
	}
	return nil
}

// describeField names the env var for a failing field when one exists,
// falling back to the dotted config path.
func describeField(fe validator.FieldError) string {
	path := strings.TrimPrefix(fe.Namespace(), "Config.")
	name := path
	for envName, key := range envKeys {
		if key == path {
			name = envName
			break
		}
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s fails %s=%s", name, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s fails %s", name, fe.Tag())
}
