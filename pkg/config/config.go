package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Gateway      GatewayConfig
	PubSub       PubSubConfig
	GCP          GCPConfig
	Admin        AdminConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GLOOVA_APP_ENV" default:"dev"`
	Port         string `envconfig:"GLOOVA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GLOOVA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GLOOVA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig describes the profile store connection. A missing DSN is not an
// error: the service degrades to demo mode and serves from the local cache.
type DBConfig struct {
	DSN    string `envconfig:"GLOOVA_DB_DSN"`
	Driver string `envconfig:"GLOOVA_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"GLOOVA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GLOOVA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GLOOVA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GLOOVA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// Configured reports whether a remote profile store was provided at all.
func (db DBConfig) Configured() bool {
	return strings.TrimSpace(db.DSN) != ""
}

type RedisConfig struct {
	URL          string        `envconfig:"GLOOVA_REDIS_URL"`
	Address      string        `envconfig:"GLOOVA_REDIS_ADDR"`
	Password     string        `envconfig:"GLOOVA_REDIS_PASSWORD"`
	DB           int           `envconfig:"GLOOVA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GLOOVA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GLOOVA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GLOOVA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GLOOVA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GLOOVA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether a redis endpoint was provided.
func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret                 string `envconfig:"GLOOVA_JWT_SECRET" default:"dev-secret"`
	Issuer                 string `envconfig:"GLOOVA_JWT_ISSUER" default:"gloova"`
	ExpirationMinutes      int    `envconfig:"GLOOVA_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"GLOOVA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GLOOVA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GLOOVA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GLOOVA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GLOOVA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GLOOVA_ARGON_KEY_LEN" default:"32"`
}

// GatewayConfig points at the assistant workflow gateway. The URL here is
// only the boot value; operators can override it at runtime through the
// admin settings surface.
type GatewayConfig struct {
	URL     string        `envconfig:"GLOOVA_GATEWAY_URL"`
	Timeout time.Duration `envconfig:"GLOOVA_GATEWAY_TIMEOUT" default:"12s"`
}

type PubSubConfig struct {
	EntitlementTopic        string `envconfig:"GLOOVA_PUBSUB_ENTITLEMENT_TOPIC"`
	EntitlementSubscription string `envconfig:"GLOOVA_PUBSUB_ENTITLEMENT_SUBSCRIPTION"`
}

// Configured reports whether cross-process event fan-out is enabled.
func (p PubSubConfig) Configured() bool {
	return strings.TrimSpace(p.EntitlementTopic) != ""
}

type GCPConfig struct {
	ProjectID string `envconfig:"GLOOVA_GCP_PROJECT_ID"`
}

type AdminConfig struct {
	Emails []string `envconfig:"GLOOVA_ADMIN_EMAILS"`
}

// IsAdminEmail matches the operator allow-list case-insensitively.
func (a AdminConfig) IsAdminEmail(email string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	if needle == "" {
		return false
	}
	for _, candidate := range a.Emails {
		if strings.ToLower(strings.TrimSpace(candidate)) == needle {
			return true
		}
	}
	return false
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GLOOVA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GLOOVA_AUTO_MIGRATE" default:"false"`
	ForceDemo   bool `envconfig:"GLOOVA_FORCE_DEMO" default:"false"`
}
