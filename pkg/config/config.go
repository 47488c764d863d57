package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	ChatRateLimit ChatRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Oracle        OracleConfig
	Vector        VectorConfig
	Risk          RiskConfig
	Automation    AutomationConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SMARTGEMENT_APP_ENV" required:"true"`
	Port         string `envconfig:"SMARTGEMENT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SMARTGEMENT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMARTGEMENT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SMARTGEMENT_DB_DSN"`
	Driver string `envconfig:"SMARTGEMENT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SMARTGEMENT_DB_HOST"`
	LegacyPort     int    `envconfig:"SMARTGEMENT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SMARTGEMENT_DB_USER"`
	LegacyPassword string `envconfig:"SMARTGEMENT_DB_PASSWORD"`
	LegacyName     string `envconfig:"SMARTGEMENT_DB_NAME"`
	LegacySSLMode  string `envconfig:"SMARTGEMENT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SMARTGEMENT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SMARTGEMENT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SMARTGEMENT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SMARTGEMENT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMARTGEMENT_REDIS_URL"`
	Address      string        `envconfig:"SMARTGEMENT_REDIS_ADDR"`
	Password     string        `envconfig:"SMARTGEMENT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMARTGEMENT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SMARTGEMENT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMARTGEMENT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMARTGEMENT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMARTGEMENT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMARTGEMENT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SMARTGEMENT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SMARTGEMENT_JWT_ISSUER" default:"smartgement"`
	ExpirationMinutes int    `envconfig:"SMARTGEMENT_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SMARTGEMENT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SMARTGEMENT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SMARTGEMENT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SMARTGEMENT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SMARTGEMENT_ARGON_KEY_LEN" default:"32"`
}

type ChatRateLimitConfig struct {
	Window       time.Duration `envconfig:"SMARTGEMENT_CHAT_RATE_LIMIT_WINDOW" default:"1m"`
	MessageLimit int           `envconfig:"SMARTGEMENT_CHAT_RATE_LIMIT_MESSAGES" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SMARTGEMENT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SMARTGEMENT_AUTO_MIGRATE" default:"false"`
}

// OracleConfig points at an OpenAI-compatible chat-completions endpoint.
type OracleConfig struct {
	BaseURL     string        `envconfig:"SMARTGEMENT_ORACLE_BASE_URL" default:"https://api.openai.com/v1"`
	APIKey      string        `envconfig:"SMARTGEMENT_ORACLE_API_KEY"`
	Model       string        `envconfig:"SMARTGEMENT_ORACLE_MODEL" default:"gpt-4o-mini"`
	MaxTokens   int           `envconfig:"SMARTGEMENT_ORACLE_MAX_TOKENS" default:"1024"`
	Temperature float64       `envconfig:"SMARTGEMENT_ORACLE_TEMPERATURE" default:"0.2"`
	Timeout     time.Duration `envconfig:"SMARTGEMENT_ORACLE_TIMEOUT" default:"30s"`
}

type VectorConfig struct {
	URL        string        `envconfig:"SMARTGEMENT_QDRANT_URL" default:"http://localhost:6333"`
	APIKey     string        `envconfig:"SMARTGEMENT_QDRANT_API_KEY"`
	Collection string        `envconfig:"SMARTGEMENT_QDRANT_COLLECTION" default:"merchant_knowledge"`
	Timeout    time.Duration `envconfig:"SMARTGEMENT_QDRANT_TIMEOUT" default:"10s"`
}

type RiskConfig struct {
	// FinancialThreshold is the inventory value (stock * price) above which the
	// financial risk factor is evaluated. Currency-unit agnostic.
	FinancialThreshold float64       `envconfig:"SMARTGEMENT_RISK_FINANCIAL_THRESHOLD" default:"1000000"`
	ReportCacheTTL     time.Duration `envconfig:"SMARTGEMENT_RISK_REPORT_CACHE_TTL" default:"5m"`
}

type AutomationConfig struct {
	HistoryLimit int `envconfig:"SMARTGEMENT_AUTOMATION_HISTORY_LIMIT" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
