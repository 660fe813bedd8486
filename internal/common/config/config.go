// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Cache        CacheConfig             `mapstructure:"cache"`
	Webhooks     WebhookConfig           `mapstructure:"webhooks"`
	Integrations IntegrationConfig       `mapstructure:"integrations"`
	Templates    TemplateConfig          `mapstructure:"templates"`
	Server       ServerConfig            `mapstructure:"server"`
	Logging      LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// CacheConfig holds TTLs for the redis-backed stores.
type CacheConfig struct {
	LenderTTL int `mapstructure:"lender_ttl"` // seconds
	DraftTTL  int `mapstructure:"draft_ttl"`  // seconds
}

// WebhookConfig describes the outbound notification channel and the
// inbound form-filler origins.
type WebhookConfig struct {
	BaseURL                  string   `mapstructure:"base_url"`
	NewDealPath              string   `mapstructure:"new_deal_path"`
	UpdatingApplicationsPath string   `mapstructure:"updating_applications_path"`
	AllowedOrigins           []string `mapstructure:"allowed_origins"`
	MaxAttempts              int      `mapstructure:"max_attempts"`
	RetryDelay               int      `mapstructure:"retry_delay"` // milliseconds
	Timeout                  int      `mapstructure:"timeout"`     // milliseconds
	Transport                string   `mapstructure:"transport"`   // http | sns
}

// IntegrationConfig holds settings for external cloud services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SNS    struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// TemplateConfig holds settings for the lender email template.
type TemplateConfig struct {
	SettingsKey   string `mapstructure:"settings_key"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	RegistryPath  string `mapstructure:"registry_path"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
