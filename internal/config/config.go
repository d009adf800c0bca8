package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"folio/internal/errors"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Secret Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Environment Variables (FOLIO_AI_APIKEY, GEMINI_API_KEY, SMTP_PASS, etc.)
// 3. Config File values
// 4. Default values - Lowest priority
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	AI            AIConfig            `mapstructure:"ai"`
	Store         StoreConfig         `mapstructure:"store"`
	Mail          MailConfig          `mapstructure:"mail"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`

	// Prompts holds prompt template overrides read from the files named in AI.Prompts
	Prompts LoadedPrompts `mapstructure:"-"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
	OwnerName        string   `mapstructure:"ownerName"`
	OwnerTitle       string   `mapstructure:"ownerTitle"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxUploadBytes int64         `mapstructure:"maxUploadBytes"`

	// API keys guarding admin routes; empty means admin routes are open
	APIKeys     []string        `mapstructure:"apiKeys"`
	CORSOrigins []string        `mapstructure:"corsOrigins"`
	TLS         TLSConfig       `mapstructure:"tls"`
	RateLimit   RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds listener TLS configuration
type TLSConfig struct {
	Mode       string `mapstructure:"mode"`     // "disabled" or "server"
	CertFile   string `mapstructure:"certFile"` // PEM
	KeyFile    string `mapstructure:"keyFile"`  // PEM
	MinVersion string `mapstructure:"minVersion"`

	AutoReload AutoReloadConfig `mapstructure:"autoReload"`
}

// AutoReloadConfig controls certificate hot reload on file change
type AutoReloadConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// RateLimitConfig holds rate limiting configuration for AI and contact routes
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin"`
	BurstCapacity  int  `mapstructure:"burstCapacity"`
	ByIP           bool `mapstructure:"byIP"`
	ByAPIKey       bool `mapstructure:"byAPIKey"`
}

// StoreConfig selects and configures the blog/contact store
type StoreConfig struct {
	Driver         string        `mapstructure:"driver"` // "memory" or "postgres"
	URL            string        `mapstructure:"url"`
	MaxConns       int32         `mapstructure:"maxConns"`
	MinConns       int32         `mapstructure:"minConns"`
	ConnectTimeout time.Duration `mapstructure:"connectTimeout"`
	MigrateOnStart bool          `mapstructure:"migrateOnStart"`
}

// MailConfig holds SMTP settings for contact notifications
type MailConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	From             string        `mapstructure:"from"`
	FromName         string        `mapstructure:"fromName"`
	To               string        `mapstructure:"to"`
	TLSPolicy        string        `mapstructure:"tlsPolicy"` // "mandatory", "opportunistic" or "none"
	Timeout          time.Duration `mapstructure:"timeout"`
	SendConfirmation bool          `mapstructure:"sendConfirmation"`
}

// Configured reports whether enough SMTP settings are present to send mail
func (m MailConfig) Configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != "" && m.To != ""
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig toggles the application metric groups
type CustomMetricsConfig struct {
	AIOperations    bool `mapstructure:"aiOperations"`
	BusinessMetrics bool `mapstructure:"businessMetrics"`
	RateLimits      bool `mapstructure:"rateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// envAliases maps config keys to the plain variable names used by existing deployments.
// The FOLIO_ prefixed form is always checked first.
var envAliases = map[string][]string{
	"ai.apiKey":          {"GEMINI_API_KEY", "EMERGENT_LLM_KEY"},
	"store.url":          {"DATABASE_URL"},
	"mail.host":          {"SMTP_HOST"},
	"mail.port":          {"SMTP_PORT"},
	"mail.username":      {"SMTP_USER"},
	"mail.password":      {"SMTP_PASS"},
	"mail.to":            {"TO_EMAIL"},
	"server.corsOrigins": {"CORS_ORIGINS"},
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/folio/")
	v.AddConfigPath("$HOME/.folio")
	v.AddConfigPath(".")

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	return buildConfig(v, configFileUsed)
}

// newViper returns a viper instance with defaults and environment bindings applied
func newViper() (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvAliases(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment aliases: %w", err)
	}
	log.Println("[CONFIG] Configured environment variable handling with prefix 'FOLIO'")

	return v, nil
}

// buildConfig unmarshals, normalizes, loads prompt files and validates
func buildConfig(v *viper.Viper, configFileUsed string) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	prompts, err := loadPromptsFromFiles(config.AI.Prompts)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}
	config.Prompts = prompts

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

func bindEnvAliases(v *viper.Viper) error {
	for key, aliases := range envAliases {
		names := append([]string{"FOLIO_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := errors.ParseLevel(c.App.LogLevel); err != nil {
		return err
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server maxUploadBytes must be positive")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.URL == "" {
			return fmt.Errorf("store url is required for the postgres driver (set DATABASE_URL)")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be 'memory' or 'postgres')", c.Store.Driver)
	}

	if c.Mail.Configured() {
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			return fmt.Errorf("invalid mail port: %d", c.Mail.Port)
		}
		switch c.Mail.TLSPolicy {
		case "mandatory", "opportunistic", "none":
		default:
			return fmt.Errorf("invalid mail tlsPolicy: %s (must be 'mandatory', 'opportunistic', or 'none')", c.Mail.TLSPolicy)
		}
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

// logConfigurationSources prints where configuration came from. Secrets are masked.
func (c *Config) logConfigurationSources(configFileUsed string) {
	if configFileUsed == "" {
		configFileUsed = "none (defaults and environment)"
	}
	log.Printf("[CONFIG] Config file: %s", configFileUsed)

	names := []string{"FOLIO_AI_APIKEY", "FOLIO_AI_MODEL", "FOLIO_SERVER_PORT", "FOLIO_SERVER_HOST",
		"FOLIO_APP_LOGLEVEL", "FOLIO_STORE_DRIVER", "FOLIO_VAULT_ENABLED"}
	for _, aliases := range envAliases {
		names = append(names, aliases...)
	}
	slices.Sort(names)

	var set []string
	for _, name := range names {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if isSensitiveEnv(name) {
			value = "***MASKED***"
		}
		set = append(set, name+"="+value)
	}
	if len(set) == 0 {
		set = []string{"none"}
	}
	log.Printf("[CONFIG] Environment: %s", strings.Join(set, " "))

	apiKey := "not set"
	if c.AI.APIKey != "" {
		apiKey = "configured"
	}
	log.Printf("[CONFIG] ai=%s/%s apiKey=%s server=%s:%s logLevel=%s store=%s mail=%t tls=%s vault=%t observability=%t",
		c.AI.Provider, c.AI.Model, apiKey, c.Server.Host, c.Server.Port, c.App.LogLevel, c.Store.Driver,
		c.Mail.Configured(), c.Server.TLS.Mode, c.Vault.Enabled, c.Observability.Enabled)
}

func isSensitiveEnv(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "key") || strings.Contains(lower, "pass") || strings.Contains(lower, "database_url")
}
