package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"folio/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	// RefreshInterval is how often the server re-reads rotating secrets (API keys)
	RefreshInterval time.Duration `mapstructure:"refreshInterval"`

	// Secret paths
	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault
type VaultSecrets struct {
	// APIKeys expects a single string with comma-separated values in Vault
	// Example format: "key1,key2,key3"
	// The first key will be used as the primary key, others as fallbacks
	APIKeys      string `mapstructure:"apiKeys"`      // Path to API keys secret (key "keys")
	GeminiKey    string `mapstructure:"geminiKey"`    // Path to Gemini API key (key "api_key")
	SMTPPassword string `mapstructure:"smtpPassword"` // Path to SMTP password (key "password")
	DatabaseURL  string `mapstructure:"databaseURL"`  // Path to Postgres URL (key "url")
}

// Keys read from each secret
const (
	VaultKeyAPIKeys      = "keys"
	VaultKeyGeminiKey    = "api_key"
	VaultKeySMTPPassword = "password"
	VaultKeyDatabaseURL  = "url"
)

// VaultClient reads KVv2 secrets
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// NewVaultClient connects to Vault; it returns (nil, nil) when Vault is disabled
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		logger.Debug("Vault integration disabled")
		return nil, nil
	}

	client, err := createVaultAPIClient(config, logger)
	if err != nil {
		return nil, err
	}

	token, err := resolveVaultToken(config, logger)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	if err := testVaultConnection(client, config.Address, logger); err != nil {
		return nil, err
	}

	return &VaultClient{client: client, config: config, logger: logger}, nil
}

func createVaultAPIClient(config VaultConfig, logger *errors.Logger) (*api.Client, error) {
	apiConfig := api.DefaultConfig()
	if config.Address != "" {
		apiConfig.Address = config.Address
	}

	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to create vault client", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	logger.Debug("Vault client created",
		"address", apiConfig.Address,
		"namespace", config.Namespace,
		"token_file", config.TokenFile,
		"has_token", config.Token != "")
	return client, nil
}

// resolveVaultToken prefers the configured token and falls back to the token file
func resolveVaultToken(config VaultConfig, logger *errors.Logger) (string, error) {
	token := config.Token
	if token == "" && config.TokenFile != "" {
		raw, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to read vault token file", err).
				WithContext("file", config.TokenFile)
		}
		token = strings.TrimSpace(string(raw))
		logger.Debug("Vault token read from file", "file", config.TokenFile)
	}

	if token == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "vault token is required when vault is enabled", nil)
	}
	return token, nil
}

func testVaultConnection(client *api.Client, address string, logger *errors.Logger) error {
	health, err := client.Sys().Health()
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "failed to connect to vault", err).
			WithContext("address", address)
	}

	logger.Info("Connected to Vault",
		"address", address,
		"version", health.Version,
		"sealed", health.Sealed,
		"cluster_name", health.ClusterName)
	return nil
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// GetSecretV2 reads path and returns its data and version
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, errors.NewNotFoundError(errors.ErrCodeNotFound, fmt.Sprintf("secret not found at path: %s", path))
	}

	data, err := vc.extractSecretData(secret, path)
	if err != nil {
		return nil, err
	}

	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	version, err := parseVersionValue(metadata["version"], path)
	if err != nil {
		return nil, err
	}

	vc.logger.Debug("Secret read from Vault", "path", path, "version", version)
	return &VaultSecret{Data: data, Version: version}, nil
}

func (vc *VaultClient) extractSecretData(secret *api.Secret, path string) (map[string]any, error) {
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	return data, nil
}

// parseVersionValue accepts the numeric forms the Vault API decoder produces
func parseVersionValue(raw any, path string) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, raw)
	}
}

// GetStringSecret returns one string value of the secret at path
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}

	value, ok := secret.Data[key].(string)
	if !ok {
		if _, present := secret.Data[key]; present {
			return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
		}
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}

	vc.logger.Debug("String secret retrieved from Vault", "path", path, "key", key, "masked_value", maskSecret(value))
	return value, nil
}

// GetStringSliceSecret splits a comma-separated secret value into trimmed parts
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := vc.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	return splitAndTrim([]string{value}), nil
}

func maskSecret(value string) string {
	switch {
	case len(value) > 8:
		return value[:4] + "****" + value[len(value)-4:]
	case value != "":
		return "****"
	default:
		return ""
	}
}

// ApplyVaultSecrets overrides config secrets with the values stored in Vault
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	if client == nil {
		return nil
	}

	secrets := config.Vault.Secrets
	logger.Info("Loading secrets from Vault",
		"api_keys_path", secrets.APIKeys,
		"gemini_key_path", secrets.GeminiKey,
		"smtp_password_path", secrets.SMTPPassword,
		"database_url_path", secrets.DatabaseURL)

	return loadAllSecretsFromVault(client, config, logger)
}

// SecretReader is the subset of VaultClient used to load secrets
type SecretReader interface {
	GetSecretV2(path string) (*VaultSecret, error)
	GetStringSecret(path, key string) (string, error)
	GetStringSliceSecret(path, key string) ([]string, error)
}

func loadAllSecretsFromVault(client SecretReader, config *Config, logger *errors.Logger) error {
	secrets := config.Vault.Secrets

	if secrets.APIKeys != "" {
		keys, err := client.GetStringSliceSecret(secrets.APIKeys, VaultKeyAPIKeys)
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if len(keys) > 0 {
			config.Server.APIKeys = keys
			logger.Info("API keys loaded from Vault", "count", len(keys))
		} else {
			logger.Warn("No API keys found in Vault", "path", secrets.APIKeys)
		}
	}

	loaders := []struct {
		path   string
		key    string
		name   string
		target *string
	}{
		{secrets.GeminiKey, VaultKeyGeminiKey, "Gemini API key", &config.AI.APIKey},
		{secrets.SMTPPassword, VaultKeySMTPPassword, "SMTP password", &config.Mail.Password},
		{secrets.DatabaseURL, VaultKeyDatabaseURL, "database URL", &config.Store.URL},
	}
	for _, l := range loaders {
		if l.path == "" {
			continue
		}
		value, err := client.GetStringSecret(l.path, l.key)
		if err != nil {
			return fmt.Errorf("failed to load %s from vault: %w", l.name, err)
		}
		// An empty value keeps whatever the file or environment provided
		if value == "" {
			logger.Warn("Empty secret found in Vault", "secret", l.name, "path", l.path)
			continue
		}
		*l.target = value
		logger.Info("Secret loaded from Vault", "secret", l.name)
	}

	return nil
}
