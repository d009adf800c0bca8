package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"folio/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "json number", input: json.Number("7"), expected: 7},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	logger := newTestLogger()

	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{Vault: VaultConfig{Enabled: false}}
	assert.NoError(t, ApplyVaultSecrets(config, newTestLogger()))
}

type fakeSecretReader struct {
	values map[string]string
	err    error
}

func (f *fakeSecretReader) GetSecretV2(path string) (*VaultSecret, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeSecretReader) GetStringSecret(path, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	value, ok := f.values[path+"#"+key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	return value, nil
}

func (f *fakeSecretReader) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := f.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	return splitAndTrim([]string{value}), nil
}

func TestLoadAllSecretsFromVault(t *testing.T) {
	reader := &fakeSecretReader{values: map[string]string{
		"secret/data/folio/api#keys":        "k1, k2",
		"secret/data/folio/gemini#api_key":  "gemini-from-vault",
		"secret/data/folio/smtp#password":   "",
		"secret/data/folio/database#url":    "postgres://vault/db",
	}}

	config := &Config{
		AI:    AIConfig{APIKey: "from-env"},
		Mail:  MailConfig{Password: "from-env"},
		Vault: VaultConfig{Secrets: VaultSecrets{
			APIKeys:      "secret/data/folio/api",
			GeminiKey:    "secret/data/folio/gemini",
			SMTPPassword: "secret/data/folio/smtp",
			DatabaseURL:  "secret/data/folio/database",
		}},
	}

	require.NoError(t, loadAllSecretsFromVault(reader, config, newTestLogger()))

	assert.Equal(t, []string{"k1", "k2"}, config.Server.APIKeys)
	assert.Equal(t, "gemini-from-vault", config.AI.APIKey)
	assert.Equal(t, "from-env", config.Mail.Password, "empty vault value keeps the existing password")
	assert.Equal(t, "postgres://vault/db", config.Store.URL)
}

func TestLoadAllSecretsFromVaultError(t *testing.T) {
	reader := &fakeSecretReader{err: fmt.Errorf("permission denied")}
	config := &Config{Vault: VaultConfig{Secrets: VaultSecrets{GeminiKey: "secret/data/gemini"}}}

	err := loadAllSecretsFromVault(reader, config, newTestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gemini API key")
}

func TestVaultClientGetStringSecret(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/folio" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"api_key":"abcd1234efgh","keys":"a,b"},"metadata":{"version":3}}}`))
	}))
	defer server.Close()

	apiConfig := api.DefaultConfig()
	apiConfig.Address = server.URL
	client, err := api.NewClient(apiConfig)
	require.NoError(t, err)
	client.SetToken("test-token")

	vc := &VaultClient{client: client, logger: newTestLogger()}

	secret, err := vc.GetSecretV2("secret/data/folio")
	require.NoError(t, err)
	assert.Equal(t, int64(3), secret.Version)

	value, err := vc.GetStringSecret("secret/data/folio", "api_key")
	require.NoError(t, err)
	assert.Equal(t, "abcd1234efgh", value)

	keys, err := vc.GetStringSliceSecret("secret/data/folio", "keys")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	_, err = vc.GetStringSecret("secret/data/folio", "missing")
	assert.Error(t, err)

	_, err = vc.GetSecretV2("secret/data/other")
	assert.Error(t, err)
}

func TestVaultClientExtractSecretData(t *testing.T) {
	vc := &VaultClient{logger: newTestLogger()}

	data, err := vc.extractSecretData(&api.Secret{Data: map[string]any{
		"data": map[string]any{"key": "value"},
	}}, "p")
	require.NoError(t, err)
	assert.Equal(t, "value", data["key"])

	_, err = vc.extractSecretData(&api.Secret{Data: map[string]any{"key": "value"}}, "p")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not in KVv2 format")
}

func TestNilVaultClient(t *testing.T) {
	var vc *VaultClient
	_, err := vc.GetSecretV2("any")
	assert.Error(t, err)
}
