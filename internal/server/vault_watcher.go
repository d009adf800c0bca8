package server

import (
	"fmt"
	"sync"
	"time"

	"folio/internal/config"
	"folio/internal/errors"
)

// SecretReader is the part of the Vault client the key refresher needs
type SecretReader interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
	GetStringSliceSecret(path, key string) ([]string, error)
}

// KeyRefresher polls a Vault KVv2 secret and hands over the API keys whenever
// the secret version increases. Read failures keep the current keys.
type KeyRefresher struct {
	mu sync.RWMutex

	client       SecretReader
	secretPath   string
	pollInterval time.Duration
	onKeys       func(keys []string)
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastError   string
	lastCheck   time.Time
}

// NewKeyRefresher creates a refresher for the secret at secretPath
func NewKeyRefresher(client SecretReader, secretPath string, pollInterval time.Duration, onKeys func([]string), logger *errors.Logger) *KeyRefresher {
	return &KeyRefresher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		onKeys:       onKeys,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start begins polling
func (kr *KeyRefresher) Start() error {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	if kr.running {
		return fmt.Errorf("key refresher is already running")
	}
	if kr.pollInterval <= 0 {
		return fmt.Errorf("key refresh interval must be positive")
	}
	kr.running = true
	go kr.pollLoop()

	kr.logger.Info("Vault API key refresher started", "secret_path", kr.secretPath, "poll_interval", kr.pollInterval)
	return nil
}

// Stop stops polling
func (kr *KeyRefresher) Stop() {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	if !kr.running {
		return
	}
	close(kr.stopChan)
	kr.running = false
	kr.logger.Info("Vault API key refresher stopped")
}

func (kr *KeyRefresher) pollLoop() {
	ticker := time.NewTicker(kr.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := kr.refresh(); err != nil {
				kr.logger.LogError(err, "Failed to refresh API keys from Vault", "secret_path", kr.secretPath)
			}
		case <-kr.stopChan:
			return
		}
	}
}

// refresh checks the secret version and applies new keys if it moved forward.
// An empty key list is ignored so a bad write cannot lock every client out.
func (kr *KeyRefresher) refresh() error {
	changed, version, err := kr.checkForUpdates()
	kr.noteCheck(err)
	if err != nil || !changed {
		return err
	}

	keys, err := kr.client.GetStringSliceSecret(kr.secretPath, config.VaultKeyAPIKeys)
	kr.noteCheck(err)
	if err != nil {
		return fmt.Errorf("failed to read API keys: %w", err)
	}
	if len(keys) == 0 {
		kr.logger.Warn("Vault secret has no API keys, keeping the current set", "version", version)
		return nil
	}

	kr.mu.Lock()
	kr.lastVersion = version
	kr.mu.Unlock()

	kr.onKeys(keys)
	kr.logger.Info("API keys rotated from Vault", "version", version, "count", len(keys))
	return nil
}

func (kr *KeyRefresher) checkForUpdates() (bool, int64, error) {
	secret, err := kr.client.GetSecretV2(kr.secretPath)
	if err != nil {
		return false, 0, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil {
		return false, 0, fmt.Errorf("secret %s not found", kr.secretPath)
	}

	kr.mu.RLock()
	defer kr.mu.RUnlock()
	return secret.Version > kr.lastVersion, secret.Version, nil
}

func (kr *KeyRefresher) noteCheck(err error) {
	kr.mu.Lock()
	defer kr.mu.Unlock()
	kr.lastCheck = time.Now()
	kr.lastError = ""
	if err != nil {
		kr.lastError = err.Error()
	}
}

// Status reports the refresher state for the stats endpoint
func (kr *KeyRefresher) Status() map[string]any {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	return map[string]any{
		"running":       kr.running,
		"poll_interval": kr.pollInterval.String(),
		"secret_path":   kr.secretPath,
		"last_version":  kr.lastVersion,
		"last_check":    kr.lastCheck,
		"last_error":    kr.lastError,
	}
}
