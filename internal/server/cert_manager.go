package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"folio/internal/config"
	"folio/internal/errors"
)

const expiryReportInterval = time.Minute

// CertMetrics receives certificate reload outcomes and the time left on the serving certificate
type CertMetrics interface {
	RecordCertReload(ctx context.Context, success bool)
	RecordCertExpiry(ctx context.Context, remaining time.Duration)
}

// CertificateMetrics holds counters about certificate reloads
type CertificateMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// CertificateManager serves the listener certificate and swaps it when the files change.
// A failed reload keeps the previous certificate.
type CertificateManager struct {
	mu sync.RWMutex

	serverCert       *tls.Certificate
	serverCertExpiry time.Time

	config  config.TLSConfig
	watcher *CertWatcher
	metrics CertMetrics
	logger  *errors.Logger

	stats CertificateMetrics
	done  chan struct{}
	once  sync.Once
}

// NewCertificateManager creates a manager; metrics may be nil
func NewCertificateManager(cfg config.TLSConfig, metrics CertMetrics, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		config:  cfg,
		metrics: metrics,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start loads the certificate and, when auto reload is enabled, starts the file watcher
func (cm *CertificateManager) Start() error {
	if err := cm.Reload(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	if cm.config.AutoReload.Enabled {
		cm.watcher = NewCertWatcher(
			[]string{cm.config.CertFile, cm.config.KeyFile},
			cm.config.AutoReload.DebounceDelay,
			cm.triggerReload,
			cm.logger,
		)
		if err := cm.watcher.Start(); err != nil {
			return fmt.Errorf("failed to start certificate watcher: %w", err)
		}
	}

	if cm.metrics != nil {
		go cm.reportExpiry()
	}
	return nil
}

// Stop stops the watcher and expiry reporting
func (cm *CertificateManager) Stop() error {
	cm.once.Do(func() { close(cm.done) })
	if cm.watcher != nil {
		if err := cm.watcher.Stop(); err != nil {
			return err
		}
	}
	cm.logger.Info("Certificate manager stopped")
	return nil
}

// GetCertificate implements tls.Config.GetCertificate
func (cm *CertificateManager) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}
	if time.Now().After(cm.serverCertExpiry) {
		cm.logger.Warn("Serving an expired certificate",
			"expiry", cm.serverCertExpiry,
			"server_name", hello.ServerName)
	}
	return cm.serverCert, nil
}

// Reload reads the certificate pair from disk and swaps it in
func (cm *CertificateManager) Reload() error {
	cert, expiry, err := loadKeyPair(cm.config.CertFile, cm.config.KeyFile)
	if err != nil {
		cm.recordReload(false, err)
		return err
	}

	cm.mu.Lock()
	cm.serverCert = cert
	cm.serverCertExpiry = expiry
	cm.mu.Unlock()

	cm.recordReload(true, nil)
	cm.logger.Info("Certificates reloaded successfully", "server_cert_expiry", expiry)
	return nil
}

// CheckExpiry returns the time until the serving certificate expires
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCertExpiry.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cm.serverCertExpiry), nil
}

// GetMetrics returns a copy of the reload counters
func (cm *CertificateManager) GetMetrics() CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.stats
}

// WatchedFiles lists the files under watch, or nil without auto reload
func (cm *CertificateManager) WatchedFiles() []string {
	if cm.watcher == nil {
		return nil
	}
	return cm.watcher.Files()
}

func (cm *CertificateManager) triggerReload() {
	if err := cm.Reload(); err != nil {
		cm.logger.LogError(err, "Failed to reload TLS certificates, keeping the previous pair")
	}
}

func (cm *CertificateManager) recordReload(success bool, err error) {
	cm.mu.Lock()
	cm.stats.ReloadCount++
	cm.stats.LastReloadTime = time.Now()
	cm.stats.LastReloadSuccess = success
	if success {
		cm.stats.ReloadSuccessCount++
		cm.stats.LastReloadError = ""
	} else {
		cm.stats.ReloadFailureCount++
		cm.stats.LastReloadError = err.Error()
	}
	cm.mu.Unlock()

	if cm.metrics != nil {
		cm.metrics.RecordCertReload(context.Background(), success)
	}
}

func (cm *CertificateManager) reportExpiry() {
	ticker := time.NewTicker(expiryReportInterval)
	defer ticker.Stop()

	for {
		if remaining, err := cm.CheckExpiry(); err == nil {
			cm.metrics.RecordCertExpiry(context.Background(), remaining)
		}
		select {
		case <-ticker.C:
		case <-cm.done:
			return
		}
	}
}

// loadKeyPair loads a PEM pair and returns the leaf expiry
func loadKeyPair(certFile, keyFile string) (*tls.Certificate, time.Time, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse server certificate: %w", err)
	}
	cert.Leaf = leaf
	return &cert, leaf.NotAfter, nil
}
