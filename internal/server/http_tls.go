package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS sets up TLS configuration based on the mode
func (s *Server) configureTLS(httpServer *http.Server) error {
	switch s.TLSConfig.Mode {
	case "server":
		return s.configureServerTLS(httpServer)
	case "disabled", "":
		s.Logger.Info("TLS disabled, serving plain HTTP", "address", httpServer.Addr)
		return nil
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled' or 'server')", s.TLSConfig.Mode)
	}
}

// configureServerTLS loads the certificate through a CertificateManager so it can be swapped at runtime
func (s *Server) configureServerTLS(httpServer *http.Server) error {
	certManager := NewCertificateManager(s.TLSConfig, s.deps.Observability, s.Logger)
	if err := certManager.Start(); err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	s.CertificateManager = certManager

	httpServer.TLSConfig = &tls.Config{
		MinVersion:     tlsVersion(s.TLSConfig.MinVersion),
		GetCertificate: certManager.GetCertificate,
	}

	s.Logger.Info("TLS enabled",
		"address", httpServer.Addr,
		"min_version", s.TLSConfig.MinVersion,
		"auto_reload", s.TLSConfig.AutoReload.Enabled)
	return nil
}

// tlsVersion maps the configured minimum version, defaulting to TLS 1.2
func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
