package server

import (
	"sync"
	"time"

	"folio/internal/ai"
	"folio/internal/config"
	"folio/internal/errors"
	"folio/internal/extract"
	"folio/internal/observability"
	"folio/internal/portfolio"
	"folio/internal/resume"
	"folio/internal/store"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is the body of the informational endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

// Deps are the collaborators the HTTP layer dispatches to
type Deps struct {
	Extractor     *extract.Extractor
	Analyzer      *resume.Analyzer
	Optimizer     *resume.Optimizer
	Blogs         *portfolio.BlogService
	Contacts      *portfolio.ContactService
	Store         store.Store
	Gateways      []*ai.Gateway
	Observability *observability.Manager
	// Vault is optional; when set the API keys are refreshed from it
	Vault SecretReader
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management
	CertificateManager *CertificateManager

	// API Authentication
	keys *keyring

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   config.RateLimitConfig
	RateLimiter *LimiterManager

	deps        Deps
	keyRefresh  *KeyRefresher
	startedAt   time.Time
	corsOrigins map[string]bool
	corsAny     bool

	// Logger
	Logger *errors.Logger
}

// NewServer creates a new Server from the application configuration
func NewServer(appCfg *config.Config, version string, deps Deps, logger *errors.Logger) *Server {
	cfg := appCfg.Server

	var rateLimiter *LimiterManager
	if cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	origins := make(map[string]bool)
	corsAny := false
	for _, origin := range cfg.CORSOrigins {
		if origin == "*" {
			corsAny = true
		}
		origins[origin] = true
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLS,
		keys:           newKeyring(cfg.APIKeys),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxUploadBytes,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		deps:           deps,
		startedAt:      time.Now(),
		corsOrigins:    origins,
		corsAny:        corsAny,
		Logger:         logger,
	}
}

// keyring is the set of accepted API keys; it is replaced wholesale on rotation
type keyring struct {
	mu   sync.RWMutex
	keys map[string]bool
}

func newKeyring(keys []string) *keyring {
	k := &keyring{}
	k.replace(keys)
	return k
}

func (k *keyring) replace(keys []string) {
	m := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			m[key] = true
		}
	}
	k.mu.Lock()
	k.keys = m
	k.mu.Unlock()
}

func (k *keyring) empty() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) == 0
}

func (k *keyring) valid(key string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.keys[key]
}

func (k *keyring) count() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys)
}
