package cli

import (
	"context"
	"fmt"
	"time"

	"folio/internal/config"
	"folio/internal/errors"
	"folio/internal/extract"
	"folio/internal/mail"
	"folio/internal/observability"
	"folio/internal/portfolio"
	"folio/internal/server"
	"folio/internal/store"

	"github.com/spf13/cobra"
)

const observabilityShutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portfolio HTTP API",
	Long: `Start the HTTP server for the portfolio site.

Available endpoints:
- GET  /api/                         Hello World
- GET  /api/health                   Health check
- GET  /api/stats                    Server statistics
- POST /api/resume-builder/parse     Extract text from a PDF or DOCX upload
- POST /api/resume-builder/analyze   Score a resume against a job description
- POST /api/resume-builder/optimize  Rewrite a resume and draft a cover letter
- GET  /api/blogs                    List blog posts (?status=published)
- GET  /api/blogs/{slug}             Get a blog post
- POST/PUT/DELETE /api/blogs[/{id}]  Manage blog posts (API key)
- POST /api/contact                  Submit the contact form
- GET  /api/contact                  List contact submissions (API key)

TLS:
- Use --tls-mode to set TLS mode: disabled or server
- Use --cert-file and --key-file for the listener certificate`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveFlags struct {
	port     string
	host     string
	tlsMode  string
	certFile string
	keyFile  string
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.tlsMode, "tls-mode", "", "TLS mode: disabled or server (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
}

// applyServeOverrides copies explicitly set flags over the loaded configuration
func applyServeOverrides(cmd *cobra.Command, cfg *config.Config) {
	overrides := []struct {
		flag   string
		value  string
		target *string
	}{
		{"port", serveFlags.port, &cfg.Server.Port},
		{"host", serveFlags.host, &cfg.Server.Host},
		{"tls-mode", serveFlags.tlsMode, &cfg.Server.TLS.Mode},
		{"cert-file", serveFlags.certFile, &cfg.Server.TLS.CertFile},
		{"key-file", serveFlags.keyFile, &cfg.Server.TLS.KeyFile},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.target = o.value
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	applyServeOverrides(cmd, cfg)
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewManager(cfg.Observability, Version, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), observabilityShutdownTimeout)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	st, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := newPipelines(ctx, cfg, om, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Extractor:     extract.New(logger),
		Analyzer:      p.analyzer,
		Optimizer:     p.optimizer,
		Blogs:         portfolio.NewBlogService(st, logger),
		Contacts:      portfolio.NewContactService(st, notifier, logger),
		Store:         st,
		Gateways:      p.gateways,
		Observability: om,
	}

	vault, err := config.NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to Vault: %w", err)
	}
	if vault != nil {
		deps.Vault = vault
	}

	return server.NewServer(cfg, Version, deps, logger).Start(ctx)
}

// newNotifier returns the contact mail notifier, or nil when SMTP is not configured
func newNotifier(cfg *config.Config, logger *errors.Logger) (portfolio.Notifier, error) {
	if !cfg.Mail.Configured() {
		logger.Warn("SMTP not configured, contact submissions will be stored without email notification")
		return nil, nil
	}

	sender, err := mail.NewSMTPSender(cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail sender: %w", err)
	}
	return mail.NewNotifier(sender, cfg.Mail, cfg.App, logger), nil
}
