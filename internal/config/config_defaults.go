package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultSystemInstruction is sent when a caller provides no system instruction
const DefaultSystemInstruction = "You are an expert resume writer and career coach."

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 10*1024*1024)
	v.SetDefault("app.ownerName", "Jaipal Singh")
	v.SetDefault("app.ownerTitle", "Senior Marketing Manager & Digital Marketing Leader")

	// AI - global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.systemInstruction", DefaultSystemInstruction)
	v.SetDefault("ai.prompts.analysisFile", "")
	v.SetDefault("ai.prompts.rewriteFile", "")
	v.SetDefault("ai.prompts.coverLetterFile", "")
	v.SetDefault("ai.prompts.rescoreFile", "")

	// AI - per pipeline
	v.SetDefault("ai.analyze.temperature", 0.2) // Scoring should be stable between calls
	v.SetDefault("ai.optimize.timeout", 90*time.Second)
	setCircuitBreakerDefaults(v, "ai.analyze.circuitBreaker")
	setCircuitBreakerDefaults(v, "ai.optimize.circuitBreaker")

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8001")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 5*time.Minute) // Optimization makes three sequential AI calls
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxUploadBytes", 10*1024*1024)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.corsOrigins", []string{"*"})

	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.autoReload.enabled", true)
	v.SetDefault("server.tls.autoReload.debounceDelay", time.Second)

	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 30)
	v.SetDefault("server.rateLimit.burstCapacity", 5)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)

	// Store
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.url", "")
	v.SetDefault("store.maxConns", 10)
	v.SetDefault("store.minConns", 1)
	v.SetDefault("store.connectTimeout", 10*time.Second)
	v.SetDefault("store.migrateOnStart", true)

	// Mail
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.fromName", "Jaipal Singh Portfolio")
	v.SetDefault("mail.to", "")
	v.SetDefault("mail.tlsPolicy", "mandatory")
	v.SetDefault("mail.timeout", 15*time.Second)
	v.SetDefault("mail.sendConfirmation", true)

	// Vault
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.refreshInterval", 5*time.Minute)
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.smtpPassword", "")
	v.SetDefault("vault.secrets.databaseURL", "")

	// Observability
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "folio")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.aiOperations", true)
	v.SetDefault("observability.customMetrics.businessMetrics", true)
	v.SetDefault("observability.customMetrics.rateLimits", true)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}

func setCircuitBreakerDefaults(v *viper.Viper, prefix string) {
	v.SetDefault(prefix+".enabled", true)
	v.SetDefault(prefix+".maxRequests", 3)
	v.SetDefault(prefix+".interval", 60*time.Second)
	v.SetDefault(prefix+".timeout", 60*time.Second)
	v.SetDefault(prefix+".minRequests", 3)
	v.SetDefault(prefix+".failureThreshold", 0.6)
}
