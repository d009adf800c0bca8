package config

import (
	"fmt"
	"os"
	"strings"
)

// applyFallbacks normalizes values that arrive as loose strings and fills derived defaults
func (c *Config) applyFallbacks() {
	c.Server.APIKeys = splitAndTrim(c.Server.APIKeys)
	c.Server.CORSOrigins = splitAndTrim(c.Server.CORSOrigins)
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	c.applyMailDefaults()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// splitAndTrim flattens comma-separated entries and drops empties.
// Env values like "a, b" reach us as a single element.
func splitAndTrim(values []string) []string {
	result := []string{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}

func (c *Config) applyMailDefaults() {
	if c.Mail.From == "" {
		c.Mail.From = c.Mail.Username
	}
}

func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}

	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}
