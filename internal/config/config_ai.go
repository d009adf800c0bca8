package config

import "time"

// AIConfig holds AI service configuration
type AIConfig struct {
	// Global/fallback configuration
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	APIKey            string        `mapstructure:"apiKey"`
	Temperature       float32       `mapstructure:"temperature"`
	SystemInstruction string        `mapstructure:"systemInstruction"`
	Prompts           PromptConfig  `mapstructure:"prompts"`

	// Operation-specific configurations
	Analyze  OperationAIConfig `mapstructure:"analyze"`
	Optimize OperationAIConfig `mapstructure:"optimize"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Open duration before half-open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for a single pipeline.
// Unset fields fall back to the global AIConfig values.
type OperationAIConfig struct {
	Provider          string               `mapstructure:"provider"`
	Model             string               `mapstructure:"model"`
	Timeout           *time.Duration       `mapstructure:"timeout"`
	APIKey            string               `mapstructure:"apiKey"`
	Temperature       *float32             `mapstructure:"temperature"`
	SystemInstruction string               `mapstructure:"systemInstruction"`
	CircuitBreaker    CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		timeout := c.AI.Timeout
		opCfg.Timeout = &timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.Temperature == nil {
		temperature := c.AI.Temperature
		opCfg.Temperature = &temperature
	}
	if opCfg.SystemInstruction == "" {
		opCfg.SystemInstruction = c.AI.SystemInstruction
	}
}

// GetAnalyzeConfig returns the AI configuration for resume analysis with fallback to global config
func (c *Config) GetAnalyzeConfig() OperationAIConfig {
	config := c.AI.Analyze
	c.applyOperationDefaults(&config)
	return config
}

// GetOptimizeConfig returns the AI configuration for resume optimization with fallback to global config
func (c *Config) GetOptimizeConfig() OperationAIConfig {
	config := c.AI.Optimize
	c.applyOperationDefaults(&config)
	return config
}
