package main

import (
	"flag"
	"os"

	"github.com/rxnkit/rxnkit/internal/rxn"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr        string
	DefaultSess string
	ModelFile   string
	WebhookURL  string
	LogLevel    string
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and environment
// variables. Uses a resolver pattern to make it easy to add new options.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "RXNKIT_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "session-id",
			envVarName:  "RXNKIT_SESSION_ID",
			defaultVal:  "default",
			description: "default session ID for an initial model",
			setter:      func(c *ServerConfig, v string) { c.DefaultSess = v },
		},
		{
			flagName:    "model-file",
			envVarName:  "RXNKIT_MODEL_FILE",
			defaultVal:  "",
			description: "optional path to a model file (JSON or YAML) to load at startup",
			setter:      func(c *ServerConfig, v string) { c.ModelFile = v },
		},
		{
			flagName:    "webhook-url",
			envVarName:  "RXNKIT_WEBHOOK_URL",
			defaultVal:  "",
			description: "optional webhook URL notified of run events",
			setter:      func(c *ServerConfig, v string) { c.WebhookURL = v },
		},
		{
			flagName:    "log-level",
			envVarName:  "RXNKIT_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	// Register string flags first
	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	flag.Parse()

	// Resolve values for each resolver
	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}

// loadInitialModelFromFile loads, validates, and builds a model file.
func loadInitialModelFromFile(path string, logger *Logger) (rxn.ModelConfig, *rxn.Model, error) {
	cfg, err := rxn.LoadModelConfig(path)
	if err != nil {
		return rxn.ModelConfig{}, nil, err
	}
	if err := rxn.ValidateModelConfig(cfg); err != nil {
		return rxn.ModelConfig{}, nil, err
	}
	model, err := rxn.BuildModelFromConfigWithLogger(cfg, logger)
	if err != nil {
		return rxn.ModelConfig{}, nil, err
	}
	return cfg, model, nil
}
