package main

import (
	"flag"
	"log"
	"os"
	"strconv"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr        string
	DBPath      string
	SystemFile  string
	SampleEvery int
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
// variables. Flags win over environment variables, which win over defaults.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "FOLDSIM_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "db-path",
			envVarName:  "FOLDSIM_DB_PATH",
			defaultVal:  "./data/foldsim.db",
			description: "path of the SQLite file storing finished trajectory results",
			setter:      func(c *ServerConfig, v string) { c.DBPath = v },
		},
		{
			flagName:    "system-file",
			envVarName:  "FOLDSIM_SYSTEM_FILE",
			defaultVal:  "",
			description: "optional path to a system config (JSON or YAML) to register at startup",
			setter:      func(c *ServerConfig, v string) { c.SystemFile = v },
		},
		{
			flagName:    "sample-every",
			envVarName:  "FOLDSIM_SAMPLE_EVERY",
			defaultVal:  "0",
			description: "emit a notification event every N reaction steps; 0 emits only terminal events",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil && val >= 0 {
					c.SampleEvery = val
				} else {
					log.Printf("Invalid value for sample-every: %s, using default 0", v)
					c.SampleEvery = 0
				}
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "FOLDSIM_LOG_LEVEL",
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

	// Parse flags once
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
