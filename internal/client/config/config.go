package config

import "time"

// Config holds runtime settings for the Orbit CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - ServerHTTPURL: base URL of the backend HTTP API (OAuth sign-in).
//   - RedirectURL: where the backend sends OAuth tokens after sign-in.
//   - DatabasePath: local SQLite file with settings and the saved session.
//   - LogFile: rotating JSON log file; the terminal is reserved for the REPL.
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	ServerEndpointAddr  string
	ServerHTTPURL       string
	RedirectURL         string
	DatabasePath        string
	LogFile             string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.ServerHTTPURL = "http://127.0.0.1:8080"
	c.RedirectURL = "orbit://auth/callback"
	c.DatabasePath = "orbit.db"
	c.LogFile = "orbit-cli.log"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON or YAML file (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
