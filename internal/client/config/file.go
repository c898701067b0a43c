package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/flagx"
	"github.com/dmitrijs2005/orbit/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for decoding config files.
// After parsing, non-empty values are copied into the runtime Config.
type FileConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	ServerHTTPURL       string         `json:"server_http_url" yaml:"server_http_url"`
	RedirectURL         string         `json:"redirect_url" yaml:"redirect_url"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	LogFile             string         `json:"log_file" yaml:"log_file"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
}

// parseFile overlays cfg with the file named by -c/-config. Read or decode
// errors panic, like flag errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	setString(&cfg.ServerHTTPURL, fc.ServerHTTPURL)
	setString(&cfg.RedirectURL, fc.RedirectURL)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.LogFile, fc.LogFile)
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
