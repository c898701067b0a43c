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

// FileConfig is an intermediate DTO used only for reading config files.
// timex.Duration accepts both "1m" strings and integer nanoseconds.
type FileConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	PublicBaseURL                string         `json:"public_base_url" yaml:"public_base_url"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	RedisAddr                    string         `json:"redis_addr" yaml:"redis_addr"`
	OAuth                        struct {
		Google OAuthClient `json:"google" yaml:"google"`
		GitHub OAuthClient `json:"github" yaml:"github"`
	} `json:"oauth" yaml:"oauth"`
}

type OAuthClient struct {
	ClientID     string `json:"client_id" yaml:"client_id"`
	ClientSecret string `json:"client_secret" yaml:"client_secret"`
}

// parseFile loads the file named by -c/-config (JSON, or YAML for .yaml and
// .yml) and copies its non-empty values into config. Read or decode errors
// panic.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var c FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	default:
		err = json.Unmarshal(data, &c)
	}
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.GoogleClientID, c.OAuth.Google.ClientID)
	setString(&config.GoogleClientSecret, c.OAuth.Google.ClientSecret)
	setString(&config.GitHubClientID, c.OAuth.GitHub.ClientID)
	setString(&config.GitHubClientSecret, c.OAuth.GitHub.ClientSecret)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
