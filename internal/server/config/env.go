package config

import "github.com/dmitrijs2005/orbit/internal/flagx"

// Environment variables read by parseEnv. They override the config file
// and are overridden by flags.
const (
	EnvGRPCAddr           = "ORBIT_GRPC_ADDR"
	EnvHTTPAddr           = "ORBIT_HTTP_ADDR"
	EnvPublicBaseURL      = "ORBIT_PUBLIC_BASE_URL"
	EnvDatabaseDSN        = "ORBIT_DATABASE_DSN"
	EnvSecretKey          = "ORBIT_SECRET_KEY"
	EnvAccessTokenTTL     = "ORBIT_ACCESS_TOKEN_TTL"
	EnvRefreshTokenTTL    = "ORBIT_REFRESH_TOKEN_TTL"
	EnvRedisAddr          = "ORBIT_REDIS_ADDR"
	EnvGoogleClientID     = "ORBIT_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "ORBIT_GOOGLE_CLIENT_SECRET"
	EnvGitHubClientID     = "ORBIT_GITHUB_CLIENT_ID"
	EnvGitHubClientSecret = "ORBIT_GITHUB_CLIENT_SECRET"
)

// parseEnv overlays the ORBIT_* environment onto config. Malformed
// durations panic, like malformed config files.
func parseEnv(config *Config) {
	flagx.EnvString(&config.EndpointAddrGRPC, EnvGRPCAddr)
	flagx.EnvString(&config.EndpointAddrHTTP, EnvHTTPAddr)
	flagx.EnvString(&config.PublicBaseURL, EnvPublicBaseURL)
	flagx.EnvString(&config.DatabaseDSN, EnvDatabaseDSN)
	flagx.EnvString(&config.SecretKey, EnvSecretKey)
	flagx.EnvString(&config.RedisAddr, EnvRedisAddr)
	flagx.EnvString(&config.GoogleClientID, EnvGoogleClientID)
	flagx.EnvString(&config.GoogleClientSecret, EnvGoogleClientSecret)
	flagx.EnvString(&config.GitHubClientID, EnvGitHubClientID)
	flagx.EnvString(&config.GitHubClientSecret, EnvGitHubClientSecret)

	if err := flagx.EnvDuration(&config.AccessTokenValidityDuration, EnvAccessTokenTTL); err != nil {
		panic(err)
	}
	if err := flagx.EnvDuration(&config.RefreshTokenValidityDuration, EnvRefreshTokenTTL); err != nil {
		panic(err)
	}
}
