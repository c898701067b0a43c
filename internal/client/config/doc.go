// Package config loads runtime configuration for the Orbit CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-w string   base URL of the backend HTTP API
//	-r string   OAuth redirect URL
//	-d string   local database file
//	-l string   log file
//	-i int      online status check interval (seconds)
//
// # File schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	server_endpoint_addr: 127.0.0.1:50051
//	server_http_url: http://127.0.0.1:8080
//	redirect_url: orbit://auth/callback
//	database_path: orbit.db
//	log_file: orbit-cli.log
//	online_check_interval: 3s
package config
