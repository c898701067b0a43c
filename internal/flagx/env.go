package flagx

import (
	"fmt"
	"os"
	"time"
)

// EnvString overwrites dst with the value of the environment variable key
// when that variable is set and non-empty.
func EnvString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// EnvDuration is EnvString for durations in time.ParseDuration syntax.
func EnvDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s: duration must be positive", key)
	}
	*dst = d
	return nil
}
