package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Host                string       `json:"host"`
	Port                int          `json:"port"`
	WSPort              int          `json:"wsPort"`
	LogLevel            string       `json:"logLevel"`
	BackendURL          string       `json:"backendUrl"`
	MaxBodySize         int64        `json:"maxBodySize"`
	MaxBatchSize        int          `json:"maxBatchSize"`
	HealthCheckInterval int          `json:"healthCheckInterval"` // ms
	RetryEnabled        bool         `json:"retryEnabled"`
	RetryMaxAttempts    int          `json:"retryMaxAttempts"`
	Cache               *CacheConfig `json:"cache,omitempty"`
}

// CacheConfig represents dispatch-result cache configuration
type CacheConfig struct {
	Enabled bool `json:"enabled"`
	TTL     int  `json:"ttl"`  // seconds
	Size    int  `json:"size"` // number of entries
}

// Default values
const (
	DefaultHost                = "localhost"
	DefaultPort                = 8080
	DefaultWSPort              = 8081
	DefaultLogLevel            = "info"
	DefaultMaxBodySize         = int64(0) // 0 means no limit
	DefaultMaxBatchSize        = 0        // 0 means no limit
	DefaultHealthCheckInterval = 10000    // ms
	DefaultRetryEnabled        = true
	DefaultRetryMaxAttempts    = 3
)

// GetHealthCheckIntervalDuration returns the health check interval as time.Duration
func (c *Config) GetHealthCheckIntervalDuration() time.Duration {
	return time.Duration(c.HealthCheckInterval) * time.Millisecond
}

// IsCacheEnabled returns true if the cache is configured and enabled
func (c *Config) IsCacheEnabled() bool {
	return c.Cache != nil && c.Cache.Enabled
}

// GetTTLDuration returns the cache TTL as time.Duration
func (c *CacheConfig) GetTTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}
