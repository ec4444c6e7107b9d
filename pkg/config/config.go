package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration
type Config struct {
	Server    ServerConfig
	Index     IndexConfig
	Ingestion IngestionConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds REST server configuration
type ServerConfig struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 8080)
	MaxConnections  int           // Max concurrent connections
	RequestTimeout  time.Duration // Request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	EnableTLS       bool          // Enable TLS
	CertFile        string        // TLS certificate file
	KeyFile         string        // TLS key file
}

// IndexConfig holds kd-tree and QuadMap construction/query parameters
type IndexConfig struct {
	SplitThreshold       int     // Agents/buildings per QuadMap leaf before further splitting (default: 32)
	ParallelBuildMinSize int     // Minimum subtree size to fork a goroutine during kd-tree build (default: 1024); pkg/kdtree does not read it and uses its own fixed constant of 1024
	WorkerPoolSize       int     // Worker goroutines for per-agent kNN mapping in a batch job
	DefaultK             int     // Default number of nearest neighbors per query (default: 1)
	DefaultMaxDistance   float64 // Default maximum query distance in meters (default: 0, which stands for unbounded)
}

// IngestionConfig holds CSV ingestion and outlier-filtering parameters
type IngestionConfig struct {
	DataDir                string  // Directory containing agent snapshot and building CSVs
	OutputDir              string  // Directory to write per-hour mapping/count CSVs
	FilterDistanceOutliers bool    // Apply Tukey-fence filtering to mapped distances
	TukeyFenceK            float64 // Tukey fence multiplier (default: 1.5)
}

// AuthConfig holds JWT authentication configuration
type AuthConfig struct {
	Enabled   bool   // Require a valid bearer token on protected endpoints
	SigningKey string // HMAC signing key for validating tokens
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool          // Enable rate limiting
	RequestsPerSecond float64       // Sustained request rate per client
	Burst             int           // Burst allowance per client
	CleanupInterval   time.Duration // How often stale client limiters are evicted
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxConnections:  1000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableTLS:       false,
		},
		Index: IndexConfig{
			SplitThreshold:       32,
			ParallelBuildMinSize: 1024,
			WorkerPoolSize:       8,
			DefaultK:             1,
			DefaultMaxDistance:   0, // 0 stands for unbounded
		},
		Ingestion: IngestionConfig{
			DataDir:                "./data",
			OutputDir:              "./output",
			FilterDistanceOutliers: false,
			TukeyFenceK:            1.5,
		},
		Auth: AuthConfig{
			Enabled:    false,
			SigningKey: "",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             20,
			CleanupInterval:   5 * time.Minute,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := Default()

	// Server configuration
	if host := os.Getenv("AGENTMAP_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("AGENTMAP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if maxConn := os.Getenv("AGENTMAP_MAX_CONNECTIONS"); maxConn != "" {
		if mc, err := strconv.Atoi(maxConn); err == nil {
			cfg.Server.MaxConnections = mc
		}
	}
	if timeout := os.Getenv("AGENTMAP_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if enableTLS := os.Getenv("AGENTMAP_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("AGENTMAP_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("AGENTMAP_TLS_KEY")
	}

	// Index configuration
	if st := os.Getenv("AGENTMAP_SPLIT_THRESHOLD"); st != "" {
		if v, err := strconv.Atoi(st); err == nil {
			cfg.Index.SplitThreshold = v
		}
	}
	if pbm := os.Getenv("AGENTMAP_PARALLEL_BUILD_MIN_SIZE"); pbm != "" {
		if v, err := strconv.Atoi(pbm); err == nil {
			cfg.Index.ParallelBuildMinSize = v
		}
	}
	if wp := os.Getenv("AGENTMAP_WORKER_POOL_SIZE"); wp != "" {
		if v, err := strconv.Atoi(wp); err == nil {
			cfg.Index.WorkerPoolSize = v
		}
	}
	if k := os.Getenv("AGENTMAP_DEFAULT_K"); k != "" {
		if v, err := strconv.Atoi(k); err == nil {
			cfg.Index.DefaultK = v
		}
	}

	// Ingestion configuration
	if dataDir := os.Getenv("AGENTMAP_DATA_DIR"); dataDir != "" {
		cfg.Ingestion.DataDir = dataDir
	}
	if outDir := os.Getenv("AGENTMAP_OUTPUT_DIR"); outDir != "" {
		cfg.Ingestion.OutputDir = outDir
	}
	if filt := os.Getenv("AGENTMAP_FILTER_OUTLIERS"); filt == "true" {
		cfg.Ingestion.FilterDistanceOutliers = true
	}

	// Auth configuration
	if enabled := os.Getenv("AGENTMAP_AUTH_ENABLED"); enabled == "true" {
		cfg.Auth.Enabled = true
		cfg.Auth.SigningKey = os.Getenv("AGENTMAP_AUTH_SIGNING_KEY")
	}

	// Rate limit configuration
	if enabled := os.Getenv("AGENTMAP_RATE_LIMIT_ENABLED"); enabled == "false" {
		cfg.RateLimit.Enabled = false
	}
	if rps := os.Getenv("AGENTMAP_RATE_LIMIT_RPS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimit.RequestsPerSecond = v
		}
	}
	if burst := os.Getenv("AGENTMAP_RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimit.Burst = v
		}
	}

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxConnections < 1 {
		return fmt.Errorf("invalid max connections: %d (must be > 0)", c.Server.MaxConnections)
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
	}

	if c.Index.SplitThreshold < 1 {
		return fmt.Errorf("invalid split threshold: %d (must be > 0)", c.Index.SplitThreshold)
	}
	if c.Index.ParallelBuildMinSize < 1 {
		return fmt.Errorf("invalid parallel build min size: %d (must be > 0)", c.Index.ParallelBuildMinSize)
	}
	if c.Index.WorkerPoolSize < 1 {
		return fmt.Errorf("invalid worker pool size: %d (must be > 0)", c.Index.WorkerPoolSize)
	}
	if c.Index.DefaultK < 1 {
		return fmt.Errorf("invalid default k: %d (must be > 0)", c.Index.DefaultK)
	}

	if c.Ingestion.DataDir == "" {
		return fmt.Errorf("data directory not specified")
	}
	if c.Ingestion.TukeyFenceK <= 0 {
		return fmt.Errorf("invalid tukey fence multiplier: %v (must be > 0)", c.Ingestion.TukeyFenceK)
	}

	if c.Auth.Enabled && c.Auth.SigningKey == "" {
		return fmt.Errorf("auth enabled but signing key not specified")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("invalid rate limit: %v (must be > 0)", c.RateLimit.RequestsPerSecond)
		}
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("invalid rate limit burst: %d (must be > 0)", c.RateLimit.Burst)
		}
	}

	return nil
}

// Address returns the server address (host:port)
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
