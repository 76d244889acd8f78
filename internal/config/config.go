package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds a whole command invocation when clusters.yml sets none.
const DefaultTimeout = 30 * time.Second

// Supported values for auth.mechanism.
const (
	AuthUnauthenticated = "UNAUTHENTICATED"
	AuthPassword        = "PASSWORD"
)

// Config represents the top-level clusters.yml configuration
type Config struct {
	Version   string          `yaml:"version"`
	Clusters  []Cluster       `yaml:"clusters"`
	Discovery DiscoveryConfig `yaml:"discovery,omitempty"`
	Timeout   time.Duration   `yaml:"timeout,omitempty"` // Per-command deadline (default 30s)
}

// Cluster describes how to reach one cluster's scheduler
type Cluster struct {
	Name         string     `yaml:"name"`
	RedisURL     string     `yaml:"redis_url"`               // Required: where the scheduler publishes its state
	SchedulerURL string     `yaml:"scheduler_url,omitempty"` // Web UI root, used by `job open`
	Auth         AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig selects the session authentication for a cluster
type AuthConfig struct {
	Mechanism   string `yaml:"mechanism,omitempty"`    // UNAUTHENTICATED (default) or PASSWORD
	PasswordEnv string `yaml:"password_env,omitempty"` // Env var holding the password (PASSWORD only)
}

// DiscoveryConfig enables additional cluster sources
type DiscoveryConfig struct {
	Docker bool `yaml:"docker,omitempty"` // Merge clusters advertised by local Docker containers
}

// Validate performs strict validation on the configuration and applies defaults
func (c *Config) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Clusters may come from discovery alone
	if len(c.Clusters) == 0 && !c.Discovery.Docker {
		return fmt.Errorf("no clusters defined")
	}

	seen := make(map[string]bool, len(c.Clusters))
	for i := range c.Clusters {
		cl := &c.Clusters[i]
		if err := cl.Validate(); err != nil {
			return err
		}
		if seen[cl.Name] {
			return fmt.Errorf("duplicate cluster name '%s'", cl.Name)
		}
		seen[cl.Name] = true
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}

	return nil
}

// Validate performs validation on a single cluster entry
func (cl *Cluster) Validate() error {
	// Required: name, usable as a job key segment
	if cl.Name == "" {
		return fmt.Errorf("cluster name is required")
	}
	if strings.ContainsAny(cl.Name, "/*?[") {
		return fmt.Errorf("cluster '%s': name must not contain '/' or wildcard characters", cl.Name)
	}

	// Required: redis_url
	if cl.RedisURL == "" {
		return fmt.Errorf("cluster '%s': redis_url is required", cl.Name)
	}
	if _, err := redis.ParseURL(cl.RedisURL); err != nil {
		return fmt.Errorf("cluster '%s': invalid redis_url: %w", cl.Name, err)
	}

	// Auth defaults to unauthenticated
	if cl.Auth.Mechanism == "" {
		cl.Auth.Mechanism = AuthUnauthenticated
	}
	switch cl.Auth.Mechanism {
	case AuthUnauthenticated:
	case AuthPassword:
		if cl.Auth.PasswordEnv == "" {
			return fmt.Errorf("cluster '%s': auth.password_env is required for PASSWORD auth", cl.Name)
		}
	default:
		return fmt.Errorf("cluster '%s': invalid auth.mechanism: %s (must be '%s' or '%s')",
			cl.Name, cl.Auth.Mechanism, AuthUnauthenticated, AuthPassword)
	}

	return nil
}

// Load reads and validates clusters.yml from the specified path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultPath returns $AURORA_CONFIG, or ~/.aurora/clusters.yml.
func DefaultPath() string {
	if p := GetEnv(EnvConfigPath, ""); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "clusters.yml"
	}
	return filepath.Join(home, ".aurora", "clusters.yml")
}

// ApplyEnv overlays environment overrides onto a loaded configuration.
func (c *Config) ApplyEnv() {
	c.Timeout = GetDurationEnv(EnvTimeout, c.Timeout)
	c.Discovery.Docker = GetBoolEnv(EnvDiscoverDocker, c.Discovery.Docker)
}
