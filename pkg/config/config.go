// Package config loads the worker configuration: the one place the
// deployment parameterizes {version, static asset manifest, dynamic
// route patterns, cache backend}. A single configured worker replaces
// hand-edited per-environment script variants.
package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// StoreConfig selects and parameterizes the cache backend.
type StoreConfig struct {
	// Backend is one of "memory", "redis", "leveldb".
	Backend string `yaml:"backend"`

	Redis struct {
		Addr string `yaml:"addr"`
		DB   int    `yaml:"db"`
	} `yaml:"redis"`

	LevelDB struct {
		Path string `yaml:"path"`
	} `yaml:"leveldb"`
}

// Config is the full worker configuration.
type Config struct {
	// Version identifies the deployment; bump it whenever the manifest
	// or strategies change so activation can drop stale stores.
	Version string `yaml:"version"`

	// CacheName is the store name prefix.
	CacheName string `yaml:"cache_name"`

	// Upstream is the origin the worker fronts.
	Upstream string `yaml:"upstream"`

	// Precache is the static asset manifest fetched at install time.
	Precache []string `yaml:"precache"`

	// APIHosts are backend API providers (matched with subdomains);
	// their failures synthesize the structured JSON 503.
	APIHosts []string `yaml:"api_hosts"`

	// ImageHosts are external image/CDN providers; their failures
	// synthesize an empty 404.
	ImageHosts []string `yaml:"image_hosts"`

	// IconPathPrefix marks icon assets, served cache-first and failing
	// silently.
	IconPathPrefix string `yaml:"icon_path_prefix"`

	// ManifestPath is the web app manifest path, served cache-first.
	ManifestPath string `yaml:"manifest_path"`

	Store StoreConfig `yaml:"store"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Default returns the configuration defaults applied before file
// values.
func Default() Config {
	var cfg Config
	cfg.CacheName = "offline"
	cfg.IconPathPrefix = "/icons/"
	cfg.ManifestPath = "/manifest.json"
	cfg.Store.Backend = "memory"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads and validates a YAML configuration file.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for deployability.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.Upstream == "" {
		return fmt.Errorf("upstream is required")
	}
	u, err := url.Parse(c.Upstream)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream %q is not an absolute URL", c.Upstream)
	}

	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis backend")
		}
	case "leveldb":
		if c.Store.LevelDB.Path == "" {
			return fmt.Errorf("store.leveldb.path is required for the leveldb backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want memory, redis or leveldb)", c.Store.Backend)
	}

	return nil
}

// UpstreamURL returns the parsed upstream origin. Validate must have
// passed.
func (c *Config) UpstreamURL() (*url.URL, error) {
	return url.Parse(c.Upstream)
}
