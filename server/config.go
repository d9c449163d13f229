package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `yaml:"addr"`
	// PublicDir is the directory served as the web root; stored images live
	// under <PublicDir>/shapes.
	PublicDir string `yaml:"public_dir"`
	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level"`
	// OTLPEndpoint, when set, enables trace export over OTLP/gRPC.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

func DefaultConfig() Config {
	return Config{
		Addr:      ":8080",
		PublicDir: "public",
		LogLevel:  "debug",
	}
}

// LoadConfig reads a YAML config file on top of the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
