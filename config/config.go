package config

import (
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"
)

type DatabaseConfig struct {
	Driver  string `yaml:"driver"`
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
	User    string `yaml:"user"`
	Pass    string `yaml:"pass"`
	Name    string `yaml:"name"`
	SSLMode string `yaml:"sslmode"`
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type SentinelConfig struct {
	DiagnosticEveryMinutes uint64 `yaml:"diagnostic_every_minutes"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Sentinel SentinelConfig `yaml:"sentinel"`
}

// Load reads the YAML file at path when it exists, then applies
// environment overrides. A missing file is not an error so deployments
// can run on environment variables alone.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "require",
		},
		Log: LogConfig{Level: "info"},
		Sentinel: SentinelConfig{
			DiagnosticEveryMinutes: 5,
		},
	}

	if body, err := ioutil.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(body, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(&cfg.Database.Driver, "DATABASE_DRIVER")
	applyEnv(&cfg.Database.Host, "DATABASE_HOST")
	applyEnv(&cfg.Database.Port, "DATABASE_PORT")
	applyEnv(&cfg.Database.User, "DATABASE_USER")
	applyEnv(&cfg.Database.Pass, "DATABASE_PASS")
	applyEnv(&cfg.Database.Name, "DATABASE_NAME")
	applyEnv(&cfg.Database.SSLMode, "DATABASE_SSLMODE")
	applyEnv(&cfg.Database.Path, "DATABASE_PATH")
	applyEnv(&cfg.Log.Level, "LOG_LEVEL")

	return cfg, nil
}

func applyEnv(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}
