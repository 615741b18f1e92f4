package config

import (
	"fmt"

	"habitgrid/pkg/config"
)

type Config struct {
	Server config.ServerConfig `yaml:"server"`
	Log    config.LogConfig    `yaml:"log"`
	Store  config.StoreConfig  `yaml:"store"`
	DB     config.DBConfig     `yaml:"db"`
	MQ     config.MQConfig     `yaml:"mq"`
	Redis  config.RedisConfig  `yaml:"redis"`
	JWT    config.JWTConfig    `yaml:"jwt"`
}

// Load 读取 CONFIG_DIR（默认 config）下的 base.yaml + CONFIG_ENV.yaml，环境变量优先
func Load() (*Config, error) {
	return LoadFrom(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
}

func LoadFrom(envName, dir string) (*Config, error) {
	var cfg Config
	if err := config.Load(envName, dir, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "postgres"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "habitgrid.db"
	}
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	return nil
}
