package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`
	Oracle struct {
		URL                 string `yaml:"url"`
		PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	} `yaml:"oracle"`
	Exchange struct {
		SpreadBps int64 `yaml:"spread_bps"`
	} `yaml:"exchange"`
	Engine struct {
		Admin        string `yaml:"admin"`
		Agent        string `yaml:"agent"`
		Fee          string `yaml:"fee"`
		FundingAsset string `yaml:"funding_asset"`
		TargetAsset  string `yaml:"target_asset"`
	} `yaml:"engine"`
	Agent struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"agent"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Engine.Admin == "" {
		return errors.New("engine.admin is required")
	}
	if c.Engine.Agent == "" {
		return errors.New("engine.agent is required")
	}
	if c.Engine.FundingAsset == "" || c.Engine.TargetAsset == "" {
		return errors.New("engine.funding_asset and engine.target_asset are required")
	}
	if c.Oracle.URL == "" {
		return errors.New("oracle.url is required")
	}
	if c.Oracle.PollIntervalSeconds <= 0 {
		c.Oracle.PollIntervalSeconds = 60
	}
	if c.Agent.IntervalSeconds <= 0 {
		c.Agent.IntervalSeconds = 30
	}
	if c.Redis.TTLSeconds <= 0 {
		c.Redis.TTLSeconds = 300
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DCA_DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("DCA_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("DCA_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("DCA_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DCA_ORACLE_URL"); v != "" {
		cfg.Oracle.URL = v
	}
	if v := os.Getenv("DCA_AGENT_ID"); v != "" {
		cfg.Engine.Agent = v
	}
}
