// config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 比例版本：v1 固定 1:1，v2 允许实例化时配置
const (
	RatioVersionFixed        = "v1"
	RatioVersionConfigurable = "v2"
)

// Config 主配置结构
type Config struct {
	Contract ContractConfig `yaml:"contract"`
	Chain    ChainConfig    `yaml:"chain"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// ContractConfig 合约本身的参数
type ContractConfig struct {
	Name         string `yaml:"name"`          // "crates.io:soulp-astroport-xyk"
	Version      string `yaml:"version"`       // "0.1.0"
	Label        string `yaml:"label"`         // 用于推导合约地址
	Subdenom     string `yaml:"subdenom"`      // "SouLP"
	RatioVersion string `yaml:"ratio_version"` // "v2"
}

// ChainConfig 链相关参数
type ChainConfig struct {
	ChainID      string `yaml:"chain_id"`      // "osmosis-1"
	Bech32Prefix string `yaml:"bech32_prefix"` // "osmo"
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// BadgerDB配置
	Path             string `yaml:"path"`
	InMemory         bool   `yaml:"in_memory"`
	ValueLogFileSize int64  `yaml:"value_log_file_size"` // 64 << 20 (64MB)

	// 写队列
	WriteQueueSize int `yaml:"write_queue_size"` // 4096

	// 回执缓存
	ReceiptCacheSize int `yaml:"receipt_cache_size"` // 1024
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	ListenAddr         string        `yaml:"listen_addr"`           // ":8080"
	ReadTimeout        time.Duration `yaml:"read_timeout"`          // 10s
	WriteTimeout       time.Duration `yaml:"write_timeout"`         // 30s
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`      // 5s
	MaxRequestBodySize int64         `yaml:"max_request_body_size"` // 1 << 20
	RateLimitPerSecond int           `yaml:"rate_limit_per_second"` // 每个 IP，0 表示不限
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level"` // "info"
	Development bool   `yaml:"development"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Contract: ContractConfig{
			Name:         "crates.io:soulp-astroport-xyk",
			Version:      "0.1.0",
			Label:        "soulp-astroport-xyk",
			Subdenom:     "SouLP",
			RatioVersion: RatioVersionConfigurable,
		},
		Chain: ChainConfig{
			ChainID:      "osmosis-1",
			Bech32Prefix: "osmo",
		},
		Database: DatabaseConfig{
			Path:             "./data",
			ValueLogFileSize: 64 << 20,
			WriteQueueSize:   4096,
			ReceiptCacheSize: 1024,
		},
		Server: ServerConfig{
			ListenAddr:         ":8080",
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    5 * time.Second,
			MaxRequestBodySize: 1 << 20,
			RateLimitPerSecond: 200,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFromFile 从 YAML 文件加载配置，未出现的字段保留默认值
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 验证配置合法性
func (c *Config) Validate() error {
	if c.Contract.Subdenom == "" {
		return fmt.Errorf("contract.subdenom must not be empty")
	}
	if c.Contract.Label == "" {
		return fmt.Errorf("contract.label must not be empty")
	}
	switch c.Contract.RatioVersion {
	case RatioVersionFixed, RatioVersionConfigurable:
	default:
		return fmt.Errorf("contract.ratio_version must be %q or %q, got %q",
			RatioVersionFixed, RatioVersionConfigurable, c.Contract.RatioVersion)
	}
	if c.Chain.Bech32Prefix == "" {
		return fmt.Errorf("chain.bech32_prefix must not be empty")
	}
	if !c.Database.InMemory && c.Database.Path == "" {
		return fmt.Errorf("database.path must be set unless in_memory")
	}
	if c.Database.WriteQueueSize <= 0 {
		return fmt.Errorf("database.write_queue_size must be positive")
	}
	if c.Database.ReceiptCacheSize <= 0 {
		return fmt.Errorf("database.receipt_cache_size must be positive")
	}
	return nil
}
