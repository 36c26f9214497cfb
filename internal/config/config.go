package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Kalshi   PlatformConfig `mapstructure:"kalshi"`   // Kalshi 上游配置
	Resolver ResolverConfig `mapstructure:"resolver"` // 结算/领先解析配置
	HTTP     HTTPConfig     `mapstructure:"http"`     // 对外响应配置
	Logging  LoggingConfig  `mapstructure:"logging"`  // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`             // 服务端口
	Mode            string        `mapstructure:"mode"`             // Gin运行模式：debug/release/test
	Pprof           bool          `mapstructure:"pprof"`            // 是否注册pprof路由
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // 优雅退出等待时间
}

// PlatformConfig 上游平台配置
type PlatformConfig struct {
	BaseURL        string  `mapstructure:"base_url"`         // API基础地址
	Timeout        int     `mapstructure:"timeout"`          // 单次请求超时（秒）
	Proxy          string  `mapstructure:"proxy"`            // 代理地址
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`   // 每秒请求上限，0 表示不限
	RateLimitBurst int     `mapstructure:"rate_limit_burst"` // 令牌桶容量
	MarketURL      string  `mapstructure:"market_url"`       // 前端展示用的市场页面地址
}

// ResolverConfig 事件 ticker 与状态词表
type ResolverConfig struct {
	TickerPrefixes []string `mapstructure:"ticker_prefixes"` // 按优先级排列的事件前缀
	SeriesTicker   string   `mapstructure:"series_ticker"`   // 系列兜底查询用的 series ticker
	SettledStatus  string   `mapstructure:"settled_status"`  // 系列兜底查询的 status 过滤
	OpenStatuses   []string `mapstructure:"open_statuses"`   // 视为可交易的状态
}

// HTTPConfig CORS 与缓存头
type HTTPConfig struct {
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
	SettledCacheControl string   `mapstructure:"settled_cache_control"`
	LiveCacheControl    string   `mapstructure:"live_cache_control"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level      string `mapstructure:"level"`        // debug/info/warn/error
	Format     string `mapstructure:"format"`       // json/text
	File       string `mapstructure:"file"`         // 为空则只输出到stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单个日志文件大小上限
	MaxBackups int    `mapstructure:"max_backups"`  // 保留的历史文件数
	MaxAgeDays int    `mapstructure:"max_age_days"` // 历史文件保留天数
}

// Load 加载配置文件，.env（若存在）与 KALSHI_ORACLE_ 前缀的环境变量覆盖同名字段
func Load(path string) (*Config, error) {
	// 1. 加载 .env，不存在则忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KALSHI_ORACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 2. 读取 yaml
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.pprof", false)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("kalshi.base_url", "https://api.elections.kalshi.com/trade-api/v2")
	v.SetDefault("kalshi.timeout", 5)
	v.SetDefault("kalshi.rate_limit_rps", 10.0)
	v.SetDefault("kalshi.rate_limit_burst", 5)
	v.SetDefault("kalshi.market_url", "https://kalshi.com/markets/kxhighny")

	v.SetDefault("resolver.ticker_prefixes", []string{"KXHIGHNY", "HIGHNY"})
	v.SetDefault("resolver.series_ticker", "KXHIGHNY")
	v.SetDefault("resolver.settled_status", "settled")
	v.SetDefault("resolver.open_statuses", []string{"open", "trading", "active"})

	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("http.settled_cache_control", "s-maxage=300, stale-while-revalidate=60")
	v.SetDefault("http.live_cache_control", "no-store")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 7)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Kalshi.BaseURL == "" {
		return fmt.Errorf("kalshi.base_url is required")
	}
	if c.Kalshi.Timeout <= 0 {
		return fmt.Errorf("kalshi.timeout must be positive")
	}
	if c.Kalshi.RateLimitRPS < 0 {
		return fmt.Errorf("kalshi.rate_limit_rps must not be negative")
	}
	if len(c.Resolver.TickerPrefixes) == 0 {
		return fmt.Errorf("resolver.ticker_prefixes must contain at least one prefix")
	}
	for _, p := range c.Resolver.TickerPrefixes {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("resolver.ticker_prefixes must not contain empty prefixes")
		}
	}
	if c.Resolver.SeriesTicker == "" {
		return fmt.Errorf("resolver.series_ticker is required")
	}
	if len(c.Resolver.OpenStatuses) == 0 {
		return fmt.Errorf("resolver.open_statuses must contain at least one status")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	return nil
}

// RequestTimeout 单次上游请求超时
func (p *PlatformConfig) RequestTimeout() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}
