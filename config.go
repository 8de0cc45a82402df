package bingo

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config 配置结构
type Config struct {
	// 游戏配置
	Game *GameConfig `mapstructure:"game"`

	// 显示配置
	Display *DisplayConfig `mapstructure:"display"`

	// 日志配置
	Log *LogConfig `mapstructure:"log"`

	// 熔断器配置
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// Validate checks every section; nil sections are invalid
func (c *Config) Validate() error {
	if c.Game == nil || c.Display == nil || c.Log == nil || c.CircuitBreaker == nil {
		return ErrConfigInvalid.WithDetails("missing configuration section")
	}
	if err := c.Game.Validate(); err != nil {
		return err
	}
	if err := c.Display.Validate(); err != nil {
		return err
	}
	return c.CircuitBreaker.Validate()
}

// GameConfig controls how numbers are drawn
type GameConfig struct {
	Strategy     string `mapstructure:"strategy"`
	RandomSource string `mapstructure:"random_source"`
	Seed         int64  `mapstructure:"seed"`
}

// DefaultGameConfig 返回默认游戏配置
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Strategy:     DefaultStrategy,
		RandomSource: DefaultRandomSource,
	}
}

func (g *GameConfig) Validate() error {
	switch g.Strategy {
	case StrategyRejection, StrategyShuffle:
	default:
		return ErrInvalidStrategy.WithDetails(fmt.Sprintf("got %q", g.Strategy))
	}

	switch g.RandomSource {
	case RandomSourceSecure, RandomSourceSeeded:
	default:
		return ErrInvalidRandomSource.WithDetails(fmt.Sprintf("got %q", g.RandomSource))
	}
	return nil
}

// DisplayConfig controls the board; it is the only section applied on hot reload
type DisplayConfig struct {
	Language string `mapstructure:"language"`
	Color    string `mapstructure:"color"`
}

// DefaultDisplayConfig 返回默认显示配置
func DefaultDisplayConfig() *DisplayConfig {
	return &DisplayConfig{
		Language: DefaultLanguage,
		Color:    DefaultColorMode,
	}
}

func (d *DisplayConfig) Validate() error {
	switch d.Language {
	case LanguageEnglish, LanguagePortuguese:
	default:
		return ErrInvalidLanguage.WithDetails(fmt.Sprintf("got %q", d.Language))
	}

	switch d.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return ErrInvalidColorMode.WithDetails(fmt.Sprintf("got %q", d.Color))
	}
	return nil
}

// LogConfig 日志配置
type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Name          string        `mapstructure:"name"`
	MaxRequests   uint32        `mapstructure:"max_requests"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FailureRatio  float64       `mapstructure:"failure_ratio"`
	MinRequests   uint32        `mapstructure:"min_requests"`
	OnStateChange bool          `mapstructure:"on_state_change"`
}

// DefaultCircuitBreakerConfig 返回默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Enabled:       true,
		Name:          DefaultCircuitBreakerName,
		MaxRequests:   DefaultCircuitBreakerMaxRequests,
		Interval:      DefaultCircuitBreakerInterval,
		Timeout:       DefaultCircuitBreakerTimeout,
		FailureRatio:  DefaultCircuitBreakerFailureRatio,
		MinRequests:   DefaultCircuitBreakerMinRequests,
		OnStateChange: DefaultCircuitBreakerOnStateChange,
	}
}

func (c *CircuitBreakerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		return ErrConfigInvalid.WithDetails("circuit_breaker.failure_ratio must be in (0, 1]")
	}
	if c.Timeout < 0 || c.Interval < 0 {
		return ErrConfigInvalid.WithDetails("circuit_breaker durations cannot be negative")
	}
	return nil
}

// DefaultConfig returns the configuration used when no file or env overrides exist
func DefaultConfig() *Config {
	return &Config{
		Game:           DefaultGameConfig(),
		Display:        DefaultDisplayConfig(),
		Log:            &LogConfig{},
		CircuitBreaker: DefaultCircuitBreakerConfig(),
	}
}

// ConfigManager 配置管理器
type ConfigManager struct {
	viper *viper.Viper

	mu     sync.RWMutex
	config *Config
	logger Logger
}

// NewConfigManager 创建配置管理器
func NewConfigManager() *ConfigManager {
	v := viper.New()

	// 设置配置文件名和路径
	v.SetConfigName("bingo")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/bingo")
	v.AddConfigPath("$HOME/.bingo")

	// 设置环境变量前缀
	v.SetEnvPrefix("BINGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigManager{
		viper:  v,
		logger: NewSilentLogger(),
	}
}

// SetLogger sets the logger used for reload diagnostics
func (cm *ConfigManager) SetLogger(logger Logger) {
	if logger != nil {
		cm.logger = logger
	}
}

// SetConfigFile uses an explicit file instead of the search paths
func (cm *ConfigManager) SetConfigFile(path string) {
	if path != "" {
		cm.viper.SetConfigFile(path)
	}
}

// BindFlags binds command-line flags to config keys, e.g. "seed" -> "game.seed"
func (cm *ConfigManager) BindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for flagName, key := range keys {
		flag := flags.Lookup(flagName)
		if flag == nil {
			return ErrInvalidParameters.WithDetails(fmt.Sprintf("unknown flag %q", flagName))
		}
		if err := cm.viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// LoadConfig 加载配置
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	// 设置默认值
	cm.setDefaults()

	// 读取配置文件
	if err := cm.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// 配置文件不存在时使用默认配置
	}

	config, err := cm.decode()
	if err != nil {
		return nil, err
	}

	cm.mu.Lock()
	cm.config = config
	cm.mu.Unlock()
	return config, nil
}

func (cm *ConfigManager) decode() (*Config, error) {
	config := &Config{}
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// viper 的字符串值不区分大小写地接受
	if config.Game != nil {
		config.Game.Strategy = strings.ToLower(config.Game.Strategy)
		config.Game.RandomSource = strings.ToLower(config.Game.RandomSource)
	}
	if config.Display != nil {
		config.Display.Language = strings.ToLower(config.Display.Language)
		config.Display.Color = strings.ToLower(config.Display.Color)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// setDefaults 设置默认配置值
func (cm *ConfigManager) setDefaults() {
	// 游戏默认配置
	cm.viper.SetDefault("game.strategy", DefaultStrategy)
	cm.viper.SetDefault("game.random_source", DefaultRandomSource)
	cm.viper.SetDefault("game.seed", 0)

	// 显示默认配置
	cm.viper.SetDefault("display.language", DefaultLanguage)
	cm.viper.SetDefault("display.color", DefaultColorMode)

	cm.viper.SetDefault("log.debug", false)

	// 熔断器默认配置
	cm.viper.SetDefault("circuit_breaker.enabled", true)
	cm.viper.SetDefault("circuit_breaker.name", DefaultCircuitBreakerName)
	cm.viper.SetDefault("circuit_breaker.max_requests", DefaultCircuitBreakerMaxRequests)
	cm.viper.SetDefault("circuit_breaker.interval", DefaultCircuitBreakerInterval.String())
	cm.viper.SetDefault("circuit_breaker.timeout", DefaultCircuitBreakerTimeout.String())
	cm.viper.SetDefault("circuit_breaker.failure_ratio", DefaultCircuitBreakerFailureRatio)
	cm.viper.SetDefault("circuit_breaker.min_requests", DefaultCircuitBreakerMinRequests)
	cm.viper.SetDefault("circuit_breaker.on_state_change", DefaultCircuitBreakerOnStateChange)
}

// WatchConfig 监听配置变化
//
// Returns false when no config file is in use and there is nothing to watch.
func (cm *ConfigManager) WatchConfig(callback func(*Config)) bool {
	if cm.viper.ConfigFileUsed() == "" {
		return false
	}

	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		config, err := cm.decode()
		if err != nil {
			// 记录错误但不中断服务
			cm.logger.Error("Ignoring config change from %s: %v", e.Name, err)
			return
		}

		cm.mu.Lock()
		cm.config = config
		cm.mu.Unlock()

		cm.logger.Info("Config reloaded from %s", e.Name)
		if callback != nil {
			callback(config)
		}
	})
	cm.viper.WatchConfig()

	return true
}

// GetConfig 获取当前配置
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.config
}

// ReloadConfig 重新加载配置
//
// On error GetConfig keeps returning the previously loaded config.
func (cm *ConfigManager) ReloadConfig() (*Config, error) { return cm.LoadConfig() }

// NewDefaultConfigManager 创建默认配置管理器
func NewDefaultConfigManager() *ConfigManager {
	cm := NewConfigManager()
	cm.setDefaults()
	cm.config = DefaultConfig()
	return cm
}
