// Package config provides Viper-based configuration loading for the rules engine.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// StorageConfig selects the document store backend.
type StorageConfig struct {
	// Backend is one of "memory", "sqlite", "postgres", "redis".
	Backend string `mapstructure:"backend"`
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// KeyPrefix namespaces every document key.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DiscordConfig enables the Discord chat sink and notifier.
type DiscordConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
}

// QueueConfig tunes the update coalescing queue.
type QueueConfig struct {
	// DrainConcurrency bounds how many entities are written in parallel per drain.
	DrainConcurrency int `mapstructure:"drain_concurrency"`
	// ItemDebounce is the delay before an item-driven recomputation pass fires.
	ItemDebounce time.Duration `mapstructure:"item_debounce"`
}

// RulesConfig holds the table-wide rule switches.
type RulesConfig struct {
	// SpendPMAlways spends a spell's cost regardless of outcome when true,
	// and only on success otherwise.
	SpendPMAlways bool `mapstructure:"gasta_pm_sempre"`
	// ShowFormulas includes the dice breakdown in chat cards.
	ShowFormulas bool `mapstructure:"mostrar_formulas"`
	// AutoMacros loads the bundled critical-outcome scripts.
	AutoMacros bool `mapstructure:"criar_macros_auto"`
	// DebugMode forces debug logging.
	DebugMode bool `mapstructure:"debug_mode"`
}

// ScriptingConfig controls the Lua callback runtime.
type ScriptingConfig struct {
	ScriptDir        string `mapstructure:"script_dir"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
}

// ContentConfig points at static game content.
type ContentConfig struct {
	ItemsDir string `mapstructure:"items_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Discord   DiscordConfig   `mapstructure:"discord"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Content   ContentConfig   `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Storage.Backend == "redis" && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr must not be empty when storage.backend is redis")
	}
	if err := validateDiscord(c.Discord); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateQueue(c.Queue); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	validBackends := map[string]bool{"memory": true, "sqlite": true, "postgres": true, "redis": true}
	if !validBackends[s.Backend] {
		return fmt.Errorf("storage.backend must be one of [memory, sqlite, postgres, redis], got %q", s.Backend)
	}
	if s.Backend == "sqlite" && s.SQLitePath == "" {
		return errors.New("storage.sqlite_path must not be empty when storage.backend is sqlite")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDiscord(d DiscordConfig) error {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Token == "" {
		errs = append(errs, "discord.token must not be empty when discord is enabled")
	}
	if d.ChannelID == "" {
		errs = append(errs, "discord.channel_id must not be empty when discord is enabled")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateQueue(q QueueConfig) error {
	var errs []string
	if q.DrainConcurrency < 1 {
		errs = append(errs, fmt.Sprintf("queue.drain_concurrency must be >= 1, got %d", q.DrainConcurrency))
	}
	if q.ItemDebounce <= 0 {
		errs = append(errs, fmt.Sprintf("queue.item_debounce must be > 0, got %s", q.ItemDebounce))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// EffectiveLogging returns the logging section with DebugMode applied.
//
// Postcondition: Level is "debug" whenever Rules.DebugMode is set.
func (c Config) EffectiveLogging() LoggingConfig {
	l := c.Logging
	if c.Rules.DebugMode {
		l.Level = "debug"
	}
	return l
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with TABERNA_ prefix
	v.SetEnvPrefix("TABERNA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Config holding every default value.
//
// Postcondition: the result passes Validate.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.sqlite_path", "taberna.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "taberna")
	v.SetDefault("database.password", "taberna")
	v.SetDefault("database.name", "taberna")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "taberna")

	v.SetDefault("discord.enabled", false)
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.channel_id", "")

	v.SetDefault("queue.drain_concurrency", 4)
	v.SetDefault("queue.item_debounce", "50ms")

	v.SetDefault("rules.gasta_pm_sempre", true)
	v.SetDefault("rules.mostrar_formulas", true)
	v.SetDefault("rules.criar_macros_auto", true)
	v.SetDefault("rules.debug_mode", false)

	v.SetDefault("scripting.script_dir", "content/scripts")
	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("content.items_dir", "content/items")
}
