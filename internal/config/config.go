package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Telegram TelegramConfig
	Vision   VisionConfig
	Bank     BankConfig
	Log      LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// TelegramConfig holds transport settings. OwnerChatID enables owner
// notifications when non-zero.
type TelegramConfig struct {
	Token       string
	OwnerChatID int64 `mapstructure:"owner_chat_id"`
}

// VisionConfig holds banknote-scoring provider settings.
type VisionConfig struct {
	Provider  string
	APIKeyEnv string `mapstructure:"api_key_env"`
	APIKey    string `mapstructure:"api_key"`
	Model     string
}

// BankConfig holds ledger tunables.
type BankConfig struct {
	NoteValue    int64 `mapstructure:"note_value"`
	Jackpot      int64
	AlbumQuietMS int64 `mapstructure:"album_quiet_ms"`
}

// LogConfig selects the zap profile.
type LogConfig struct {
	Mode string
}

// AlbumQuiet returns the album debounce as a duration.
func (b BankConfig) AlbumQuiet() time.Duration {
	return time.Duration(b.AlbumQuietMS) * time.Millisecond
}

// Load reads configuration from file and env. Env var overrides use prefix LOVEBANK_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "lovebank", "lovebank.db"))
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.owner_chat_id", 0)
	v.SetDefault("vision.provider", "openai")
	v.SetDefault("vision.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.model", "gpt-4o-mini")
	v.SetDefault("bank.note_value", 100)
	v.SetDefault("bank.jackpot", 5000)
	v.SetDefault("bank.album_quiet_ms", 1200)
	v.SetDefault("log.mode", "dev")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("LOVEBANK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "lovebank"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LOVEBANK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// ResolveVisionKey prefers the configured env var, then the inline key.
// Inline keys in the config file are discouraged; env vars win.
func ResolveVisionKey(cfg Config) string {
	if env := strings.TrimSpace(cfg.Vision.APIKeyEnv); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return strings.TrimSpace(cfg.Vision.APIKey)
}
