package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrMissingToken          = errors.New("discord token must be set")
	ErrInvalidSharding       = errors.New("shard_id must be in [0, shard_count)")
)

// CurrentBotVersion is the config file version this binary expects.
const CurrentBotVersion = 1

// Config represents the entire application configuration.
type Config struct {
	// Version of the bot config.
	Version    int        `koanf:"version"`
	Debug      Debug      `koanf:"debug"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Redis      Redis      `koanf:"redis"`
	Discord    Discord    `koanf:"discord"`
	Raid       Raid       `koanf:"raid"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Discord contains Discord gateway and credential configuration.
type Discord struct {
	// Primary gateway token.
	Token string `koanf:"token"`
	// Tokens for the additional ban credentials. Each runs its own
	// rate-limit budget; the primary token is always included in the pool.
	CredentialTokens []string `koanf:"credential_tokens"`
	// The partner anti-spam bot whose raid reports we act on.
	PartnerBotID uint64 `koanf:"partner_bot_id"`
	// Channel receiving every sweep report across all guilds. 0 disables it.
	GlobalLogChannelID uint64 `koanf:"global_log_channel_id"`
	// This process's shard index.
	ShardID int `koanf:"shard_id"`
	// Total number of shard processes.
	ShardCount int `koanf:"shard_count"`
}

// Raid contains raid pipeline configuration.
type Raid struct {
	// Raid log fetch timeout in milliseconds.
	FetchTimeout int `koanf:"fetch_timeout"`
	// Hastebin-compatible base URL for ban log artifacts.
	HastebinURL string `koanf:"hastebin_url"`
	// Haste upload timeout in milliseconds.
	UploadTimeout int `koanf:"upload_timeout"`
}

// LoadConfig loads the configuration from the first bot.toml found in the
// search paths. Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configPaths := []string{
		".hiveguard",
		homeDir + "/.hiveguard/config",
		"/etc/hiveguard/config",
		"/app/config",
		"config",
		".",
	}

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/bot.toml", path)
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}

	if usedConfigPath == "" {
		return nil, "", fmt.Errorf("%w: bot.toml", ErrConfigFileNotFound)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion(config.Version, CurrentBotVersion); err != nil {
		return nil, "", err
	}

	if err := config.Validate(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// Validate enforces the invariants the rest of the process relies on.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return ErrMissingToken
	}

	if c.Discord.ShardCount < 1 {
		c.Discord.ShardCount = 1
	}

	if c.Discord.ShardID < 0 || c.Discord.ShardID >= c.Discord.ShardCount {
		return fmt.Errorf("%w: shard_id=%d shard_count=%d",
			ErrInvalidSharding, c.Discord.ShardID, c.Discord.ShardCount)
	}

	return nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: bot.toml", ErrConfigVersionMissing)
	}

	if current != expected {
		return fmt.Errorf("%w: bot.toml (got: %d, expected: %d)",
			ErrConfigVersionMismatch, current, expected)
	}

	return nil
}
