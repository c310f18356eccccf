package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/arrayschema"
	"github.com/aretw0/arrayschema/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "arrayschema.yaml"

// EnvPrefix prefixes environment overrides, e.g. ARRAYSCHEMA_STORE_BACKEND.
const EnvPrefix = "ARRAYSCHEMA"

// Config is the application configuration.
type Config struct {
	Store  arrayschema.StoreConfig `mapstructure:"store" yaml:"store"`
	Server ServerConfig            `mapstructure:"server" yaml:"server"`
	Log    LogConfig               `mapstructure:"log" yaml:"log"`
}

// ServerConfig configures the HTTP and SSE listeners.
type ServerConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr"`
	MCPAddr string `mapstructure:"mcp_addr" yaml:"mcp_addr"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

var ErrLogFormatUnknown = errors.New("unknown log format")

// Validate checks the store selection and logging settings.
func (c Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch logging.Format(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrLogFormatUnknown, c.Log.Format)
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"backend":    "store.backend",
	"store-dir":  "store.dir",
	"redis-addr": "store.redis.addr",
	"addr":       "server.addr",
	"mcp-addr":   "server.mcp_addr",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func defaults(v *viper.Viper) {
	v.SetDefault("store.backend", arrayschema.BackendFile)
	v.SetDefault("store.dir", ".arrayschema/schemas")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "")
	v.SetDefault("store.redis.ttl", "0s")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mcp_addr", ":8081")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(logging.FormatText))
}

// Load resolves the configuration from, in increasing precedence, the
// defaults, the YAML file at path, ARRAYSCHEMA_* environment variables and
// the flags in flags that were explicitly set. A missing file at the
// default path is not an error; a missing explicit path is.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound)
		if explicit || !missing {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
