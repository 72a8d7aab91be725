// Package config loads the btmon configuration from defaults, an optional
// TOML file, BTMON_* environment variables and command line flags (in
// increasing order of precedence).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = "btmon"
	envPrefix  = "BTMON"

	KeyTimeout      = "timeout"
	KeyPumpInterval = "pump_interval"
	KeyBackend      = "backend"
	KeyAdapter      = "adapter"
	KeyDBusAddress  = "dbus_address"
	KeyFormat       = "format"
	KeyDebug        = "debug"

	BackendBlueZ = "bluez"
	BackendGATT  = "gatt"

	FormatText = "text"
	FormatJSON = "json"
	FormatTOML = "toml"
)

// Config denotes the effective configuration of a btmon run
type Config struct {
	Timeout      time.Duration
	PumpInterval time.Duration
	Backend      string
	Adapter      string
	DBusAddress  string
	Format       string
	Debug        bool
}

// Load reads the configuration. If path is empty, the default config file
// location is searched and a missing file is not an error. Flags are bound by
// their config key, with dashes instead of underscores.
func Load(v *viper.Viper, path string, flags *pflag.FlagSet) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetDefault(KeyTimeout, 2*time.Second)
	v.SetDefault(KeyPumpInterval, 100*time.Millisecond)
	v.SetDefault(KeyBackend, BackendBlueZ)
	v.SetDefault(KeyAdapter, "")
	v.SetDefault(KeyDBusAddress, "")
	v.SetDefault(KeyFormat, FormatText)
	v.SetDefault(KeyDebug, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{KeyTimeout, KeyPumpInterval, KeyBackend, KeyAdapter, KeyDBusAddress, KeyFormat, KeyDebug} {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else if dir, err := defaultConfigDir(); err == nil {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := Config{
		Timeout:      v.GetDuration(KeyTimeout),
		PumpInterval: v.GetDuration(KeyPumpInterval),
		Backend:      strings.ToLower(v.GetString(KeyBackend)),
		Adapter:      v.GetString(KeyAdapter),
		DBusAddress:  v.GetString(KeyDBusAddress),
		Format:       strings.ToLower(v.GetString(KeyFormat)),
		Debug:        v.GetBool(KeyDebug),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	if c.PumpInterval <= 0 {
		return fmt.Errorf("invalid pump interval %s", c.PumpInterval)
	}
	switch c.Backend {
	case BackendBlueZ, BackendGATT:
	default:
		return fmt.Errorf("unsupported backend %q (want %s|%s)", c.Backend, BackendBlueZ, BackendGATT)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatTOML:
	default:
		return fmt.Errorf("unsupported format %q (want %s|%s|%s)", c.Format, FormatText, FormatJSON, FormatTOML)
	}
	return nil
}

func defaultConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, configDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", configDir), nil
}
