// Package config loads netkitd's configuration from file, environment,
// and defaults, following the same viper/mapstructure/yaml layering as
// the teacher's configuration loader.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/netkitd/netkitd/internal/bytesize"
)

// Config is netkitd's top-level configuration.
//
// Configuration sources, highest precedence first:
//  1. Environment variables (NETKITD_*)
//  2. Configuration file (YAML)
//  3. Default values
type Config struct {
	Logging         LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry       TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
	NFS             NFSConfig       `mapstructure:"nfs" yaml:"nfs"`
	Subnet          SubnetConfig    `mapstructure:"subnet" yaml:"subnet"`
	Metrics         MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	Enabled    bool            `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string          `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool            `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64         `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
	Profiling  ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// NFSConfig configures the NFSv4 server and its single export root.
type NFSConfig struct {
	// ExportRoot is the directory this server exposes over NFSv4.
	ExportRoot string `mapstructure:"export_root" validate:"required" yaml:"export_root"`

	// BindAddress is the TCP address the NFSv4 server listens on.
	// Default: "127.0.0.1:2049"
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address"`

	// ReadOnly exports the root without any write operations.
	ReadOnly bool `mapstructure:"read_only" yaml:"read_only"`

	// MaxCompoundOps is loaded and validated but not passed to the NFSv4
	// server; the number of operations in a COMPOUND request is not
	// limited.
	MaxCompoundOps int `mapstructure:"max_compound_ops" validate:"omitempty,gt=0" yaml:"max_compound_ops"`

	// MaxRequestsPerConnection bounds concurrent in-flight requests per
	// TCP connection.
	MaxRequestsPerConnection int `mapstructure:"max_requests_per_connection" validate:"omitempty,gt=0" yaml:"max_requests_per_connection"`

	// MaxReadSize/MaxWriteSize cap a single READ/WRITE payload.
	MaxReadSize  bytesize.ByteSize `mapstructure:"max_read_size" yaml:"max_read_size"`
	MaxWriteSize bytesize.ByteSize `mapstructure:"max_write_size" yaml:"max_write_size"`

	// Timeouts bound idle connections and individual read/write syscalls.
	Timeouts NFSTimeoutsConfig `mapstructure:"timeouts" yaml:"timeouts"`
}

// NFSTimeoutsConfig bounds how long a connection may sit idle or block
// on a single read/write.
type NFSTimeoutsConfig struct {
	Idle  time.Duration `mapstructure:"idle" yaml:"idle"`
	Read  time.Duration `mapstructure:"read" yaml:"read"`
	Write time.Duration `mapstructure:"write" yaml:"write"`
}

// SubnetConfig configures the subnet manager and its HTTP facade.
type SubnetConfig struct {
	// BindAddress is the HTTP address the subnet facade listens on.
	// Default: "127.0.0.1:3031", matching the original daemon's port.
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address"`

	// AllowedNetwork names the range subnets may be carved from.
	// Default: "10.0.0.0/8"
	// The value is loaded but not passed to the subnet manager, which
	// always uses its fixed 10.0.0.0/8 range.
	AllowedNetwork string `mapstructure:"allowed_network" yaml:"allowed_network"`

	// ProtectedNetworks names ranges an allocated subnet may not overlap.
	// The value is loaded but not passed to the subnet manager, which
	// always protects its fixed 127.0.0.0/8 and 169.254.0.0/16 ranges.
	ProtectedNetworks []string `mapstructure:"protected_networks" yaml:"protected_networks"`

	// PlatformOverride names a backend ("linux", "bsd"). The value is
	// loaded but not passed to the subnet manager, which always uses the
	// backend built for the host's OS.
	PlatformOverride string `mapstructure:"platform_override" yaml:"platform_override,omitempty"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when the
// config file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  netkitd init\n\n"+
				"Or specify a custom config file:\n"+
				"  netkitd <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  netkitd init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// InitConfig writes a default configuration file to the default location,
// returning the path it wrote. It refuses to overwrite an existing file
// unless force is true.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes a default configuration file to path. It
// refuses to overwrite an existing file unless force is true.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}
	return SaveConfig(GetDefaultConfig(), path)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("NETKITD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "netkitd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "netkitd")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
