package config

import (
	"strings"
	"time"

	"github.com/netkitd/netkitd/internal/bytesize"
	"github.com/netkitd/netkitd/internal/subnet"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. Zero values are replaced with defaults; explicit values are
// preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	applyNFSDefaults(&cfg.NFS)
	applySubnetDefaults(&cfg.Subnet)
	applyMetricsDefaults(&cfg.Metrics)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
}

func applyNFSDefaults(cfg *NFSConfig) {
	if cfg.BindAddress == "" {
		cfg.BindAddress = "127.0.0.1:2049"
	}
	if cfg.MaxCompoundOps == 0 {
		cfg.MaxCompoundOps = 64
	}
	if cfg.MaxRequestsPerConnection == 0 {
		cfg.MaxRequestsPerConnection = 32
	}
	if cfg.MaxReadSize == 0 {
		cfg.MaxReadSize = bytesize.MiB
	}
	if cfg.MaxWriteSize == 0 {
		cfg.MaxWriteSize = bytesize.MiB
	}
	if cfg.Timeouts.Idle == 0 {
		cfg.Timeouts.Idle = 5 * time.Minute
	}
	if cfg.Timeouts.Read == 0 {
		cfg.Timeouts.Read = 5 * time.Minute
	}
	if cfg.Timeouts.Write == 0 {
		cfg.Timeouts.Write = 30 * time.Second
	}
}

func applySubnetDefaults(cfg *SubnetConfig) {
	if cfg.BindAddress == "" {
		cfg.BindAddress = "127.0.0.1:3031"
	}
	if cfg.AllowedNetwork == "" {
		cfg.AllowedNetwork = subnet.AllowedNetwork.String()
	}
	if len(cfg.ProtectedNetworks) == 0 {
		for _, n := range subnet.ProtectedNetworks {
			cfg.ProtectedNetworks = append(cfg.ProtectedNetworks, n.String())
		}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.BindAddress == "" {
		cfg.BindAddress = ":9090"
	}
}

// GetDefaultConfig returns a Config with all default values applied,
// suitable for a freshly initialized install (NFS export root still
// needs to be set by the operator).
func GetDefaultConfig() *Config {
	cfg := &Config{
		NFS: NFSConfig{
			ExportRoot: "/srv/netkitd/export",
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
