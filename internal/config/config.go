package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "TVREMOTE"

// Config is the complete set of tvremote settings
type Config struct {
	LogLevel  string          `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Control   ControlConfig   `mapstructure:"control"`
	Server    ServerConfig    `mapstructure:"server"`
}

// DiscoveryConfig controls the scanners and the coordinator
type DiscoveryConfig struct {
	ScanTimeout time.Duration `mapstructure:"scan_timeout" validate:"gt=0"`
	SSDPWindow  time.Duration `mapstructure:"ssdp_window" validate:"gt=0"`
	SSDPTargets []string      `mapstructure:"ssdp_targets" validate:"min=1,dive,required"`
	MDNSBackend string        `mapstructure:"mdns_backend" validate:"oneof=zeroconf hashicorp"`
	Describe    bool          `mapstructure:"describe"`
}

// ControlConfig controls the vendor transports
type ControlConfig struct {
	HTTPTimeout    time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	WSReadyTimeout time.Duration `mapstructure:"ws_ready_timeout" validate:"gt=0"`
	SamsungPort    int           `mapstructure:"samsung_port" validate:"min=1,max=65535"`
	ROAPPort       int           `mapstructure:"roap_port" validate:"min=1,max=65535"`
	AppName        string        `mapstructure:"app_name" validate:"required"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Listen string `mapstructure:"listen" validate:"required,hostname_port"`
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "")
	v.SetDefault("discovery.scan_timeout", 30*time.Second)
	v.SetDefault("discovery.ssdp_window", 5*time.Second)
	v.SetDefault("discovery.ssdp_targets", []string{
		"roku:ecp",
		"urn:dial-multiscreen-org:service:dial:1",
		"urn:schemas-upnp-org:device:MediaRenderer:1",
	})
	v.SetDefault("discovery.mdns_backend", "zeroconf")
	v.SetDefault("discovery.describe", true)
	v.SetDefault("control.http_timeout", 5*time.Second)
	v.SetDefault("control.ws_ready_timeout", 500*time.Millisecond)
	v.SetDefault("control.samsung_port", 8001)
	v.SetDefault("control.roap_port", 8080)
	v.SetDefault("control.app_name", appName)
	v.SetDefault("server.listen", ":7420")
}

// New returns a viper instance with defaults and environment overrides wired.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path (or the default location when path is
// empty), applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		defaultPath, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(defaultPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config must exist; the default file is optional.
		if path != "" || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates a Config from v
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
