// Package fixclient is the public client-facing API of spec.md §6:
// start/submit/poll_event/end over a Settings struct loaded the way the
// teacher's pkg/config.Load loads its Config -- viper for file/env
// layering, mapstructure decode hooks for time.Duration, go-playground
// validator/v10 struct tags for required fields, YAML for the on-disk
// form.
package fixclient

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings enumerates the configuration table of spec.md §6.
type Settings struct {
	SenderCompID string `mapstructure:"sender_comp_id" yaml:"sender_comp_id" validate:"required"`
	TargetCompID string `mapstructure:"target_comp_id" yaml:"target_comp_id" validate:"required"`
	SocketAddr   string `mapstructure:"socket_addr" yaml:"socket_addr" validate:"required"`
	BeginString  string `mapstructure:"begin_string" yaml:"begin_string" validate:"required,eq=FIX.4.2"`
	Epoch        string `mapstructure:"epoch" yaml:"epoch"`
	StorePath    string `mapstructure:"store_path" yaml:"store_path" validate:"required"`
	LogDir       string `mapstructure:"log_dir" yaml:"log_dir"`

	// StoreBackend selects the durable Store implementation: "badger"
	// (default) or "sql" (internal/fix/store/sqlstore).
	StoreBackend string `mapstructure:"store_backend" yaml:"store_backend" validate:"omitempty,oneof=badger sql"`

	HeartbeatTimeout time.Duration `mapstructure:"heartbeat_timeout" yaml:"heartbeat_timeout" validate:"required,gt=0"`

	// StartTime is a UTC "HH:MM:SS" daily boundary, advisory only
	// (spec.md §4.5.5 "an input to higher-level reconnection policy, not
	// enforced here").
	StartTime string `mapstructure:"start_time" yaml:"start_time"`

	ResetSeqNumOnLogon bool `mapstructure:"reset_seq_num_on_logon" yaml:"reset_seq_num_on_logon"`

	LogonTimeout  time.Duration `mapstructure:"logon_timeout" yaml:"logon_timeout"`
	LogoutTimeout time.Duration `mapstructure:"logout_timeout" yaml:"logout_timeout"`
	SubmitBuffer  int           `mapstructure:"submit_buffer" yaml:"submit_buffer"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"omitempty,oneof=text json"`

	// Profile, if true, makes cmd/fixctl start wire a continuous-profiling
	// hook; it is set in the settings file or environment, not by a
	// command-line flag.
	Profile         bool   `mapstructure:"profile" yaml:"profile"`
	ProfileEndpoint string `mapstructure:"profile_endpoint" yaml:"profile_endpoint"`
}

// ApplyDefaults fills in zero-valued optional fields, mirroring the
// teacher's pkg/config.ApplyDefaults.
func ApplyDefaults(s *Settings) {
	if s.BeginString == "" {
		s.BeginString = "FIX.4.2"
	}
	if s.StoreBackend == "" {
		s.StoreBackend = "badger"
	}
	if s.HeartbeatTimeout <= 0 {
		s.HeartbeatTimeout = 30 * time.Second
	}
	if s.LogonTimeout <= 0 {
		s.LogonTimeout = 10 * time.Second
	}
	if s.LogoutTimeout <= 0 {
		s.LogoutTimeout = 10 * time.Second
	}
	if s.SubmitBuffer <= 0 {
		s.SubmitBuffer = 64
	}
	if s.LogLevel == "" {
		s.LogLevel = "INFO"
	}
	if s.LogFormat == "" {
		s.LogFormat = "text"
	}
}

// Validate runs struct-tag validation (spec.md §7 "SettingRequired").
func Validate(s *Settings) error {
	return validator.New().Struct(s)
}

// Load reads Settings from a YAML file plus FIX_-prefixed environment
// overrides, the same precedence order as the teacher's pkg/config.Load:
// env > file > defaults.
func Load(configPath string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("FIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("fixclient: read config %q: %w", configPath, err)
		}
	}

	var s Settings
	hook := mapstructure.ComposeDecodeHookFunc(durationDecodeHook())
	if err := v.Unmarshal(&s, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("fixclient: unmarshal settings: %w", err)
	}

	ApplyDefaults(&s)
	if err := Validate(&s); err != nil {
		return nil, fmt.Errorf("fixclient: validate settings: %w", err)
	}
	return &s, nil
}

// Save writes s to path as YAML.
func Save(s *Settings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("fixclient: marshal settings: %w", err)
	}
	return os.WriteFile(path, data, 0600)
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
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v) * time.Second, nil
		default:
			return data, nil
		}
	}
}
