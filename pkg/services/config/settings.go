package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const EnvPrefix = "SOLSIGNAL"

type Settings struct {
	Server   ServerSettings   `mapstructure:"server"`
	Upstream UpstreamSettings `mapstructure:"upstream"`
	Storage  StorageSettings  `mapstructure:"storage"`
	Refresh  RefreshSettings  `mapstructure:"refresh"`
	Export   ExportSettings   `mapstructure:"export"`
	Log      LogSettings      `mapstructure:"log"`
}

type ServerSettings struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type UpstreamSettings struct {
	// BaseURL wins over the profile lookup when set.
	BaseURL      string        `mapstructure:"base_url" validate:"omitempty,url"`
	Token        string        `mapstructure:"token"`
	Profile      string        `mapstructure:"profile"`
	ProfilesPath string        `mapstructure:"profiles_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryMax     int           `mapstructure:"retry_max" validate:"min=0,max=5"`
	// CacheTTL bounds how long a fetched report serves reads. Zero disables it.
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"min=0"`
}

type StorageSettings struct {
	DbPath        string `mapstructure:"db_path" validate:"required"`
	KeepSnapshots int    `mapstructure:"keep_snapshots" validate:"min=1"`
}

type RefreshSettings struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"required_if=Enabled true"`
}

type ExportSettings struct {
	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Prefix   string `mapstructure:"s3_prefix"`
	AWSProfile string `mapstructure:"aws_profile"`
	AWSRegion  string `mapstructure:"aws_region"`
	CSVBOM     bool   `mapstructure:"csv_bom"`
}

type LogSettings struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
}

// ZerologLevel returns the configured level, falling back to info.
func (l LogSettings) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("upstream.base_url", "")
	v.SetDefault("upstream.token", "")
	v.SetDefault("upstream.profile", "default")
	v.SetDefault("upstream.profiles_path", "")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.retry_max", 1)
	v.SetDefault("upstream.cache_ttl", 30*time.Second)
	v.SetDefault("storage.db_path", "solsignal-reports.db")
	v.SetDefault("storage.keep_snapshots", 20)
	v.SetDefault("refresh.enabled", false)
	v.SetDefault("refresh.interval", 15*time.Minute)
	v.SetDefault("export.s3_bucket", "")
	v.SetDefault("export.s3_prefix", "exports")
	v.SetDefault("export.aws_profile", "")
	v.SetDefault("export.aws_region", "")
	v.SetDefault("export.csv_bom", true)
	v.SetDefault("log.level", "info")
}

// LoadSettings reads an optional config file, applies SOLSIGNAL_* environment
// overrides (SOLSIGNAL_SERVER_PORT, SOLSIGNAL_UPSTREAM_BASE_URL, ...) and validates the result.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Settings
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

func Validate(cfg *Settings) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate settings: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}
