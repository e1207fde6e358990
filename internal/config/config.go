package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/i474232898/weather-mirror/internal/weather"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	// Location is passed to wttr.in verbatim: a zip code, city name or airport.
	Location string `mapstructure:"location" validate:"required"`
	Unit     string `mapstructure:"unit" validate:"required,oneof=f F c C"`
	Hour12   bool   `mapstructure:"hour_12"`

	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	FetchInterval time.Duration `mapstructure:"fetch_interval" validate:"gte=1m"`
	RateLimitRPS  float64       `mapstructure:"rate_limit_rps" validate:"gte=0"`

	Cache CacheConfig `mapstructure:"cache"`
	Redis RedisConfig `mapstructure:"redis"`
	MQTT  MQTTConfig  `mapstructure:"mqtt"`

	IconDir  string `mapstructure:"icon_dir"`
	Port     string `mapstructure:"port" validate:"required,numeric"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	// DisplayUnit is Unit after parsing.
	DisplayUnit weather.Unit `mapstructure:"-"`
}

type CacheConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=file redis memory"`
	Dir     string `mapstructure:"dir"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker" validate:"required_if=Enabled true"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	validate         = validator.New()
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("location", "")
	v.SetDefault("unit", "F")
	v.SetDefault("hour_12", true)
	v.SetDefault("base_url", "http://wttr.in")
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("fetch_interval", "30m")
	v.SetDefault("rate_limit_rps", 0)
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", ".")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "weather-mirror")
	v.SetDefault("mqtt.topic_prefix", "weather")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("icon_dir", "svg")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
}

// LoadDotEnv copies variables from the given .env files (default ./.env) into
// the process environment without overriding ones already set. It runs
// before Load so the values take part in configuration; the caller decides
// how to report a missing file.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load reads configuration from an optional settings file (YAML or JSON) and
// the environment, with sensible defaults. Environment variables use the key
// upper-cased with dots replaced by underscores, e.g. CACHE_BACKEND.
func Load(configPath string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("settings")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/weather-mirror")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// key names of the older settings.json layout; registered after reading
	// so viper moves the file values onto the real keys
	v.RegisterAlias("zip_code", "location")
	v.RegisterAlias("12_hour", "hour_12")

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and parses the display unit.
func (c *AppConfig) Validate() error {
	c.Location = strings.TrimSpace(c.Location)
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	unit, err := weather.ParseUnit(c.Unit)
	if err != nil {
		return fmt.Errorf("%w: unit %q: %v", ErrInvalidConfig, c.Unit, err)
	}
	c.DisplayUnit = unit
	return nil
}
