package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileEnv = "CONFIG_FILE"

type Config struct {
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	HTTPPort    string `yaml:"http_port" env:"HTTP_PORT"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`

	// APIBaseURL is the public origin used to build QR payment links.
	APIBaseURL string `yaml:"api_base_url" env:"API_BASE_URL"`

	JWTSecret    string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTExpiresIn time.Duration `yaml:"jwt_expires_in" env:"JWT_EXPIRES_IN"`

	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	FAQCacheTTL   time.Duration `yaml:"faq_cache_ttl" env:"FAQ_CACHE_TTL"`
	// StationMapCacheTTL bounds how stale the public map listing can be.
	StationMapCacheTTL time.Duration `yaml:"station_map_cache_ttl" env:"STATION_MAP_CACHE_TTL"`

	TelegramBotToken       string        `yaml:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID    int64         `yaml:"telegram_admin_chat_id" env:"TELEGRAM_ADMIN_CHAT_ID"`
	TelegramInitDataMaxAge time.Duration `yaml:"telegram_init_data_max_age" env:"TELEGRAM_INIT_DATA_MAX_AGE"`

	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

func defaults() Config {
	return Config{
		HTTPPort:               "8080",
		LogLevel:               "info",
		JWTExpiresIn:           24 * time.Hour,
		FAQCacheTTL:            5 * time.Minute,
		StationMapCacheTTL:     5 * time.Minute,
		TelegramInitDataMaxAge: 24 * time.Hour,
		AdminEmail:             "admin@evmeri.local",
	}
}

// Load reads the optional YAML file named by CONFIG_FILE, then lets
// environment variables override individual keys.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv(configFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: decode yaml: %w", err)
		}
	}
	if err := fromEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.APIBaseURL == "" {
		missing = append(missing, "API_BASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required keys: %s", strings.Join(missing, ", "))
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return errors.New("config: API_BASE_URL must be a fully qualified origin")
	}
	return nil
}

func fromEnv(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			continue
		}
		if err := assign(v.Field(i), raw); err != nil {
			return fmt.Errorf("config: parse %s: %w", key, err)
		}
	}
	return nil
}

func assign(field reflect.Value, value string) error {
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
