package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"myblog/internal/logger"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

const minSecretKeyLen = 16

var (
	ErrMissingSecretKey = errors.New("auth.secret_key (or SECRET_KEY) must be set")
	ErrShortSecretKey   = fmt.Errorf("auth.secret_key must be at least %d bytes", minSecretKeyLen)
	ErrMissingDSN       = errors.New("store.dsn (or DATABASE_URL) must be set")
	ErrUnknownDriver    = errors.New("store.driver must be sqlite or bolt")
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Store   StoreConfig   `mapstructure:"store"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Uploads UploadsConfig `mapstructure:"uploads"`
	Log     logger.Config `mapstructure:"log"`
}

type HTTPConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	SecretKey       string        `mapstructure:"secret_key"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	RequireSession  bool          `mapstructure:"require_session"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`
}

type UploadsConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_header_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.require_session", true)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.janitor_interval", 10*time.Minute)
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_bytes", 8<<20)
	v.SetDefault("log.level", logger.InfoLevel)
}

// Load reads configs/config.yml (optional) from the given search paths and
// applies environment overrides. BLOG_<SECTION>_<KEY> overrides any key;
// SECRET_KEY and DATABASE_URL are accepted for the secret and the DSN.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("auth.secret_key", "BLOG_AUTH_SECRET_KEY", "SECRET_KEY")
	_ = v.BindEnv("store.dsn", "BLOG_STORE_DSN", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails on settings the server cannot run safely without.
func (c *Config) Validate() error {
	switch {
	case c.Auth.SecretKey == "":
		return ErrMissingSecretKey
	case len(c.Auth.SecretKey) < minSecretKeyLen:
		return ErrShortSecretKey
	case c.Store.DSN == "":
		return ErrMissingDSN
	}
	if c.Store.Driver != DriverSQLite && c.Store.Driver != DriverBolt {
		return fmt.Errorf("%w: got %q", ErrUnknownDriver, c.Store.Driver)
	}
	return nil
}
