package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Import   ImportConfig   `mapstructure:"import"`
	App      AppConfig      `mapstructure:"app"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Mode            string `mapstructure:"mode"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireMin   int    `mapstructure:"access_token_expire_minutes"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

type SecurityConfig struct {
	OTPLength             int `mapstructure:"otp_length"`
	OTPExpireMinutes      int `mapstructure:"otp_expire_minutes"`
	OTPMaxAttempts        int `mapstructure:"otp_max_attempts"`
	OTPRateLimitPerHour   int `mapstructure:"otp_rate_limit_per_hour"`
	MaxLoginAttempts      int `mapstructure:"max_login_attempts"`
	AccountLockoutMinutes int `mapstructure:"account_lockout_minutes"`
	PasswordMinLength     int `mapstructure:"password_min_length"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GoogleRedirectURI  string `mapstructure:"google_redirect_uri"`
}

type ImportConfig struct {
	MaxFileSizeMB int `mapstructure:"max_file_size_mb"`
	BatchSize     int `mapstructure:"batch_size"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	FrontendURL string `mapstructure:"frontend_url"`
	// Debug gates returning plaintext OTP codes from the request endpoints.
	// Never enable in production.
	Debug bool `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// run on defaults plus environment
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")

	v.SetDefault("jwt.access_token_expire_minutes", 15)
	v.SetDefault("jwt.refresh_token_expire_days", 7)

	v.SetDefault("security.otp_length", 6)
	v.SetDefault("security.otp_expire_minutes", 10)
	v.SetDefault("security.otp_max_attempts", 3)
	v.SetDefault("security.otp_rate_limit_per_hour", 3)
	v.SetDefault("security.max_login_attempts", 5)
	v.SetDefault("security.account_lockout_minutes", 30)
	v.SetDefault("security.password_min_length", 8)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from_name", "NEXORA Platform")

	v.SetDefault("import.max_file_size_mb", 10)
	v.SetDefault("import.batch_size", 1000)

	v.SetDefault("app.name", "NEXORA")
	v.SetDefault("app.debug", false)
}

// applyEnvOverrides maps the flat environment variable names used in
// deployment onto the structured config.
func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if id := os.Getenv("GOOGLE_CLIENT_ID"); id != "" {
		cfg.OAuth.GoogleClientID = id
	}
	if secret := os.Getenv("GOOGLE_CLIENT_SECRET"); secret != "" {
		cfg.OAuth.GoogleClientSecret = secret
	}
	if uri := os.Getenv("GOOGLE_REDIRECT_URI"); uri != "" {
		cfg.OAuth.GoogleRedirectURI = uri
	}
	if debug := os.Getenv("DEBUG"); debug != "" {
		cfg.App.Debug = debug == "true"
	}

	overrideInt := func(key string, dst *int) {
		if s := os.Getenv(key); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				*dst = n
			}
		}
	}
	overrideInt("ACCESS_TOKEN_EXPIRE_MINUTES", &cfg.JWT.AccessTokenExpireMin)
	overrideInt("REFRESH_TOKEN_EXPIRE_DAYS", &cfg.JWT.RefreshTokenExpireDays)
	overrideInt("OTP_LENGTH", &cfg.Security.OTPLength)
	overrideInt("OTP_EXPIRE_MINUTES", &cfg.Security.OTPExpireMinutes)
	overrideInt("OTP_MAX_ATTEMPTS", &cfg.Security.OTPMaxAttempts)
	overrideInt("OTP_RATE_LIMIT_PER_HOUR", &cfg.Security.OTPRateLimitPerHour)
	overrideInt("MAX_LOGIN_ATTEMPTS", &cfg.Security.MaxLoginAttempts)
	overrideInt("ACCOUNT_LOCKOUT_MINUTES", &cfg.Security.AccountLockoutMinutes)
	overrideInt("PASSWORD_MIN_LENGTH", &cfg.Security.PasswordMinLength)
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// GetURL returns the postgres:// URL form used by golang-migrate
func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

func (c *DatabaseConfig) GetConnMaxLifetime() (time.Duration, error) {
	if c.ConnMaxLifetime == "" {
		return time.Hour, nil
	}
	return time.ParseDuration(c.ConnMaxLifetime)
}

func (c *ServerConfig) GetShutdownTimeout() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return 10 * time.Second, nil
	}
	return time.ParseDuration(c.ShutdownTimeout)
}

func (c *JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMin) * time.Minute
}

func (c *JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

func (c *SecurityConfig) OTPTTL() time.Duration {
	return time.Duration(c.OTPExpireMinutes) * time.Minute
}

func (c *SecurityConfig) LockoutWindow() time.Duration {
	return time.Duration(c.AccountLockoutMinutes) * time.Minute
}
