package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yaml"

const (
	EmailProviderSMTP   = "smtp"
	EmailProviderResend = "resend"
	EmailProviderLog    = "log"

	IdentityProviderLocal  = "local"
	IdentityProviderGoTrue = "gotrue"
)

type FilesConfig struct {
	RootDir  string `yaml:"root_dir"`
	FontPath string `yaml:"font_path"`
}

type EmailConfig struct {
	Provider     string `yaml:"provider"`
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	ResendAPIKey string `yaml:"resend_api_key"`
	ResendURL    string `yaml:"resend_url"`
}

type IdentityConfig struct {
	Provider   string `yaml:"provider"`
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"service_key"`
}

type AuthConfig struct {
	JWTSecret               string        `yaml:"jwt_secret"`
	AccessTTL               time.Duration `yaml:"access_ttl"`
	SignupMinPasswordLength int           `yaml:"signup_min_password_length"`
}

type ResetConfig struct {
	CodeTTL           time.Duration `yaml:"code_ttl"`
	MinPasswordLength int           `yaml:"min_password_length"`
}

type NITConfig struct {
	SearchURL string        `yaml:"search_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

type Config struct {
	App struct {
		Env string `yaml:"env"`
	} `yaml:"app"`
	Server struct {
		Port           int           `yaml:"port"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		// TrustedProxies lists proxy IPs or CIDRs allowed to set X-Forwarded-For; empty trusts none.
		TrustedProxies []string      `yaml:"trusted_proxies"`
	} `yaml:"server"`
	Database struct {
		DSN           string `yaml:"url"`
		MigrateOnBoot bool   `yaml:"migrate_on_boot"`
	} `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Reset     ResetConfig     `yaml:"reset"`
	Email     EmailConfig     `yaml:"email"`
	Identity  IdentityConfig  `yaml:"identity"`
	NIT       NITConfig       `yaml:"nit"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Files     FilesConfig     `yaml:"files"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// MustLoad reads the config from CONFIG_PATH (or config/config.yaml) and panics on failure.
func MustLoad() *Config {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := Load(path)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}

// Load decodes the yaml file at path, applies env overrides and defaults, then validates.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Email.SMTPPassword = v
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		c.Email.ResendAPIKey = v
	}
	if v := os.Getenv("IDENTITY_SERVICE_KEY"); v != "" {
		c.Identity.ServiceKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 15 * time.Second
	}
	if c.Auth.AccessTTL == 0 {
		c.Auth.AccessTTL = 24 * time.Hour
	}
	if c.Auth.SignupMinPasswordLength == 0 {
		c.Auth.SignupMinPasswordLength = 8
	}
	if c.Reset.CodeTTL == 0 {
		c.Reset.CodeTTL = 10 * time.Minute
	}
	if c.Reset.MinPasswordLength == 0 {
		c.Reset.MinPasswordLength = 6
	}
	c.Email.Provider = strings.ToLower(strings.TrimSpace(c.Email.Provider))
	if c.Email.Provider == "" {
		c.Email.Provider = EmailProviderSMTP
	}
	if c.Email.ResendURL == "" {
		c.Email.ResendURL = "https://api.resend.com/emails"
	}
	c.Identity.Provider = strings.ToLower(strings.TrimSpace(c.Identity.Provider))
	if c.Identity.Provider == "" {
		c.Identity.Provider = IdentityProviderLocal
	}
	if c.NIT.SearchURL == "" {
		c.NIT.SearchURL = "https://www.google.com/search"
	}
	if c.NIT.Timeout == 0 {
		c.NIT.Timeout = 10 * time.Second
	}
	if c.Files.RootDir == "" {
		c.Files.RootDir = "./files"
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 30
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
}

func (c *Config) IsProd() bool {
	return c.App.Env == "prod"
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	switch c.Email.Provider {
	case EmailProviderSMTP:
		if c.Email.SMTPHost == "" {
			errs = append(errs, errors.New("email.smtp_host is required for the smtp provider"))
		}
	case EmailProviderResend:
		if c.Email.ResendAPIKey == "" {
			errs = append(errs, errors.New("email.resend_api_key is required for the resend provider"))
		}
	case EmailProviderLog:
		if c.IsProd() {
			errs = append(errs, errors.New("email.provider log is not allowed in prod"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown email.provider %q", c.Email.Provider))
	}
	switch c.Identity.Provider {
	case IdentityProviderLocal:
	case IdentityProviderGoTrue:
		if c.Identity.URL == "" || c.Identity.ServiceKey == "" {
			errs = append(errs, errors.New("identity.url and identity.service_key are required for the gotrue provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown identity.provider %q", c.Identity.Provider))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	for _, p := range c.Server.TrustedProxies {
		if !validProxy(p) {
			errs = append(errs, fmt.Errorf("server.trusted_proxies: invalid address %q", p))
		}
	}
	if c.Reset.MinPasswordLength < 1 {
		errs = append(errs, errors.New("reset.min_password_length must be positive"))
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit values must not be negative"))
	}
	return errors.Join(errs...)
}

func validProxy(p string) bool {
	if net.ParseIP(p) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(p)
	return err == nil
}
