package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port        int      `yaml:"port"`
	GinMode     string   `yaml:"gin_mode"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
	TTL    string `yaml:"ttl"`
}

type OTPConfig struct {
	TTL          string `yaml:"ttl"`
	Length       int    `yaml:"length"`
	MaxAttempts  int    `yaml:"max_attempts"`
	ResendWindow string `yaml:"resend_window"`
}

type RateLimitConfig struct {
	Window   string `yaml:"window"`
	Requests int    `yaml:"requests"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type CategoriesConfig struct {
	Strict bool `yaml:"strict"`
}

type ConfigFile struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	OTP        OTPConfig        `yaml:"otp"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Twilio     TwilioConfig     `yaml:"twilio"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Casbin     CasbinConfig     `yaml:"casbin"`
	Categories CategoriesConfig `yaml:"categories"`
}

type Config struct {
	Port             string
	GinMode          string
	CORSOrigins      []string
	DSN              string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	JWTSecret        string
	JWTIssuer        string
	JWTTTL           time.Duration
	OTP_TTL          time.Duration
	OTP_Length       int
	OTP_MaxAttempts  int
	OTP_ResendWindow time.Duration
	RateLimitWindow  time.Duration
	RateLimitMax     int
	TwilioSID        string
	TwilioToken      string
	TwilioFrom       string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	SMTPFrom         string
	CasbinModelPath  string
	StrictCategories bool
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// Load reads the YAML config file named by FINTRACK_CONFIG (default
// config/config.yml) and applies environment overrides.
func Load() (*Config, error) {
	configFile, err := loadConfigFile(env("FINTRACK_CONFIG", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return FromFile(configFile)
}

// FromFile builds a Config from a parsed file, applying defaults and
// environment overrides.
func FromFile(f *ConfigFile) (*Config, error) {
	jwtTTL, err := parseDuration(env("JWT_TTL", f.JWT.TTL), 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT TTL: %w", err)
	}

	otpTTL, err := parseDuration(f.OTP.TTL, 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	resWnd, err := parseDuration(f.OTP.ResendWindow, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP resend window: %w", err)
	}

	rlWnd, err := parseDuration(f.RateLimit.Window, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := &Config{
		Port:             env("PORT", strconv.Itoa(orInt(f.App.Port, 8080))),
		GinMode:          env("GIN_MODE", f.App.GinMode),
		CORSOrigins:      parseCSV(env("CORS_ALLOWED_ORIGINS", strings.Join(f.App.CORSOrigins, ","))),
		DSN:              env("DATABASE_DSN", f.Database.DSN),
		RedisAddr:        env("REDIS_ADDR", f.Redis.Addr),
		RedisPassword:    env("REDIS_PASSWORD", f.Redis.Password),
		RedisDB:          envInt("REDIS_DB", f.Redis.DB),
		JWTSecret:        env("JWT_SECRET", f.JWT.Secret),
		JWTIssuer:        env("JWT_ISSUER", orString(f.JWT.Issuer, "fintrack")),
		JWTTTL:           jwtTTL,
		OTP_TTL:          otpTTL,
		OTP_Length:       orInt(f.OTP.Length, 6),
		OTP_MaxAttempts:  orInt(f.OTP.MaxAttempts, 5),
		OTP_ResendWindow: resWnd,
		RateLimitWindow:  rlWnd,
		RateLimitMax:     orInt(f.RateLimit.Requests, 10),
		TwilioSID:        env("TWILIO_ACCOUNT_SID", f.Twilio.AccountSID),
		TwilioToken:      env("TWILIO_AUTH_TOKEN", f.Twilio.AuthToken),
		TwilioFrom:       env("TWILIO_FROM_NUMBER", f.Twilio.FromNumber),
		SMTPHost:         env("SMTP_HOST", f.SMTP.Host),
		SMTPPort:         envInt("SMTP_PORT", orInt(f.SMTP.Port, 587)),
		SMTPUsername:     env("SMTP_USERNAME", f.SMTP.Username),
		SMTPPassword:     env("SMTP_PASSWORD", f.SMTP.Password),
		SMTPFrom:         env("SMTP_FROM", f.SMTP.From),
		CasbinModelPath:  orString(f.Casbin.ModelPath, "config/casbin_model.conf"),
		StrictCategories: env("CATEGORIES_STRICT", strconv.FormatBool(f.Categories.Strict)) == "true",
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
