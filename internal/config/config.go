package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Coupon CouponConfig
	Points PointsConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit for hosted-Postgres posture.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// CouponConfig drives coupon issuance behavior.
type CouponConfig struct {
	// CodePrefix is the human-readable prefix on every coupon code.
	CodePrefix string
	// CodeRetries bounds collision-retry attempts at code generation.
	CodeRetries int
	// DefaultValidity applies when the offer has no end_date.
	DefaultValidity time.Duration
	// OnePerConsumer enforces at most one coupon per consumer per offer.
	OnePerConsumer bool
	// EmailRateLimit and EmailRateWindow bound coupon email sends per consumer.
	EmailRateLimit  int
	EmailRateWindow time.Duration
	// ClaimRateLimit and RedeemRateLimit bound the hot write paths per actor.
	ClaimRateLimit   int
	ClaimRateWindow  time.Duration
	RedeemRateLimit  int
	RedeemRateWindow time.Duration
}

// PointsConfig drives point-earning suggestions for merchant terminals.
type PointsConfig struct {
	// EarnRatePerDollar is the default points earned per full dollar billed.
	EarnRatePerDollar int64
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	// Duration env vars are optional; defaults applied in Validate() based on env.
	c.Auth.AccessTokenTTL = optionalDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = optionalDuration("JWT_REFRESH_TTL")

	c.Coupon.CodePrefix = strings.TrimSpace(os.Getenv("COUPON_CODE_PREFIX"))
	c.Coupon.CodeRetries = optionalInt("COUPON_CODE_RETRIES")
	c.Coupon.DefaultValidity = optionalDuration("COUPON_DEFAULT_VALIDITY")
	c.Coupon.OnePerConsumer = optionalBool("COUPON_ONE_PER_CONSUMER", true)
	c.Coupon.EmailRateLimit = optionalInt("COUPON_EMAIL_RATE_LIMIT")
	c.Coupon.EmailRateWindow = optionalDuration("COUPON_EMAIL_RATE_WINDOW")
	c.Coupon.ClaimRateLimit = optionalInt("COUPON_CLAIM_RATE_LIMIT")
	c.Coupon.ClaimRateWindow = optionalDuration("COUPON_CLAIM_RATE_WINDOW")
	c.Coupon.RedeemRateLimit = optionalInt("COUPON_REDEEM_RATE_LIMIT")
	c.Coupon.RedeemRateWindow = optionalDuration("COUPON_REDEEM_RATE_WINDOW")

	c.Points.EarnRatePerDollar = int64(optionalInt("POINTS_EARN_RATE_PER_DOLLAR"))

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}

	if c.Auth.AccessTokenTTL <= 0 {
		// Default: short-lived access tokens.
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		// Default: longer-lived refresh tokens.
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	if c.Coupon.CodePrefix == "" {
		c.Coupon.CodePrefix = "RABAIS"
	}
	if strings.ContainsAny(c.Coupon.CodePrefix, " -") {
		errs = append(errs, fmt.Errorf("COUPON_CODE_PREFIX must not contain spaces or dashes, got %q", c.Coupon.CodePrefix))
	}
	if c.Coupon.CodeRetries <= 0 {
		c.Coupon.CodeRetries = 5
	}
	if c.Coupon.DefaultValidity <= 0 {
		c.Coupon.DefaultValidity = 30 * 24 * time.Hour
	}
	if c.Coupon.EmailRateLimit <= 0 {
		c.Coupon.EmailRateLimit = 1
	}
	if c.Coupon.EmailRateWindow <= 0 {
		c.Coupon.EmailRateWindow = time.Minute
	}
	if c.Coupon.ClaimRateLimit <= 0 {
		c.Coupon.ClaimRateLimit = 10
	}
	if c.Coupon.ClaimRateWindow <= 0 {
		c.Coupon.ClaimRateWindow = time.Minute
	}
	if c.Coupon.RedeemRateLimit <= 0 {
		c.Coupon.RedeemRateLimit = 30
	}
	if c.Coupon.RedeemRateWindow <= 0 {
		c.Coupon.RedeemRateWindow = time.Minute
	}

	if c.Points.EarnRatePerDollar <= 0 {
		c.Points.EarnRatePerDollar = 1
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func optionalBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func optionalDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
