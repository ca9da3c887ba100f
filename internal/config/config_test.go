package config

import (
	"testing"
	"time"
)

func TestLoad_ReportsMissingRequired(t *testing.T) {
	// Ensure a clean env by not setting anything and calling validation directly.
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "production", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "rabaislocal", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "rabaislocal", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Coupon.CodePrefix != "RABAIS" {
		t.Fatalf("expected default code prefix RABAIS, got %q", c.Coupon.CodePrefix)
	}
	if c.Coupon.CodeRetries != 5 {
		t.Fatalf("expected default code retries 5, got %d", c.Coupon.CodeRetries)
	}
	if c.Coupon.DefaultValidity != 30*24*time.Hour {
		t.Fatalf("expected default validity 30d, got %v", c.Coupon.DefaultValidity)
	}
	if c.Coupon.ClaimRateLimit != 10 || c.Coupon.RedeemRateLimit != 30 {
		t.Fatalf("unexpected rate limit defaults: %+v", c.Coupon)
	}
}

func TestLoad_OnePerConsumerDefaultsOn(t *testing.T) {
	if !optionalBool("COUPON_ONE_PER_CONSUMER_UNSET_KEY", true) {
		t.Fatalf("expected unset policy env to fall back to default")
	}
}

func TestValidate_RejectsDashedCodePrefix(t *testing.T) {
	c := Config{
		App:    AppConfig{Env: "local", Port: 8080},
		DB:     DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "rabaislocal"},
		Redis:  RedisConfig{Host: "localhost", Port: 6379},
		Auth:   AuthConfig{JWTSecret: "secret"},
		Coupon: CouponConfig{CodePrefix: "RABAIS-LOCAL"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for dashed code prefix")
	}
}
