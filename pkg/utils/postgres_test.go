package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	out := PostgresPoolConfig{}.withDefaults()
	if out.MaxOpenConns != 25 || out.MaxIdleConns != 25 {
		t.Fatalf("unexpected pool sizes: %+v", out)
	}
	if out.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected ping timeout: %v", out.PingTimeout)
	}
}

func TestPostgresPoolConfig_KeepsExplicitValues(t *testing.T) {
	in := PostgresPoolConfig{MaxOpenConns: 3, PingTimeout: time.Second}
	out := in.withDefaults()
	if out.MaxOpenConns != 3 || out.PingTimeout != time.Second {
		t.Fatalf("explicit values must survive defaulting: %+v", out)
	}
}
