package utils

import (
	"context"
	"testing"
	"time"
)

func TestRedisConfig_Defaults(t *testing.T) {
	out := RedisConfig{}.withDefaults()
	if out.DialTimeout != 3*time.Second || out.PoolSize != 20 {
		t.Fatalf("unexpected defaults: %+v", out)
	}
}

func TestOpenRedis_RequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); err == nil {
		t.Fatalf("expected error for missing addr")
	}
}
