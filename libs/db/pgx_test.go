package db

import (
	"context"
	"testing"
	"time"
)

func TestPoolOptionsDefaults(t *testing.T) {
	o := PoolOptions{}.withDefaults()
	if o.MaxConns != 10 || o.MinConns != 1 {
		t.Fatalf("unexpected conn defaults %+v", o)
	}
	if o.MaxConnLifetime != 30*time.Minute || o.MaxConnIdleTime != 5*time.Minute {
		t.Fatalf("unexpected lifetime defaults %+v", o)
	}

	o = PoolOptions{MaxConns: 2, MinConns: 5}.withDefaults()
	if o.MinConns != 2 {
		t.Fatalf("min conns should be capped at max, got %d", o.MinConns)
	}
}

func TestReadyCheckWithoutPool(t *testing.T) {
	if err := ReadyCheck(nil)(context.Background()); err == nil {
		t.Fatal("expected error for missing pool")
	}
}
