package blockchain

import (
	"context"
	"testing"
	"time"

	"github.com/celo-org/minipay-sdk-go/pkg/config"
)

func TestDial_Unreachable(t *testing.T) {
	start := time.Now()
	_, err := Dial(context.Background(), "http://127.0.0.1:1", "44787", 2*time.Second)
	if err == nil {
		t.Fatal("expected error dialing")
	}
	if time.Since(start) > 6*time.Second {
		t.Fatalf("Dial took too long")
	}
}

func TestInitEvm_Unreachable(t *testing.T) {
	cfg := &config.Config{RPCAddr: "http://127.0.0.1:1"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, err := InitEvm(context.Background(), cfg); err == nil {
		t.Fatal("expected error dialing")
	}
}
