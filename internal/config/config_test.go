package config

import (
	"os"
	"testing"
)

func TestLoadSignerConfigDefaults(t *testing.T) {
	cfg, err := LoadSignerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("expected env=development, got %s", cfg.Env)
	}
	if cfg.SocketPath != "/var/run/xmragent/signer.sock" {
		t.Errorf("unexpected socket path: %s", cfg.SocketPath)
	}
	if !cfg.Strict {
		t.Errorf("expected strict=true by default")
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected redis addr localhost:6379, got %s", cfg.Redis.Addr)
	}
}

func TestLoadSignerConfigFromEnv(t *testing.T) {
	os.Setenv("XMRAGENT_ENV", "production")
	os.Setenv("XMRAGENT_KMS_KEY_ID", "arn:aws:kms:us-east-1:123456:key/test-key")
	defer os.Unsetenv("XMRAGENT_ENV")
	defer os.Unsetenv("XMRAGENT_KMS_KEY_ID")

	cfg, err := LoadSignerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("expected env=production, got %s", cfg.Env)
	}
	if cfg.KMSKeyID != "arn:aws:kms:us-east-1:123456:key/test-key" {
		t.Errorf("unexpected kms key id: %s", cfg.KMSKeyID)
	}
}

func TestLoadHostConfigDefaults(t *testing.T) {
	cfg, err := LoadHostConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SignerSocketPath != "/var/run/xmragent/signer.sock" {
		t.Errorf("unexpected signer socket path: %s", cfg.SignerSocketPath)
	}
	if cfg.SignerDialTimeout != 5 {
		t.Errorf("expected signer dial timeout 5s, got %d", cfg.SignerDialTimeout)
	}
}
