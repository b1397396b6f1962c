// Package config loads process configuration from the environment via
// Viper, the way the teacher's trading processes do, under the
// XMRAGENT_ prefix instead of CAESAR_.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// SignerConfig holds the Signer process's settings: the UDS it listens on,
// where to find the wrapped wallet seed it unwraps at startup, how long an
// idle per-transaction session may live before it is torn down, and the
// Redis instance backing internal/noncestore's tsx_ctr counter — the Signer
// is the process that allocates tsx_ctr, so it is the process that needs
// Redis reachability, not the Host Agent.
type SignerConfig struct {
	Env                string `mapstructure:"env"`
	LocalStackEndpoint string `mapstructure:"localstack_endpoint"`
	Redis              RedisConfig

	SocketPath         string `mapstructure:"socket_path"`
	SessionIdleTimeout int    `mapstructure:"session_idle_timeout_sec"`
	WalletSeedCipher   string `mapstructure:"wallet_seed_cipher_path"`
	KMSKeyID           string `mapstructure:"kms_key_id"`
	AWSRegion          string `mapstructure:"aws_region"`
	Strict             bool   `mapstructure:"strict"`
}

// HostConfig holds the Host Agent process's settings: where to reach the
// Signer over its UDS.
type HostConfig struct {
	Env string `mapstructure:"env"`

	SignerSocketPath  string `mapstructure:"signer_socket_path"`
	SignerDialTimeout int    `mapstructure:"signer_dial_timeout_sec"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("XMRAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("env", "development")
	return v
}

// LoadSignerConfig reads the Signer's configuration from XMRAGENT_* env vars.
func LoadSignerConfig() (*SignerConfig, error) {
	v := newViper()

	v.SetDefault("socket_path", "/var/run/xmragent/signer.sock")
	v.SetDefault("session_idle_timeout_sec", 300)
	v.SetDefault("wallet_seed_cipher_path", "/etc/xmragent/wallet-seed.kms")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("strict", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	return &SignerConfig{
		Env:                v.GetString("env"),
		LocalStackEndpoint: v.GetString("localstack_endpoint"),
		SocketPath:         v.GetString("socket_path"),
		SessionIdleTimeout: v.GetInt("session_idle_timeout_sec"),
		WalletSeedCipher:   v.GetString("wallet_seed_cipher_path"),
		KMSKeyID:           v.GetString("kms_key_id"),
		AWSRegion:          v.GetString("aws_region"),
		Strict:             v.GetBool("strict"),
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}, nil
}

// LoadHostConfig reads the Host Agent's configuration from XMRAGENT_* env vars.
func LoadHostConfig() (*HostConfig, error) {
	v := newViper()

	v.SetDefault("signer_socket_path", "/var/run/xmragent/signer.sock")
	v.SetDefault("signer_dial_timeout_sec", 5)

	return &HostConfig{
		Env:               v.GetString("env"),
		SignerSocketPath:  v.GetString("signer_socket_path"),
		SignerDialTimeout: v.GetInt("signer_dial_timeout_sec"),
	}, nil
}
