// Command xmr-signer is the trusted process: it unwraps the wallet seed via
// KMS, seals it in a walletcreds.Vault, and serves the Signer RPC surface
// over a Unix domain socket for one or more Host Agents to drive.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awnumar/memguard"
	"github.com/redis/go-redis/v9"

	"github.com/monero-agent/xmrsigner/internal/config"
	"github.com/monero-agent/xmrsigner/internal/kms"
	"github.com/monero-agent/xmrsigner/internal/log"
	"github.com/monero-agent/xmrsigner/internal/noncestore"
	"github.com/monero-agent/xmrsigner/internal/signer"
	"github.com/monero-agent/xmrsigner/internal/walletcreds"
)

const nonceCounterKey = "xmrsigner:tsx_ctr"

func main() {
	defer memguard.Purge()
	logger := log.Component("signer")

	cfg, err := config.LoadSignerConfig()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	logger.Info("signer starting", "env", cfg.Env, "socket", cfg.SocketPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ciphertext, err := os.ReadFile(cfg.WalletSeedCipher)
	if err != nil {
		logger.Error("read wallet seed ciphertext", "path", cfg.WalletSeedCipher, "err", err)
		os.Exit(1)
	}

	kmsClient, err := kms.New(ctx, cfg.AWSRegion, cfg.LocalStackEndpoint)
	if err != nil {
		logger.Error("create kms client", "err", err)
		os.Exit(1)
	}
	seed, err := kmsClient.UnwrapWalletSeed(ctx, ciphertext)
	if err != nil {
		logger.Error("unwrap wallet seed", "err", err)
		os.Exit(1)
	}
	vault, err := walletcreds.NewVault(seed)
	if err != nil {
		logger.Error("seal wallet seed", "err", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	nonces := noncestore.New(redisClient, nonceCounterKey)

	idleTimeout := time.Duration(cfg.SessionIdleTimeout) * time.Second
	mgr := signer.NewManager(vault, nonces, idleTimeout)
	handler := signer.NewHandler(mgr)

	srv, err := signer.New(cfg.SocketPath, handler)
	if err != nil {
		logger.Error("create signer server", "err", err)
		os.Exit(1)
	}

	if idleTimeout > 0 {
		reapTicker := time.NewTicker(idleTimeout / 2)
		defer reapTicker.Stop()
		go func() {
			for range reapTicker.C {
				mgr.ReapIdle()
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	logger.Info("signer ready", "socket", cfg.SocketPath)

	select {
	case <-ctx.Done():
		logger.Info("signer shutting down")
		srv.GracefulStop()
	case err := <-errCh:
		if err != nil {
			logger.Error("signer server error", "err", err)
			os.Exit(1)
		}
	}

	logger.Info("signer stopped")
}
