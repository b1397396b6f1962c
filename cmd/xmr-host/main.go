// Command xmr-host is the untrusted orchestrator process: it dials the
// Signer over its Unix domain socket and stays up ready to drive
// internal/hostagent.Orchestrate for transactions handed to it. Selecting
// which outputs to spend and which destinations to pay is a wallet
// concern outside this protocol's scope; this process is the orchestration
// endpoint that protocol sits behind.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/monero-agent/xmrsigner/internal/config"
	"github.com/monero-agent/xmrsigner/internal/log"
	"github.com/monero-agent/xmrsigner/internal/signer"
)

func main() {
	logger := log.Component("hostagent")

	cfg, err := config.LoadHostConfig()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	logger.Info("host agent starting", "env", cfg.Env, "signer_socket", cfg.SignerSocketPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, time.Duration(cfg.SignerDialTimeout)*time.Second)
	client, err := signer.Dial(dialCtx, cfg.SignerSocketPath)
	dialCancel()
	if err != nil {
		logger.Error("dial signer", "err", err)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("host agent ready", "signer_socket", cfg.SignerSocketPath)

	<-ctx.Done()
	logger.Info("host agent shutting down")
}
