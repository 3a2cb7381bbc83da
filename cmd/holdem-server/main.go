package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/coderodent-calfee/texas-holdem/internal/game"
	"github.com/coderodent-calfee/texas-holdem/internal/randutil"
	"github.com/coderodent-calfee/texas-holdem/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"holdem.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	Port     int    `short:"p" long:"port" help:"Server port to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Seed     int64  `short:"s" long:"seed" help:"Deck shuffle seed (0 seeds from the clock)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.Port != 0 {
		cfg.Server.Port = CLI.Port
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	pool := make([]*game.Player, len(cfg.Players))
	for i, p := range cfg.Players {
		pool[i] = game.NewPlayer(fmt.Sprintf("p%d", i), p.Name, i, p.Chips)
	}

	g := game.NewGame(game.Options{
		Logger:          logger,
		Clock:           quartz.NewReal(),
		RNG:             randutil.FromSeed(CLI.Seed),
		BigBlind:        cfg.Table.BigBlind,
		BlindPause:      time.Duration(cfg.Table.BlindPauseMS) * time.Millisecond,
		RevealCountdown: cfg.Table.RevealCountdownSeconds,
		Rules:           game.Rules{ShortCircuitFoldedHands: cfg.Table.ShortCircuitFolds},
		Players:         pool,
		StartingCount:   cfg.Table.StartingPlayers,
	})

	logger.Info("starting holdem server",
		"addr", cfg.ListenAddr(),
		"players", cfg.Table.StartingPlayers,
		"bigBlind", cfg.Table.BigBlind)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wsServer := server.NewServer(cfg.ListenAddr(), g, logger)
	if err := wsServer.Start(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		kctx.Exit(1)
	}
	logger.Info("shutdown complete")
}
