package main

import (
	"context"
	"os/signal"
	"syscall"

	"marketcrawler/config"
	"marketcrawler/internal/crawler"
	"marketcrawler/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run crawler
	if err := crawler.Start(ctx, cfg, log); err != nil {
		log.Fatal("crawler failed", zap.Error(err))
	}
}
