package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/52poke/kvgate/internal/config"
	"github.com/52poke/kvgate/internal/logging"
	"github.com/52poke/kvgate/internal/verify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	scenario := verify.NewScenario(verify.NewClient(cfg.VerifyBaseURL), cfg.VerifyWait, logger)
	if err := scenario.Run(context.Background()); err != nil {
		logger.Error("verification failed", zap.String("base_url", cfg.VerifyBaseURL), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	fmt.Println("test success")
}
