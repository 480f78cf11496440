package main

import (
	"fmt"
	"os"

	"github.com/genesis-erp/ledger/accounting"
	"github.com/genesis-erp/ledger/config"
	"github.com/genesis-erp/ledger/sentinel"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Log)

	db, err := config.NewDatabase(cfg.Database)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}

	if _, err := accounting.Bootstrap(db, logger); err != nil {
		logger.Fatalf("bootstrap: %v", err)
	}

	service := sentinel.NewService(db, logger)
	worker := sentinel.NewCron(service, logger, cfg.Sentinel.DiagnosticEveryMinutes)

	logger.Info("Start ledger-sentinel")
	worker.Start()
}
