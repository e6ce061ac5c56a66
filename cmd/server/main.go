package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"fund-dashboard-go/internal/config"
	"fund-dashboard-go/internal/dispatch"
	"fund-dashboard-go/internal/history"
	"fund-dashboard-go/internal/logger"
	"fund-dashboard-go/internal/notion"
	"fund-dashboard-go/internal/portfolio"
	"fund-dashboard-go/internal/scheduler"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Missing credentials are not fatal: the read path degrades to zero
	// figures and the trigger path fails at the dispatch call itself.
	if err := cfg.Validate(); err != nil {
		log.Warn("Running with incomplete configuration", zap.Error(err))
	}

	// Optional local history store
	var store *history.Store
	if cfg.Database.DSN != "" {
		store, err = history.NewStore(cfg.Database.DSN, log)
		if err != nil {
			log.Fatal("Failed to open history database", zap.Error(err))
		}
		log.Info("History recording enabled", zap.String("dsn", cfg.Database.DSN))
	}

	// Upstream clients and the resolver pipeline
	notionClient := notion.NewClient(&cfg.Notion, log)
	aggregator := portfolio.NewAggregator(notionClient, &cfg.Notion, log)
	resolver := portfolio.NewResolver(notionClient, aggregator, &cfg.Notion, log)
	dispatcher := dispatch.NewClient(&cfg.GitHub, log)

	apiHandler := NewAPIHandler(log, resolver, dispatcher, store)

	// Optional in-process refresh schedule
	if cfg.Schedule.RefreshCron != "" {
		sched := scheduler.New(log)
		err := sched.RegisterRefresh(cfg.Schedule.RefreshCron, func() {
			if err := dispatcher.Dispatch(context.Background(), dispatch.ModeProfit); err != nil {
				log.Error("Scheduled refresh dispatch failed", zap.Error(err))
				store.RecordDispatch(dispatch.ModeProfit, false, 0, err.Error())
				return
			}
			store.RecordDispatch(dispatch.ModeProfit, true, http.StatusNoContent, "scheduled")
		})
		if err != nil {
			log.Fatal("Failed to register refresh schedule", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	// Setup HTTP server
	mux := http.NewServeMux()
	mux.HandleFunc("/", apiHandler.FundHandler)
	mux.HandleFunc("/api/history", apiHandler.HistoryHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting fund dashboard server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}
