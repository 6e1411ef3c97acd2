package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/agents"
	"github.com/smartninja/priceagent/internal/common"
	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/server"
	"github.com/smartninja/priceagent/internal/services/analyzer"
	"github.com/smartninja/priceagent/internal/services/events"
	"github.com/smartninja/priceagent/internal/services/history"
	"github.com/smartninja/priceagent/internal/services/llm"
	"github.com/smartninja/priceagent/internal/services/notification"
	"github.com/smartninja/priceagent/internal/services/scheduler"
	"github.com/smartninja/priceagent/internal/services/scraper"
	"github.com/smartninja/priceagent/internal/services/sites"
	"github.com/smartninja/priceagent/internal/storage/badger"
)

var (
	configPath   = flag.String("config", "", "Configuration file path")
	configPathC  = flag.String("c", "", "Configuration file path (shorthand)")
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("PriceAgent version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup order: config, logger, banner, storage, services, server.
	configFile := *configPath
	if configFile == "" {
		configFile = *configPathC
	}
	if configFile == "" {
		// Auto-discover config in the working directory
		if _, err := os.Stat("priceagent.toml"); err == nil {
			configFile = "priceagent.toml"
		}
	}

	config, err := common.LoadFromFile(configFile)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Str("path", configFile).Msg("Failed to load configuration")
		os.Exit(1)
	}
	if *serverPort != 0 {
		config.Server.Port = *serverPort
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("config", configFile).
		Str("environment", config.Environment).
		Int("port", config.Server.Port).
		Msg("Configuration loaded")

	// Storage
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
		os.Exit(1)
	}
	defer storageManager.Close()

	ctx := context.Background()
	if config.Alerts.RulesDir != "" {
		if err := badger.LoadAlertRulesFromFiles(ctx, storageManager.AlertStore(), config.Alerts.RulesDir, logger); err != nil {
			logger.Warn().Err(err).Str("dir", config.Alerts.RulesDir).Msg("Failed to load alert rules")
		}
	}

	// Event bus
	eventService := events.NewService(logger)
	defer eventService.Close()

	// Generative client, only when a provider is configured
	var generativeClient interfaces.GenerativeClient
	if config.LLM.Enabled {
		factory := llm.NewFactory(&config.Claude, &config.Gemini, &config.LLM, logger)
		defer factory.Close()
		generativeClient = llm.NewClient(factory)
		logger.Info().Str("provider", config.LLM.DefaultProvider).Msg("LLM analysis enabled")
	} else {
		logger.Info().Msg("LLM analysis disabled, using rule-based analysis")
	}

	// Notification channels
	notifiers := []interfaces.Notifier{notification.NewConsoleNotifier(logger)}
	if config.Alerts.WebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(config.Alerts.WebhookURL, logger))
	}
	notifier := notification.NewMultiNotifier(notifiers...)

	// Pipeline stages
	historyAnalyzer := history.NewAnalyzer()
	pipeline := agents.NewSequentialAgent(
		agents.NewPlanningAgent(sites.NewSelector(logger), logger),
		agents.NewScrapingAgent(scraper.NewService(config.Scraper, logger), eventService, config.Scraper.ScrapeTimeout(), logger),
		agents.NewAnalysisAgent(analyzer.NewEngine(generativeClient, logger), eventService, logger),
		agents.NewRecommendationAgent(eventService, logger),
		agents.NewNotificationAgent(storageManager, notifier, historyAnalyzer, eventService, logger),
		eventService,
		logger,
	)

	// Scheduler
	sched := scheduler.NewService(pipeline, config.Scheduler, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
		os.Exit(1)
	}
	defer sched.Stop()

	// HTTP server
	srv := server.New(config, pipeline, storageManager, historyAnalyzer, sched, eventService, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("Server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
}
