package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/smartninja/priceagent/internal/agents"
	"github.com/smartninja/priceagent/internal/common"
	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/services/analyzer"
	"github.com/smartninja/priceagent/internal/services/history"
	"github.com/smartninja/priceagent/internal/services/llm"
	"github.com/smartninja/priceagent/internal/services/notification"
	"github.com/smartninja/priceagent/internal/services/scraper"
	"github.com/smartninja/priceagent/internal/services/sites"
	"github.com/smartninja/priceagent/internal/storage/badger"
)

func main() {
	configPath := os.Getenv("PRICEAGENT_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("priceagent.toml"); err == nil {
			configPath = "priceagent.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging so stdio stays clean for the MCP transport
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	var generativeClient interfaces.GenerativeClient
	if config.LLM.Enabled {
		factory := llm.NewFactory(&config.Claude, &config.Gemini, &config.LLM, logger)
		defer factory.Close()
		generativeClient = llm.NewClient(factory)
	}

	historyAnalyzer := history.NewAnalyzer()
	engine := analyzer.NewEngine(generativeClient, logger)
	scraperService := scraper.NewService(config.Scraper, logger)
	notifier := notification.NewConsoleNotifier(logger)

	pipeline := agents.NewSequentialAgent(
		agents.NewPlanningAgent(sites.NewSelector(logger), logger),
		agents.NewScrapingAgent(scraperService, nil, config.Scraper.ScrapeTimeout(), logger),
		agents.NewAnalysisAgent(engine, nil, logger),
		agents.NewRecommendationAgent(nil, logger),
		agents.NewNotificationAgent(storageManager, notifier, historyAnalyzer, nil, logger),
		nil,
		logger,
	)

	mcpServer := server.NewMCPServer(
		"priceagent",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createCheckPricesTool(), handleCheckPrices(pipeline, logger))
	mcpServer.AddTool(createScrapePricesTool(), handleScrapePrices(scraperService, sites.NewSelector(logger), logger))
	mcpServer.AddTool(createAnalyzePricesTool(), handleAnalyzePrices(engine, logger))
	mcpServer.AddTool(createPriceHistoryTool(), handlePriceHistory(storageManager, historyAnalyzer, logger))
	mcpServer.AddTool(createAlertHistoryTool(), handleAlertHistory(storageManager, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
