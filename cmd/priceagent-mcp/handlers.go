package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
	"github.com/smartninja/priceagent/internal/services/analyzer"
	"github.com/smartninja/priceagent/internal/services/history"
	"github.com/smartninja/priceagent/internal/services/scraper"
	"github.com/smartninja/priceagent/internal/services/sites"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleCheckPrices implements the check_prices tool
func handleCheckPrices(pipeline interfaces.PipelineRunner, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		model, err := request.RequireString("model")
		if err != nil || model == "" {
			return textResult("Error: model parameter is required"), nil
		}
		country, err := request.RequireString("country")
		if err != nil || country == "" {
			return textResult("Error: country parameter is required"), nil
		}

		result, err := pipeline.Run(ctx, models.PipelineRequest{
			Model:    model,
			Country:  country,
			Region:   request.GetString("region", ""),
			MaxSites: request.GetInt("max_sites", 0),
		})
		if err != nil {
			logger.Error().Err(err).Msg("Pipeline run failed")
			return textResult(fmt.Sprintf("Price check error: %v", err)), nil
		}

		return textResult(formatPipelineResult(result)), nil
	}
}

// handleScrapePrices implements the scrape_prices tool
func handleScrapePrices(scraperService *scraper.Service, selector *sites.Selector, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		model, err := request.RequireString("model")
		if err != nil || model == "" {
			return textResult("Error: model parameter is required"), nil
		}
		country, err := request.RequireString("country")
		if err != nil || country == "" {
			return textResult("Error: country parameter is required"), nil
		}

		websites, err := selector.Select(models.PipelineRequest{Model: model, Country: country})
		if err != nil {
			return textResult(fmt.Sprintf("Site selection error: %v", err)), nil
		}

		offers, err := scraperService.Scrape(ctx, model, country, websites, 0)
		if err != nil {
			logger.Error().Err(err).Msg("Scrape failed")
			return textResult(fmt.Sprintf("Scrape error: %v", err)), nil
		}

		return textResult(formatOffers(model, offers)), nil
	}
}

// handleAnalyzePrices implements the analyze_prices tool
func handleAnalyzePrices(engine *analyzer.Engine, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		offersJSON, err := request.RequireString("offers_json")
		if err != nil || offersJSON == "" {
			return textResult("Error: offers_json parameter is required"), nil
		}

		var offers []models.Offer
		if err := json.Unmarshal([]byte(offersJSON), &offers); err != nil {
			return textResult(fmt.Sprintf("Error: offers_json is not a valid offer array: %v", err)), nil
		}

		text := engine.AnalyzeWithJustification(ctx, offers, nil)
		return textResult(text), nil
	}
}

// handlePriceHistory implements the price_history tool
func handlePriceHistory(storage interfaces.StorageManager, analyzer *history.Analyzer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		model, err := request.RequireString("model")
		if err != nil || model == "" {
			return textResult("Error: model parameter is required"), nil
		}
		country := request.GetString("country", "")
		limit := request.GetInt("limit", 20)
		window := time.Duration(request.GetInt("days", 0)) * 24 * time.Hour

		entries, err := storage.HistoryStore().Query(ctx, model, country, window, limit)
		if err != nil {
			logger.Error().Err(err).Msg("History query failed")
			return textResult(fmt.Sprintf("History query error: %v", err)), nil
		}

		metrics := analyzer.Metrics(entries)
		return textResult(formatHistory(model, entries, metrics)), nil
	}
}

// handleAlertHistory implements the alert_history tool
func handleAlertHistory(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		model := request.GetString("model", "")
		limit := request.GetInt("limit", 20)

		histories, err := storage.AlertStore().AlertHistories(ctx, model, limit)
		if err != nil {
			logger.Error().Err(err).Msg("Alert history query failed")
			return textResult(fmt.Sprintf("Alert history error: %v", err)), nil
		}

		return textResult(formatAlertHistories(histories)), nil
	}
}
