package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createCheckPricesTool returns the check_prices tool definition
func createCheckPricesTool() mcp.Tool {
	return mcp.NewTool("check_prices",
		mcp.WithDescription("Run the full price check pipeline: plan retail sites, scrape current offers, analyze pricing, and produce a purchase recommendation"),
		mcp.WithString("model",
			mcp.Required(),
			mcp.Description("Product model to check (e.g. 'iPhone 15 Pro')"),
		),
		mcp.WithString("country",
			mcp.Required(),
			mcp.Description("Country code (e.g. 'US', 'UK', 'CA')"),
		),
		mcp.WithString("region",
			mcp.Description("Optional region within the country (e.g. 'West Coast')"),
		),
		mcp.WithNumber("max_sites",
			mcp.Description("Cap on the number of websites to scrape"),
		),
	)
}

// createScrapePricesTool returns the scrape_prices tool definition
func createScrapePricesTool() mcp.Tool {
	return mcp.NewTool("scrape_prices",
		mcp.WithDescription("Scrape current offers for a product from planned retail sites without analysis or recommendation"),
		mcp.WithString("model",
			mcp.Required(),
			mcp.Description("Product model to scrape"),
		),
		mcp.WithString("country",
			mcp.Required(),
			mcp.Description("Country code"),
		),
	)
}

// createAnalyzePricesTool returns the analyze_prices tool definition
func createAnalyzePricesTool() mcp.Tool {
	return mcp.NewTool("analyze_prices",
		mcp.WithDescription("Analyze a set of price offers and return narrative analysis with a buy/wait decision"),
		mcp.WithString("offers_json",
			mcp.Required(),
			mcp.Description("JSON array of offers, each with model, price, store, and optional currency/rating/in_stock"),
		),
	)
}

// createPriceHistoryTool returns the price_history tool definition
func createPriceHistoryTool() mcp.Tool {
	return mcp.NewTool("price_history",
		mcp.WithDescription("Query stored price history for a product with derived metrics (min/max/average, rolling windows, trend)"),
		mcp.WithString("model",
			mcp.Required(),
			mcp.Description("Product model"),
		),
		mcp.WithString("country",
			mcp.Description("Country code filter (default: all countries)"),
		),
		mcp.WithNumber("days",
			mcp.Description("Restrict to entries from the last N days"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries to return (default: 20)"),
		),
	)
}

// createAlertHistoryTool returns the alert_history tool definition
func createAlertHistoryTool() mcp.Tool {
	return mcp.NewTool("alert_history",
		mcp.WithDescription("List triggered price alerts, newest first"),
		mcp.WithString("model",
			mcp.Description("Product model filter (default: all models)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum alerts to return (default: 20)"),
		),
	)
}
