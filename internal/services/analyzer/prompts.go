package analyzer

import (
	"fmt"
	"strings"

	"github.com/smartninja/priceagent/internal/models"
)

// PromptBuilder produces generation requests from formatted price data.
type PromptBuilder interface {
	Build(formatted string) string
	BuildWithJustification(formatted string, metrics *models.HistoryMetrics) string
}

// AnalysisPromptBuilder is the default PromptBuilder implementation.
type AnalysisPromptBuilder struct{}

// NewAnalysisPromptBuilder creates an AnalysisPromptBuilder.
func NewAnalysisPromptBuilder() *AnalysisPromptBuilder {
	return &AnalysisPromptBuilder{}
}

// Build produces the standard analysis prompt.
func (b *AnalysisPromptBuilder) Build(formatted string) string {
	return fmt.Sprintf(`Analyze the following mobile phone price data and provide insights:

%s

Please provide a structured analysis including:
1. Price comparison across regions and models
2. Price trends if discernible
3. Buying recommendations and opportunities
4. Any other relevant insights
Format your analysis in clear, concise paragraphs.`, formatted)
}

// BuildWithJustification produces the structured BUY/WAIT decision
// prompt. The rule-based fallback computes the same fields
// deterministically so the two paths stay schema-compatible.
func (b *AnalysisPromptBuilder) BuildWithJustification(formatted string, metrics *models.HistoryMetrics) string {
	return fmt.Sprintf(`Analyze the following mobile phone price data and provide insights with detailed justification:

%s
%s
Please provide a structured analysis including:
1. Price comparison across regions and models
2. Price trends compared to 7-day and 30-day averages (if discernible)
3. Clear DECISION (BUY or WAIT) with detailed JUSTIFICATION

Format your output with:
DECISION: [BUY or WAIT]
JUSTIFICATION:
- Current price: [value]
- 7-day average: [value] ([x]%% higher/lower)
- 30-day average: [value] ([x]%% higher/lower)
- Price trend: [Increasing/Decreasing/Stable] ([x]%% over [time period])
- Market context: [Any relevant market factors]

[Additional explanation in a paragraph if needed]`, formatted, historicalContext(metrics))
}

// historicalContext renders rolling averages as prompt context. Empty
// when no metrics are available so the prompt stays self-contained.
func historicalContext(metrics *models.HistoryMetrics) string {
	if metrics == nil || metrics.Count == 0 {
		return ""
	}

	var lines []string
	if metrics.Rolling7dAverage != nil {
		lines = append(lines, fmt.Sprintf("- 7-day average: $%.2f", *metrics.Rolling7dAverage))
	}
	if metrics.Rolling30dAvg != nil {
		lines = append(lines, fmt.Sprintf("- 30-day average: $%.2f", *metrics.Rolling30dAvg))
	}
	if metrics.Trend != "" && metrics.Trend != models.TrendUnknown {
		lines = append(lines, fmt.Sprintf("- Historical trend: %s", metrics.Trend))
	}
	if len(lines) == 0 {
		return ""
	}
	return "\nHistorical price context:\n" + strings.Join(lines, "\n") + "\n"
}
