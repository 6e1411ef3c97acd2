package analyzer

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
)

// minGeneratedLength is the shortest generated analysis accepted as
// useful. Anything shorter is treated as a degenerate response and
// routed through the fallback.
const minGeneratedLength = 10

// Engine runs generative price analysis with a deterministic fallback.
// Every degraded path resolves to fallback text; Analyze never surfaces
// an error to callers.
type Engine struct {
	formatter Formatter
	prompts   PromptBuilder
	client    interfaces.GenerativeClient
	fallback  *Fallback
	logger    arbor.ILogger
}

// NewEngine wires an analysis engine. client may be nil, in which case
// every request resolves through the fallback analyzer.
func NewEngine(client interfaces.GenerativeClient, logger arbor.ILogger) *Engine {
	return &Engine{
		formatter: NewPriceFormatter(),
		prompts:   NewAnalysisPromptBuilder(),
		client:    client,
		fallback:  NewFallback(),
		logger:    logger,
	}
}

// Analyze produces a narrative analysis of the offers, preferring the
// generative client and degrading to the rule-based fallback.
func (e *Engine) Analyze(ctx context.Context, offers []models.Offer) string {
	if len(offers) == 0 {
		return e.safeFallback(offers, false)
	}

	formatted, err := e.formatter.Format(offers)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Price formatting failed, using fallback analysis")
		return e.safeFallback(offers, false)
	}

	text, ok := e.generate(ctx, e.prompts.Build(formatted))
	if !ok {
		return e.safeFallback(offers, false)
	}
	return text
}

// AnalyzeWithJustification is Analyze with the structured BUY/WAIT
// decision format, enriched with rolling averages when available.
func (e *Engine) AnalyzeWithJustification(ctx context.Context, offers []models.Offer, metrics *models.HistoryMetrics) string {
	if len(offers) == 0 {
		return e.safeFallback(offers, true)
	}

	formatted, err := e.formatter.Format(offers)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Price formatting failed, using fallback analysis")
		return e.safeFallback(offers, true)
	}

	text, ok := e.generate(ctx, e.prompts.BuildWithJustification(formatted, metrics))
	if !ok {
		return e.safeFallback(offers, true)
	}
	return text
}

// generate invokes the client and validates the response. The bool
// reports whether the text is usable.
func (e *Engine) generate(ctx context.Context, prompt string) (string, bool) {
	if e.client == nil {
		return "", false
	}

	text, err := e.client.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Generative analysis failed, using fallback analysis")
		return "", false
	}

	text = strings.TrimSpace(text)
	if len(text) < minGeneratedLength {
		e.logger.Warn().
			Int("length", len(text)).
			Msg("Generated analysis too short, using fallback analysis")
		return "", false
	}
	return text, true
}

// safeFallback invokes the fallback analyzer behind a panic guard so a
// defect there still yields usable text.
func (e *Engine) safeFallback(offers []models.Offer, justify bool) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("panic", toString(r)).Msg("Fallback analysis panicked")
			text = genericFailureMessage
		}
	}()

	if justify {
		return e.fallback.SummarizeWithJustification(offers)
	}
	return e.fallback.Summarize(offers)
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "unknown"
}
