package agents

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/common"
	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
)

// Stage contracts satisfied by the concrete agents. The orchestrator
// depends on these rather than the implementations so stages can be
// substituted independently.
type Planner interface {
	Execute(ctx context.Context, req models.PipelineRequest) (*models.PlanningResult, error)
}

type OfferScraper interface {
	Execute(ctx context.Context, plan *models.PlanningResult) ([]models.Offer, error)
}

type OfferAnalyzer interface {
	Execute(ctx context.Context, offers []models.Offer) (*models.AnalysisResult, error)
}

type Recommender interface {
	Execute(ctx context.Context, analysis *models.AnalysisResult) (*models.Recommendation, error)
}

type AlertNotifier interface {
	Execute(ctx context.Context, model, country string, offers []models.Offer, rec *models.Recommendation) (*NotificationResult, error)
}

// SequentialAgent runs the pipeline stages strictly in order:
// planning, scraping, analysis, recommendation, notification. Stage
// failures and recognized halts are reported inside the result; the
// Go error return covers only request validation.
type SequentialAgent struct {
	planning       Planner
	scraping       OfferScraper
	analysis       OfferAnalyzer
	recommendation Recommender
	notification   AlertNotifier
	events         interfaces.EventService
	validate       *validator.Validate
	logger         arbor.ILogger
}

// NewSequentialAgent wires the pipeline. notification may be nil, in
// which case the notification stage is skipped entirely.
func NewSequentialAgent(
	planning Planner,
	scraping OfferScraper,
	analysis OfferAnalyzer,
	recommendation Recommender,
	notification AlertNotifier,
	events interfaces.EventService,
	logger arbor.ILogger,
) *SequentialAgent {
	return &SequentialAgent{
		planning:       planning,
		scraping:       scraping,
		analysis:       analysis,
		recommendation: recommendation,
		notification:   notification,
		events:         events,
		validate:       validator.New(),
		logger:         logger,
	}
}

// Run executes the full pipeline for one request.
func (s *SequentialAgent) Run(ctx context.Context, req models.PipelineRequest) (result *models.PipelineResult, err error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid pipeline request: %w", err)
	}

	runID := common.NewRunID()
	runLogger := s.logger.WithCorrelationId(runID)
	runLogger.Info().
		Str("model", req.Model).
		Str("country", req.Country).
		Msg("Pipeline run starting")

	var (
		plan     *models.PlanningResult
		offers   []models.Offer
		analysis *models.AnalysisResult
	)

	// A panic anywhere in the stages resolves to a tagged stage
	// failure rather than crashing the caller.
	defer func() {
		if r := recover(); r != nil {
			stage := inferStage(plan, offers, analysis)
			s.logger.Error().
				Str("stage", string(stage)).
				Str("panic", fmt.Sprint(r)).
				Msg("Pipeline stage panicked")
			result = s.failure(ctx, stage, fmt.Errorf("%v", r), string(debug.Stack()))
			err = nil
		}
	}()

	s.publish(ctx, interfaces.EventPipelineStarted, map[string]interface{}{
		"run_id":  runID,
		"model":   req.Model,
		"country": req.Country,
	})

	// Planning
	s.stageStarted(ctx, models.StagePlanning)
	plan, perr := s.planning.Execute(ctx, req)
	if perr != nil {
		return s.failure(ctx, models.StagePlanning, perr, ""), nil
	}
	s.stageCompleted(ctx, models.StagePlanning)

	if len(plan.Websites) == 0 {
		return s.halt(ctx, "No websites found for scraping", plan), nil
	}

	// Scraping
	s.stageStarted(ctx, models.StageScraping)
	offers, serr := s.scraping.Execute(ctx, plan)
	if serr != nil {
		return s.failure(ctx, models.StageScraping, serr, ""), nil
	}
	s.stageCompleted(ctx, models.StageScraping)

	if len(offers) == 0 {
		return s.halt(ctx, "No price data found", offers), nil
	}

	// Analysis
	s.stageStarted(ctx, models.StageAnalysis)
	analysis, aerr := s.analysis.Execute(ctx, offers)
	if aerr != nil {
		return s.failure(ctx, models.StageAnalysis, aerr, ""), nil
	}
	if len(analysis.Offers) == 0 {
		analysis.Offers = offers
	}
	s.stageCompleted(ctx, models.StageAnalysis)

	// Recommendation
	s.stageStarted(ctx, models.StageRecommendation)
	rec, rerr := s.recommendation.Execute(ctx, analysis)
	if rerr != nil {
		return s.failure(ctx, models.StageRecommendation, rerr, ""), nil
	}
	s.stageCompleted(ctx, models.StageRecommendation)

	result = &models.PipelineResult{
		Recommendation: rec,
		Model:          req.Model,
		Country:        req.Country,
		WebsiteCount:   len(plan.Websites),
		DataPoints:     len(offers),
	}
	if analysis.Detailed != nil {
		result.AveragePrice = analysis.Detailed.AveragePrice
		result.PriceRange = analysis.Detailed.PriceRange
		result.PriceTrend = analysis.Detailed.Trend
	}

	// Notification failures never invalidate the recommendation.
	if s.notification != nil {
		s.runNotification(ctx, req, offers, rec, result)
	}

	s.publish(ctx, interfaces.EventPipelineCompleted, map[string]interface{}{
		"model":       req.Model,
		"data_points": result.DataPoints,
	})

	return result, nil
}

func (s *SequentialAgent) runNotification(ctx context.Context, req models.PipelineRequest, offers []models.Offer, rec *models.Recommendation, result *models.PipelineResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("panic", fmt.Sprint(r)).Msg("Notification stage panicked")
			result.NotificationError = fmt.Sprintf("notification stage panicked: %v", r)
		}
	}()

	s.stageStarted(ctx, models.StageNotification)
	notif, err := s.notification.Execute(ctx, req.Model, req.Country, offers, rec)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error in notification stage")
		result.NotificationError = err.Error()
		return
	}
	s.stageCompleted(ctx, models.StageNotification)

	if len(notif.Alerts) > 0 {
		result.Alerts = notif.Alerts
	}
	if len(notif.Errors) > 0 {
		result.NotificationErrors = notif.Errors
	}
}

// halt builds the terminal result for a recognized empty-output
// condition. Halts carry no stage tag; they are expected outcomes.
func (s *SequentialAgent) halt(ctx context.Context, message string, data interface{}) *models.PipelineResult {
	s.logger.Info().Str("reason", message).Msg("Pipeline halted")
	s.publish(ctx, interfaces.EventPipelineCompleted, map[string]interface{}{"halt": message})
	return &models.PipelineResult{Err: message, Data: data}
}

func (s *SequentialAgent) failure(ctx context.Context, stage models.Stage, err error, trace string) *models.PipelineResult {
	s.logger.Error().Err(err).Str("stage", string(stage)).Msg("Pipeline stage failed")
	s.publish(ctx, interfaces.EventPipelineError, map[string]interface{}{
		"stage": string(stage),
		"error": err.Error(),
	})
	return &models.PipelineResult{
		Err:   fmt.Sprintf("Error in %s stage: %v", stage, err),
		Stage: stage,
		Trace: trace,
	}
}

// inferStage identifies the failed stage from which intermediates
// were already populated.
func inferStage(plan *models.PlanningResult, offers []models.Offer, analysis *models.AnalysisResult) models.Stage {
	switch {
	case plan == nil:
		return models.StagePlanning
	case offers == nil:
		return models.StageScraping
	case analysis == nil:
		return models.StageAnalysis
	default:
		return models.StageRecommendation
	}
}

func (s *SequentialAgent) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload})
}

func (s *SequentialAgent) stageStarted(ctx context.Context, stage models.Stage) {
	s.publish(ctx, interfaces.EventStageStarted, map[string]interface{}{"stage": string(stage)})
}

func (s *SequentialAgent) stageCompleted(ctx context.Context, stage models.Stage) {
	s.publish(ctx, interfaces.EventStageCompleted, map[string]interface{}{"stage": string(stage)})
}
