package interfaces

import "context"

// EventType represents lifecycle events in the agent pipeline
type EventType string

const (
	EventPipelineStarted        EventType = "pipeline_started"
	EventPipelineCompleted      EventType = "pipeline_completed"
	EventPipelineError          EventType = "pipeline_error"
	EventStageStarted           EventType = "stage_started"
	EventStageCompleted         EventType = "stage_completed"
	EventScrapeStarted          EventType = "scrape_started"
	EventScrapeCompleted        EventType = "scrape_completed"
	EventAnalysisStarted        EventType = "analysis_started"
	EventAnalysisCompleted      EventType = "analysis_completed"
	EventRecommendationStarted  EventType = "recommendation_started"
	EventRecommendationComplete EventType = "recommendation_completed"
	EventAlertTriggered         EventType = "alert_triggered"
)

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages the pub/sub event bus. Handler failures are
// isolated per handler: one failing observer never breaks the pipeline.
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes an event and waits for all handlers to complete
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
