package interfaces

import (
	"context"

	"github.com/smartninja/priceagent/internal/models"
)

// PipelineRunner executes the full sequential agent pipeline for one
// request. Implementations never return a Go error for stage failures;
// those are reported inside the PipelineResult. The error return is
// reserved for input-validation failures raised before any stage work
// begins.
type PipelineRunner interface {
	Run(ctx context.Context, req models.PipelineRequest) (*models.PipelineResult, error)
}
