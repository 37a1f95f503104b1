package pipeline

import (
	"context"
	"strings"

	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/rs/zerolog"
)

// runReports turns every report into a summary item.
func (o *Orchestrator) runReports(ctx context.Context, summary *models.RunSummary, logger zerolog.Logger) {
	start := o.now()
	result, err := o.reportRunner.Run(ctx, o.reports)
	if err != nil {
		for _, r := range o.reports {
			summary.Add(failed(r.Name, models.StageReport, err, o.now().Sub(start)))
		}
		return
	}

	for _, out := range result.Outputs {
		summary.Add(models.ItemResult{
			Target:   out.Name,
			Stage:    models.StageReport,
			Status:   models.ItemSucceeded,
			FilePath: out.FilePath,
			Records:  out.Rows,
			Duration: out.Duration,
		})
	}
	for _, name := range result.Failed {
		summary.Add(models.ItemResult{
			Target: name,
			Stage:  models.StageReport,
			Status: models.ItemFailed,
			Error:  reportError(result.Err, name),
		})
	}
	logger.Info().Int("written", len(result.Outputs)).Int("failed", len(result.Failed)).Msg("Report stage finished")
}

// reportError picks the message that belongs to one report out of the combined error.
func reportError(err error, name string) string {
	if err == nil {
		return "report failed"
	}
	prefix := "report " + name + ":"
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range multi.Unwrap() {
			if strings.HasPrefix(e.Error(), prefix) {
				return e.Error()
			}
		}
	}
	return err.Error()
}
