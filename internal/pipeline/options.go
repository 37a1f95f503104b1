package pipeline

import (
	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/models"
)

// RunOptions selects what a single run does.
type RunOptions struct {
	Mode string
	// TargetIDs limits the run to these targets; empty means all.
	TargetIDs []string
	// File replaces the default input of process and upload runs. It needs exactly one target.
	File  string
	Clean bool
}

// selectTargets resolves TargetIDs against the configured targets, keeping config order.
func selectTargets(all []models.DownloadTarget, opts RunOptions) ([]models.DownloadTarget, error) {
	if len(opts.TargetIDs) == 0 {
		if opts.File != "" && len(all) != 1 {
			return nil, common.NewValidationError("targets", opts.TargetIDs, "-file needs exactly one target")
		}
		return all, nil
	}

	wanted := make(map[string]bool, len(opts.TargetIDs))
	for _, id := range opts.TargetIDs {
		wanted[id] = true
	}
	var selected []models.DownloadTarget
	for _, t := range all {
		if wanted[t.ID] {
			selected = append(selected, t)
			delete(wanted, t.ID)
		}
	}
	for _, id := range opts.TargetIDs {
		if wanted[id] {
			return nil, common.NewValidationError("targets", id, "unknown target")
		}
	}
	if opts.File != "" && len(selected) != 1 {
		return nil, common.NewValidationError("targets", opts.TargetIDs, "-file needs exactly one target")
	}
	return selected, nil
}

func validateMode(mode string) error {
	if !config.IsValidMode(mode) {
		return common.NewValidationError("mode", mode, "unknown run mode")
	}
	return nil
}
