package config

import (
	"path/filepath"
	"time"

	"github.com/aleister1102/pricefeed/internal/models"
)

// DownloadConfig defines the download directory, the watcher timing and the supplier targets
type DownloadConfig struct {
	Dir               string                  `json:"dir,omitempty" yaml:"dir,omitempty" validate:"required"`
	ScreenshotDir     string                  `json:"screenshot_dir,omitempty" yaml:"screenshot_dir,omitempty"`
	CleanDir          bool                    `json:"clean_dir" yaml:"clean_dir"`
	PollIntervalMs    int                     `json:"poll_interval_ms,omitempty" yaml:"poll_interval_ms,omitempty" validate:"omitempty,min=50"`
	InitialDelayMs    int                     `json:"initial_delay_ms,omitempty" yaml:"initial_delay_ms,omitempty" validate:"omitempty,min=0"`
	MaxWaitSecs       int                     `json:"max_wait_secs,omitempty" yaml:"max_wait_secs,omitempty" validate:"omitempty,min=1"`
	FallbackEnabled   bool                    `json:"fallback_enabled" yaml:"fallback_enabled"`
	FallbackAfterSecs int                     `json:"fallback_after_secs,omitempty" yaml:"fallback_after_secs,omitempty" validate:"omitempty,min=1"`
	UseFSNotify       bool                    `json:"use_fsnotify" yaml:"use_fsnotify"`
	Targets           []models.DownloadTarget `json:"targets,omitempty" yaml:"targets,omitempty" validate:"dive"`
}

// NewDefaultDownloadConfig creates default download configuration with the three known suppliers
func NewDefaultDownloadConfig() DownloadConfig {
	return DownloadConfig{
		Dir:               DefaultDownloadDir,
		PollIntervalMs:    DefaultDownloadPollMs,
		InitialDelayMs:    DefaultDownloadInitialMs,
		MaxWaitSecs:       DefaultDownloadMaxWaitSecs,
		FallbackEnabled:   false,
		FallbackAfterSecs: DefaultDownloadFallbackSecs,
		Targets:           DefaultDownloadTargets(),
	}
}

// DefaultDownloadTargets returns the supplier targets served by the portal
func DefaultDownloadTargets() []models.DownloadTarget {
	return []models.DownloadTarget{
		{
			ID:            "auto_express",
			Name:          "Autorepuestos Express",
			EntryButtonID: "download-button-autorepuestos-express",
			Patterns:      []string{"AutoRepuestos Express*.csv", "AutoRepuestos Express*.xlsx"},
			Rename:        "express",
			MaxWaitSecs:   DefaultExpressMaxWaitSecs,
		},
		{
			ID:               "auto_fix",
			Name:             "Auto Fix",
			EntryButtonID:    "download-button-autofix",
			RequiresLogin:    true,
			SelectCheckboxes: true,
			DownloadLocators: []models.Locator{
				{CSS: "button", Text: "Descargar lista de precios"},
			},
			Patterns: []string{"AutoFix*.xlsx"},
			Rename:   "autofix",
		},
		{
			ID:            "mundo_repcar",
			Name:          "Mundo RepCar",
			EntryButtonID: "download-button-mundo-repcar",
			RequiresLogin: true,
			DownloadLocators: []models.Locator{
				{CSS: "button.download-button"},
				{CSS: "button", Text: "Descargar"},
				{CSS: "a[class*='download']"},
			},
			Patterns: []string{"MundoRepCar*.csv", "Lista_de_Precios*.csv"},
			Rename:   "repcar",
		},
	}
}

func (c DownloadConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c DownloadConfig) InitialDelay() time.Duration {
	return time.Duration(c.InitialDelayMs) * time.Millisecond
}

func (c DownloadConfig) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitSecs) * time.Second
}

func (c DownloadConfig) FallbackAfter() time.Duration {
	return time.Duration(c.FallbackAfterSecs) * time.Second
}

// ScreenshotPath returns the configured screenshot directory or <dir>/screenshots
func (c DownloadConfig) ScreenshotPath() string {
	if c.ScreenshotDir != "" {
		return c.ScreenshotDir
	}
	return filepath.Join(c.Dir, DefaultScreenshotSubdir)
}

// TargetByID finds a target by its identifier
func (c DownloadConfig) TargetByID(id string) (models.DownloadTarget, bool) {
	for _, t := range c.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return models.DownloadTarget{}, false
}

// TargetByRename finds the target whose renamed file has the given base name
func (c DownloadConfig) TargetByRename(name string) (models.DownloadTarget, bool) {
	for _, t := range c.Targets {
		if t.Rename == name {
			return t, true
		}
	}
	return models.DownloadTarget{}, false
}
