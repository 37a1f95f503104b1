package config

import "time"

// PortalConfig defines how the supplier portal is reached through the browser
type PortalConfig struct {
	URL                 string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	Username            string `json:"username,omitempty" yaml:"username,omitempty"`
	Password            string `json:"password,omitempty" yaml:"password,omitempty"`
	Headless            bool   `json:"headless" yaml:"headless"`
	ChromePath          string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	UserAgent           string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	WindowWidth         int    `json:"window_width,omitempty" yaml:"window_width,omitempty" validate:"omitempty,min=320"`
	WindowHeight        int    `json:"window_height,omitempty" yaml:"window_height,omitempty" validate:"omitempty,min=240"`
	PageLoadTimeoutSecs int    `json:"page_load_timeout_secs,omitempty" yaml:"page_load_timeout_secs,omitempty" validate:"omitempty,min=1"`
	ElementTimeoutSecs  int    `json:"element_timeout_secs,omitempty" yaml:"element_timeout_secs,omitempty" validate:"omitempty,min=1"`
	LoginTimeoutSecs    int    `json:"login_timeout_secs,omitempty" yaml:"login_timeout_secs,omitempty" validate:"omitempty,min=1"`
	ScreenshotOnFailure bool   `json:"screenshot_on_failure" yaml:"screenshot_on_failure"`
}

// NewDefaultPortalConfig creates default portal configuration
func NewDefaultPortalConfig() PortalConfig {
	return PortalConfig{
		Headless:            true,
		UserAgent:           DefaultPortalUserAgent,
		WindowWidth:         DefaultPortalWindowWidth,
		WindowHeight:        DefaultPortalWindowHeight,
		PageLoadTimeoutSecs: DefaultPortalPageLoadTimeoutSecs,
		ElementTimeoutSecs:  DefaultPortalElementTimeoutSecs,
		LoginTimeoutSecs:    DefaultPortalLoginTimeoutSecs,
		ScreenshotOnFailure: true,
	}
}

func (c PortalConfig) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutSecs) * time.Second
}

func (c PortalConfig) ElementTimeout() time.Duration {
	return time.Duration(c.ElementTimeoutSecs) * time.Second
}

func (c PortalConfig) LoginTimeout() time.Duration {
	return time.Duration(c.LoginTimeoutSecs) * time.Second
}
