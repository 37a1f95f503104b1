package config

import "time"

// ReportConfig defines the warehouse connection and the CSV report output
type ReportConfig struct {
	DBHost              string   `json:"db_host,omitempty" yaml:"db_host,omitempty"`
	DBPort              int      `json:"db_port,omitempty" yaml:"db_port,omitempty" validate:"omitempty,min=1,max=65535"`
	DBUser              string   `json:"db_user,omitempty" yaml:"db_user,omitempty"`
	DBPassword          string   `json:"db_password,omitempty" yaml:"db_password,omitempty"`
	DBName              string   `json:"db_name,omitempty" yaml:"db_name,omitempty"`
	OutputDir           string   `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	ConnectTimeoutSecs  int      `json:"connect_timeout_secs,omitempty" yaml:"connect_timeout_secs,omitempty" validate:"omitempty,min=1"`
	ConnMaxLifetimeMins int      `json:"conn_max_lifetime_mins,omitempty" yaml:"conn_max_lifetime_mins,omitempty" validate:"omitempty,min=1"`
	Concurrency         int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"omitempty,min=1,max=16"`
	Reports             []string `json:"reports,omitempty" yaml:"reports,omitempty"`
}

// NewDefaultReportConfig creates default report configuration
func NewDefaultReportConfig() ReportConfig {
	return ReportConfig{
		DBPort:              DefaultReportDBPort,
		OutputDir:           DefaultReportOutputDir,
		ConnectTimeoutSecs:  DefaultReportConnectTimeoutSecs,
		ConnMaxLifetimeMins: DefaultReportConnMaxLifetimeMins,
		Concurrency:         DefaultReportConcurrency,
	}
}

func (c ReportConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSecs) * time.Second
}

func (c ReportConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMins) * time.Minute
}
