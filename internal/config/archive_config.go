package config

// ArchiveConfig defines the optional GCS archive of normalized price lists
type ArchiveConfig struct {
	Enabled         bool   `json:"enabled" yaml:"enabled"`
	Bucket          string `json:"bucket,omitempty" yaml:"bucket,omitempty" validate:"required_if=Enabled true"`
	Prefix          string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	CredentialsFile string `json:"credentials_file,omitempty" yaml:"credentials_file,omitempty"`
}

// NewDefaultArchiveConfig creates default archive configuration
func NewDefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		Prefix: DefaultArchivePrefix,
	}
}
