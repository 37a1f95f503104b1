package config

// NormalizerConfig defines where normalized price lists are written
type NormalizerConfig struct {
	InputDir             string `json:"input_dir,omitempty" yaml:"input_dir,omitempty"`
	OutputDir            string `json:"output_dir,omitempty" yaml:"output_dir,omitempty" validate:"required"`
	MaxDescriptionLength int    `json:"max_description_length,omitempty" yaml:"max_description_length,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultNormalizerConfig creates default normalizer configuration.
// An empty InputDir means the download directory.
func NewDefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		OutputDir:            DefaultNormalizerOutputDir,
		MaxDescriptionLength: DefaultNormalizerMaxDescription,
	}
}
