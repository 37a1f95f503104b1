package config

// StorageConfig defines configuration for run history and price snapshots
type StorageConfig struct {
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=zstd snappy gzip none"`
	ParquetBasePath  string `json:"parquet_base_path,omitempty" yaml:"parquet_base_path,omitempty"`
	SnapshotsEnabled bool   `json:"snapshots_enabled" yaml:"snapshots_enabled"`
	HistoryDBPath    string `json:"history_db_path,omitempty" yaml:"history_db_path,omitempty"`
	HistoryEnabled   bool   `json:"history_enabled" yaml:"history_enabled"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		CompressionCodec: DefaultStorageCompressionCodec,
		ParquetBasePath:  DefaultStorageParquetBasePath,
		SnapshotsEnabled: true,
		HistoryDBPath:    DefaultStorageHistoryDBPath,
		HistoryEnabled:   true,
	}
}
