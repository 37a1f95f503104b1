package config

const (
	// Run modes
	ModeIngest   = "ingest"
	ModeDownload = "download"
	ModeProcess  = "process"
	ModeUpload   = "upload"
	ModeReport   = "report"

	// Config discovery
	ConfigPathEnvVar = "PRICEFEED_CONFIG_PATH"
	DefaultEnvFile   = ".env"

	// Portal Defaults
	DefaultPortalUserAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultPortalWindowWidth         = 1920
	DefaultPortalWindowHeight        = 1080
	DefaultPortalPageLoadTimeoutSecs = 30
	DefaultPortalElementTimeoutSecs  = 10
	DefaultPortalLoginTimeoutSecs    = 15

	// Download Defaults
	DefaultDownloadDir          = "data_sin_procesar"
	DefaultScreenshotSubdir     = "screenshots"
	DefaultDownloadPollMs       = 1000
	DefaultDownloadInitialMs    = 3000
	DefaultDownloadMaxWaitSecs  = 120
	DefaultDownloadFallbackSecs = 45
	DefaultExpressMaxWaitSecs   = 60

	// Upload Defaults
	DefaultUploadMaxRetries     = 3
	DefaultUploadRetryDelayMs   = 5000
	DefaultUploadMaxJitterMs    = 1500
	DefaultUploadConnectTimeout = 10
	DefaultUploadReadTimeout    = 180
	DefaultUploadErrorBodyLimit = 500
	DefaultUploadUserAgent      = "pricefeed/1.0"

	// Normalizer Defaults
	DefaultNormalizerOutputDir      = "datos_procesados"
	DefaultNormalizerMaxDescription = 100

	// Storage Defaults
	DefaultStorageParquetBasePath  = "database"
	DefaultStorageCompressionCodec = "zstd"
	DefaultStorageHistoryDBPath    = "database/history/pricefeed_history.db"

	// Report Defaults
	DefaultReportDBPort              = 3306
	DefaultReportOutputDir           = "output"
	DefaultReportConnectTimeoutSecs  = 10
	DefaultReportConnMaxLifetimeMins = 30
	DefaultReportConcurrency         = 2

	// Archive Defaults
	DefaultArchivePrefix = "pricefeed"
)
