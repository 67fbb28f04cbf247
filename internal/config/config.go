package config

const (
	DefaultTimeZone = "Europe/Berlin"
	BatchSize       = 1000

	// Janitor Configuration Constants
	DefaultCleanupSchedule      = "*/10 * * * *" // drop finished batch reports past retention
	DefaultStagingPurgeSchedule = "30 3 * * *"   // purge staged import rows nightly
	BatchRetentionMinutes       = 120
	StagingRetentionDays        = 14

	// Upload limits
	MaxUploadBytes = 32 << 20
)
