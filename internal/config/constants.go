package config

// Application constants for the tribometer aggregation tool
const (
	// Application Info
	AppName   = "tribo"
	EnvPrefix = "TRIBO"

	// Input naming conventions of the DASYLab exports
	DefaultExtension     = ".asc"
	DefaultSecondsMarker = "_sek"

	// Parser defaults
	DefaultDelimiter      = ";"
	DefaultDateColumn     = "Datum"
	DefaultTimeColumn     = "Uhrzeit"
	DefaultDateTimeColumn = "Time"
	DefaultTimezone       = "Europe/Berlin"

	// Output defaults
	DefaultOutputDirName   = "out"
	DefaultOutputFormat    = "csv"
	DefaultTimestampLayout = "2006-01-02 15:04:05.999999999"
	DefaultFloatPrecision  = -1
	MinutesArtifactName    = "minutes"
	SecondsArtifactName    = "seconds"
	SummaryArtifactName    = "summary.csv"
	MetadataArtifactName   = "metadata.json"

	// Nested directory policies
	NestedDirsError  = "error"
	NestedDirsIgnore = "ignore"

	// Logging
	DefaultLogFile = "logs/tribo.log"
)

// DefaultPartMarkers is the ordered continuation vocabulary; position+1 is the part index
func DefaultPartMarkers() []string {
	return []string{"_zwei", "_drei", "_vier", "_fuenf", "_sechs", "_sieben", "_acht", "_neun", "_zehn"}
}

// DefaultIgnoreTokens lists name fragments of auxiliary exports that share the raw extension
func DefaultIgnoreTokens() []string {
	return []string{"_logfile", "heizung"}
}

// DefaultDateLayouts are tried in order for the date column
func DefaultDateLayouts() []string {
	return []string{"02.01.2006", "2006-01-02", "02.01.06", "2.1.2006"}
}

// DefaultTimeLayouts are tried in order for the time-of-day column.
// Fractional seconds are accepted by time.Parse without being part of the layout.
func DefaultTimeLayouts() []string {
	return []string{"15:04:05", "15:04"}
}

// DefaultDateTimeLayouts are tried in order for a single combined datetime column
func DefaultDateTimeLayouts() []string {
	return []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00", "02.01.2006 15:04:05"}
}
