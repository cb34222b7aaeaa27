package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldCacheHit  = "cache_hit"
	FieldFileCount = "file_count"
	FieldSkipped   = "skipped"
	FieldRowCount  = "row_count"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentReport = "report"
)
