package logging

// Standardized structured logging keys.
const (
	FieldComponent     = "component"
	FieldRunID         = "run_id"
	FieldOperation     = "operation"
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldErrorKind     = "error_kind"
	FieldImpact        = "impact"
	FieldAlert         = "alert"
	FieldPath          = "path"
	FieldDestination   = "destination"
	FieldCategory      = "category"
	FieldCount         = "count"
)

// infoHighlightKeys are rendered first on INFO lines; the rest follow in
// record order until infoAttrLimit is reached.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	FieldOperation,
	FieldPath,
	FieldDestination,
	FieldCategory,
	FieldCount,
	FieldErrorKind,
	FieldErrorHint,
	FieldImpact,
	"error",
}

const infoAttrLimit = 8

// Keys that only appear on DEBUG lines or in JSON output.
var infoHiddenKeys = map[string]struct{}{
	FieldRunID:         {},
	FieldCorrelationID: {},
}
