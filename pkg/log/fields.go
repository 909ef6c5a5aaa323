package log

const (
	// Command
	FieldCommand = "command"
	FieldRunID   = "run_id"
	FieldLatency = "latency_ms"

	// Service
	FieldService = "service"

	// Generation
	FieldSequence  = "sequence"
	FieldGUID      = "guid"
	FieldGenerator = "generator"
	FieldPath      = "path"
	FieldComponent = "component"
	FieldSelection = "selection"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
