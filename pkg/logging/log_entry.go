package logging

// LogEntry represents a structured log record with fields particularly relevant
// to request routing and workflow execution.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Orchestration-specific fields
	RequestID  string // The request being processed
	Capability string // The capability handling the request
	Latency    int64  // Operation duration in milliseconds

	// General structured data
	Fields map[string]interface{}
}
