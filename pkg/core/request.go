package core

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Request is the unified input handed to the router and processing units.
// It is built fresh for each facade call and treated as immutable once routed.
type Request struct {
	// ID uniquely identifies this request for logging and history
	ID string `json:"id"`

	// Capability names the unit (or composite workflow) the caller wants.
	// Empty means the caller left routing to the facade method used.
	Capability Capability `json:"capability,omitempty"`

	// Payload carries the source code or problem statement
	Payload string `json:"payload"`

	// Language tags the payload's programming language
	Language Language `json:"language"`

	// Metadata holds request-specific extras (error messages, detail level)
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewRequest builds a request with a fresh identifier. The id format matches
// the history entries users see in logs: req_<8 hex chars>.
func NewRequest(capability Capability, payload string, language Language) Request {
	if language == "" {
		language = DefaultLanguage
	}
	return Request{
		ID:         "req_" + uuid.New().String()[:8],
		Capability: capability,
		Payload:    payload,
		Language:   language,
	}
}

// Validate checks that the request carries a usable payload.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Payload) == "" {
		return ErrEmptyPayload
	}
	return nil
}

// MetaString returns a string metadata value, or "" when absent.
func (r Request) MetaString(key string) string {
	if r.Metadata == nil {
		return ""
	}
	s, _ := r.Metadata[key].(string)
	return s
}

// Result is the normalized envelope every unit and workflow produces.
// Error is set if and only if Success is false.
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Error   string                 `json:"error"`

	// ExecutionTime records wall-clock duration in seconds
	ExecutionTime float64 `json:"execution_time,omitempty"`
}

// Failure builds a failed result with the given error message.
func Failure(message string) Result {
	return Result{
		Success: false,
		Data:    map[string]interface{}{},
		Error:   message,
	}
}

// Success builds a successful result wrapping the given data.
func SuccessResult(data map[string]interface{}) Result {
	return Result{
		Success: true,
		Data:    data,
	}
}

// MarshalJSON serializes the envelope with error as null when unset, matching
// the documented wire form {"success": bool, "data": {...}, "error": text|null}.
func (r Result) MarshalJSON() ([]byte, error) {
	type envelope struct {
		Success       bool                   `json:"success"`
		Data          map[string]interface{} `json:"data"`
		Error         *string                `json:"error"`
		ExecutionTime float64                `json:"execution_time,omitempty"`
	}
	e := envelope{
		Success:       r.Success,
		Data:          r.Data,
		ExecutionTime: r.ExecutionTime,
	}
	if e.Data == nil {
		e.Data = map[string]interface{}{}
	}
	if r.Error != "" {
		e.Error = &r.Error
	}
	return json.Marshal(e)
}

// ProcessingUnit is the contract every capability implementation satisfies.
// Units are external collaborators from the orchestration core's point of
// view: the core only knows their capability tag and this method.
type ProcessingUnit interface {
	// Capability returns the unique tag this unit is registered under
	Capability() Capability

	// Process handles one request and returns a normalized result. A unit
	// reports domain failures through Result.Success=false; a non-nil error
	// means the unit itself could not run at all.
	Process(ctx context.Context, req Request) (Result, error)
}
