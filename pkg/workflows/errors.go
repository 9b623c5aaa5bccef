package workflows

import "github.com/XiaoConstantine/coda-go/pkg/errors"

var (
	// ErrEmptySequence indicates a run was requested with no capabilities.
	ErrEmptySequence = errors.New(errors.WorkflowExecutionFailed, "capability sequence is empty")
)
