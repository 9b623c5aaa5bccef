package core

import "github.com/XiaoConstantine/coda-go/pkg/errors"

var (
	// ErrEmptyPayload indicates a request with no code or problem statement.
	ErrEmptyPayload = errors.New(errors.MalformedRequest, "request payload is empty")
)
