package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input    string
		expected Severity
	}{
		{"DEBUG", DEBUG},
		{"INFO", INFO},
		{"WARN", WARN},
		{"ERROR", ERROR},
		{"FATAL", FATAL},
		{"bogus", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSeverity(tt.input))
			if tt.input != "bogus" {
				assert.Equal(t, tt.input, tt.expected.String())
			}
		})
	}
}

func TestLoggerSeverityFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Severity: WARN,
		Outputs:  []Output{&ConsoleOutput{writer: &buf, color: false}},
	})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestLoggerContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Severity: DEBUG,
		Outputs:  []Output{&ConsoleOutput{writer: &buf, color: false}},
	})

	ctx := WithCapability(WithRequestID(context.Background(), "req_deadbeef"), "analysis")
	logger.Info(ctx, "routing request")

	out := buf.String()
	assert.Contains(t, out, "[req=req_deadbeef]")
	assert.Contains(t, out, "[cap=analysis]")
}

func TestConsoleOutputTruncatesPayload(t *testing.T) {
	var buf bytes.Buffer
	out := &ConsoleOutput{writer: &buf, color: false}

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}

	err := out.Write(LogEntry{
		Message: "appending to history",
		Fields:  map[string]interface{}{"payload": string(long)},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "...")
	assert.Less(t, buf.Len(), 300)
}

func TestLoggerLatencyField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Severity: DEBUG,
		Outputs:  []Output{&ConsoleOutput{writer: &buf, color: false}},
	})

	ctx := WithLatency(WithRequestID(context.Background(), "req_cafef00d"), 42)
	logger.Info(ctx, "request completed")

	assert.Contains(t, buf.String(), "[lat=42ms]")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coda.log")

	out, err := NewFileOutput(path)
	require.NoError(t, err)

	logger := NewLogger(Config{Severity: INFO, Outputs: []Output{out}})
	logger.Info(WithRequestID(context.Background(), "req_12345678"), "processing request")
	require.NoError(t, out.Sync())
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "processing request")
	assert.Contains(t, string(data), "[req=req_12345678]")
	// file lines stay plain even though console defaults to color
	assert.NotContains(t, string(data), "\033[")
}

func TestFileOutputAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coda.log")

	for _, msg := range []string{"first run", "second run"} {
		out, err := NewFileOutput(path)
		require.NoError(t, err)
		require.NoError(t, out.Write(LogEntry{Message: msg}))
		require.NoError(t, out.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first run")
	assert.Contains(t, string(data), "second run")
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	custom := NewLogger(Config{Severity: ERROR})
	SetLogger(custom)
	assert.Same(t, custom, GetLogger())
}
