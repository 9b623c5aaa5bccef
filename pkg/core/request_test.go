package core

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	t.Run("Generates unique ids", func(t *testing.T) {
		first := NewRequest(CapabilityAnalysis, "def f(): pass", LanguagePython)
		second := NewRequest(CapabilityAnalysis, "def f(): pass", LanguagePython)

		assert.True(t, strings.HasPrefix(first.ID, "req_"))
		assert.Len(t, first.ID, len("req_")+8)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("Defaults language to python", func(t *testing.T) {
		req := NewRequest(CapabilityDebug, "x = 1", "")
		assert.Equal(t, LanguagePython, req.Language)
	})
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"Valid payload", "def f(): pass", false},
		{"Empty payload", "", true},
		{"Whitespace only", "   \n\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(CapabilityAnalysis, tt.payload, LanguagePython)
			err := req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyPayload)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResultEnvelope(t *testing.T) {
	t.Run("Success serializes error as null", func(t *testing.T) {
		res := SuccessResult(map[string]interface{}{"score": 87})

		raw, err := json.Marshal(res)
		require.NoError(t, err)
		assert.JSONEq(t, `{"success": true, "data": {"score": 87}, "error": null}`, string(raw))
	})

	t.Run("Failure carries message and empty data", func(t *testing.T) {
		res := Failure("Unknown command: poetry")

		raw, err := json.Marshal(res)
		require.NoError(t, err)
		assert.JSONEq(t, `{"success": false, "data": {}, "error": "Unknown command: poetry"}`, string(raw))
	})
}

func TestMetaString(t *testing.T) {
	req := NewRequest(CapabilityDebug, "x = 1/0", LanguagePython)
	assert.Empty(t, req.MetaString("error_message"))

	req.Metadata = map[string]interface{}{"error_message": "ZeroDivisionError", "attempt": 2}
	assert.Equal(t, "ZeroDivisionError", req.MetaString("error_message"))
	assert.Empty(t, req.MetaString("attempt"), "non-string metadata reads as empty")
}
