package units

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/coda-go/pkg/core"
)

func process(t *testing.T, unit core.ProcessingUnit, payload string, meta map[string]interface{}) core.Result {
	t.Helper()
	req := core.NewRequest(unit.Capability(), payload, core.LanguagePython)
	req.Metadata = meta
	result, err := unit.Process(context.Background(), req)
	require.NoError(t, err)
	return result
}

func TestAll(t *testing.T) {
	units := All()
	require.Len(t, units, 6)

	seen := make(map[core.Capability]bool)
	for _, u := range units {
		assert.False(t, seen[u.Capability()], "duplicate capability %s", u.Capability())
		seen[u.Capability()] = true
	}
}

func TestAnalysisUnit(t *testing.T) {
	unit := NewAnalysisUnit()
	assert.Equal(t, core.CapabilityAnalysis, unit.Capability())

	t.Run("empty payload fails", func(t *testing.T) {
		result := process(t, unit, "   ", nil)
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
	})

	t.Run("clean code scores high", func(t *testing.T) {
		result := process(t, unit, "def add(a, b):\n    return a + b\n", nil)
		require.True(t, result.Success)

		analysis := result.Data["analysis"].(map[string]interface{})
		quality := analysis["code_quality"].(map[string]interface{})
		score := quality["score"].(int)
		assert.GreaterOrEqual(t, score, 90)
		assert.Equal(t, "Excellent", quality["rating"])
	})

	t.Run("eval flagged as security issue", func(t *testing.T) {
		result := process(t, unit, "def run(cmd):\n    return eval(cmd)\n", nil)
		require.True(t, result.Success)

		analysis := result.Data["analysis"].(map[string]interface{})
		security := analysis["security"].([]string)
		require.NotEmpty(t, security)
		assert.Contains(t, security[0], "eval")

		quality := analysis["code_quality"].(map[string]interface{})
		assert.Less(t, quality["score"].(int), 100)
	})

	t.Run("insights always present", func(t *testing.T) {
		result := process(t, unit, "x = 1\n", nil)
		require.True(t, result.Success)
		assert.NotEmpty(t, result.Data["insights"].([]string))
	})
}

func TestDebugUnit(t *testing.T) {
	unit := NewDebugUnit()
	assert.Equal(t, core.CapabilityDebug, unit.Capability())

	t.Run("empty payload fails", func(t *testing.T) {
		result := process(t, unit, "", nil)
		assert.False(t, result.Success)
	})

	t.Run("mutable default argument detected", func(t *testing.T) {
		code := "def collect(items=[]):\n    items.append(1)\n    return items\n"
		result := process(t, unit, code, nil)
		require.True(t, result.Success)

		analysis := result.Data["analysis"].(map[string]interface{})
		logic := analysis["logic_errors"].([]map[string]interface{})
		require.NotEmpty(t, logic)
		assert.Equal(t, "MutableDefaultArgument", logic[0]["type"])
		assert.Equal(t, "high", logic[0]["severity"])
	})

	t.Run("error message metadata parsed", func(t *testing.T) {
		result := process(t, unit, "x = d['missing']\n", map[string]interface{}{
			"error_message": "KeyError: 'missing' at line 1",
		})
		require.True(t, result.Success)

		analysis := result.Data["analysis"].(map[string]interface{})
		assert.Equal(t, true, analysis["has_errors"])
		runtime := analysis["runtime_errors"].([]map[string]interface{})
		require.NotEmpty(t, runtime)
		assert.Equal(t, "KeyError", runtime[0]["type"])
	})

	t.Run("fix priority sorted by severity", func(t *testing.T) {
		code := "def f(items=[]):\n    if x == None:\n        return items\n"
		result := process(t, unit, code, nil)
		require.True(t, result.Success)

		priority := result.Data["fix_priority"].([]map[string]interface{})
		require.GreaterOrEqual(t, len(priority), 2)
		assert.Equal(t, "high", priority[0]["severity"])
	})

	t.Run("clean code has empty report body", func(t *testing.T) {
		result := process(t, unit, "def add(a, b):\n    return a + b\n", nil)
		require.True(t, result.Success)
		assert.Equal(t, "No errors or issues detected.", result.Data["report"])
	})
}

func TestGenerationUnit(t *testing.T) {
	unit := NewGenerationUnit()
	assert.Equal(t, core.CapabilityGeneration, unit.Capability())

	tests := []struct {
		name        string
		description string
		contains    string
	}{
		{"binary search algorithm", "implement binary search", "def binary_search"},
		{"bubble sort algorithm", "write a bubble sort algorithm", "def bubble_sort"},
		{"api client", "build an api client for github", "class GithubClient"},
		{"function with params", "a function called add that takes a, b", "def add(a, b)"},
		{"generic fallback", "do something unusual", "def main()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := process(t, unit, tt.description, nil)
			require.True(t, result.Success)

			code := result.Data["generated_code"].(string)
			assert.Contains(t, code, tt.contains)

			meta := result.Data["metadata"].(map[string]interface{})
			assert.Greater(t, meta["lines_of_code"].(int), 0)
		})
	}

	t.Run("java class generation", func(t *testing.T) {
		req := core.NewRequest(core.CapabilityGeneration, "create a class Account", core.LanguageJava)
		result, err := unit.Process(context.Background(), req)
		require.NoError(t, err)
		require.True(t, result.Success)
		assert.Contains(t, result.Data["generated_code"].(string), "public class Account")
	})
}

func TestOptimizationUnit(t *testing.T) {
	unit := NewOptimizationUnit()
	assert.Equal(t, core.CapabilityOptimization, unit.Capability())

	t.Run("list membership suggestion", func(t *testing.T) {
		result := process(t, unit, "if item in [1, 2, 3]:\n    print(item)\n", nil)
		require.True(t, result.Success)

		opts := result.Data["optimizations"].([]map[string]interface{})
		require.NotEmpty(t, opts)
		assert.Equal(t, "DataStructure", opts[0]["type"])

		summary := result.Data["summary"].(map[string]interface{})
		assert.Equal(t, len(opts), summary["total_optimizations"])
	})

	t.Run("append loop becomes comprehension", func(t *testing.T) {
		code := "result = []\nfor i in range(10):\n    result.append(i * 2)\n"
		result := process(t, unit, code, nil)
		require.True(t, result.Success)

		opts := result.Data["optimizations"].([]map[string]interface{})
		require.NotEmpty(t, opts)
		assert.Equal(t, "ListComprehension", opts[0]["type"])
		assert.Equal(t, "high", opts[0]["priority"])
	})

	t.Run("optimized code already", func(t *testing.T) {
		result := process(t, unit, "x = 1\n", nil)
		require.True(t, result.Success)
		assert.Contains(t, result.Data["report"].(string), "already well-optimized")
	})
}

func TestExplanationUnit(t *testing.T) {
	unit := NewExplanationUnit()
	assert.Equal(t, core.CapabilityExplanation, unit.Capability())

	code := "def get_user(id):\n    return db[id]\n"

	t.Run("overview and summary", func(t *testing.T) {
		result := process(t, unit, code, nil)
		require.True(t, result.Success)

		explanation := result.Data["explanation"].(map[string]interface{})
		overview := explanation["overview"].(string)
		assert.Contains(t, overview, "Python program")
		assert.Contains(t, result.Data["summary"].(string), overview)
	})

	t.Run("function purpose inferred from name", func(t *testing.T) {
		result := process(t, unit, code, nil)
		require.True(t, result.Success)

		explanation := result.Data["explanation"].(map[string]interface{})
		functions := explanation["functions"].([]map[string]interface{})
		require.Len(t, functions, 1)
		assert.Equal(t, "get_user", functions[0]["name"])
		assert.Contains(t, functions[0]["explanation"].(string), "Retrieves")
	})

	t.Run("long code needs high detail", func(t *testing.T) {
		long := ""
		for i := 0; i < 30; i++ {
			long += "x = 1\n"
		}
		result := process(t, unit, long, nil)
		require.True(t, result.Success)

		explanation := result.Data["explanation"].(map[string]interface{})
		steps := explanation["step_by_step"].([]string)
		require.Len(t, steps, 1)
		assert.Contains(t, steps[0], "too long")

		result = process(t, unit, long, map[string]interface{}{"detail_level": "high"})
		require.True(t, result.Success)
	})
}

func TestDSAUnit(t *testing.T) {
	unit := NewDSAUnit()
	assert.Equal(t, core.CapabilityDSA, unit.Capability())

	tests := []struct {
		name        string
		statement   string
		problemType string
	}{
		{"two sum", "find two numbers in an array that sum to a target", "two_sum"},
		{"reverse string", "reverse a string", "reverse_string"},
		{"parentheses", "check if parentheses in a string are valid", "valid_parentheses"},
		{"cycle", "detect if a linked list has a cycle", "linked_list_cycle"},
		{"binary search", "implement binary search over a sorted array", "binary_search"},
		{"unknown", "frobnicate the widgets", "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := process(t, unit, tt.statement, nil)
			require.True(t, result.Success)
			assert.Equal(t, tt.problemType, result.Data["problem_type"])

			solution := result.Data["solution"].(map[string]interface{})
			assert.NotEmpty(t, solution["code"])
			assert.NotEmpty(t, solution["approach"])
			assert.NotEmpty(t, result.Data["report"])
		})
	}

	t.Run("java solution template", func(t *testing.T) {
		req := core.NewRequest(core.CapabilityDSA, "implement binary search", core.LanguageJava)
		result, err := unit.Process(context.Background(), req)
		require.NoError(t, err)
		require.True(t, result.Success)

		solution := result.Data["solution"].(map[string]interface{})
		assert.Contains(t, solution["code"].(string), "public int binarySearch")
	})
}

func TestDetectProblemType(t *testing.T) {
	assert.Equal(t, "generic", detectProblemType("hello world"))
	assert.Equal(t, "fibonacci", detectProblemType("compute the Fibonacci sequence"))
	assert.Equal(t, "merge_sort", detectProblemType("implement merge sort"))
}
