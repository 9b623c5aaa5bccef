package units

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/logging"
)

// Optimization is a single suggested rewrite with its expected impact.
type Optimization struct {
	Type          string
	Priority      string
	Line          int
	OriginalCode  string
	OptimizedCode string
	Explanation   string
	Impact        string
	Improvement   string
}

func (o Optimization) asMap() map[string]interface{} {
	var line interface{}
	if o.Line > 0 {
		line = o.Line
	}
	return map[string]interface{}{
		"type":                  o.Type,
		"priority":              o.Priority,
		"line":                  line,
		"original_code":         o.OriginalCode,
		"optimized_code":        o.OptimizedCode,
		"explanation":           o.Explanation,
		"impact":                o.Impact,
		"estimated_improvement": o.Improvement,
	}
}

// OptimizationUnit suggests performance and readability rewrites found
// through pattern matching on the payload.
type OptimizationUnit struct{}

func NewOptimizationUnit() *OptimizationUnit { return &OptimizationUnit{} }

func (u *OptimizationUnit) Capability() core.Capability { return core.CapabilityOptimization }

var (
	listMembershipRe = regexp.MustCompile(`if\s+(\w+)\s+in\s+\[([^\]]+)\]`)
	appendLoopRe     = regexp.MustCompile(`(?m)^(\s*)for\s+(\w+)\s+in\s+([^:]+):\s*\n\s+(\w+)\.append\(`)
	lenInLoopRe      = regexp.MustCompile(`(?m)^\s*(?:for|while)[^:\n{]*\blen\(`)
	javaStrConcatRe  = regexp.MustCompile(`(?s)for.*\{[^}]*\+=.*String`)
	wrapperTypeRe    = regexp.MustCompile(`Integer|Double|Long`)
)

func (u *OptimizationUnit) Process(ctx context.Context, req core.Request) (core.Result, error) {
	if err := req.Validate(); err != nil {
		return core.Failure("no code provided for optimization"), nil
	}

	code := req.Payload

	var opts []Optimization
	switch req.Language {
	case core.LanguageJava:
		opts = optimizeJava(code)
	default:
		opts = optimizePython(code)
	}

	high, medium, low := 0, 0, 0
	for _, o := range opts {
		switch o.Priority {
		case "high":
			high++
		case "medium":
			medium++
		default:
			low++
		}
	}

	logging.GetLogger().Debug(ctx, "optimization complete: %d suggestions (%d high)", len(opts), high)

	return core.SuccessResult(map[string]interface{}{
		"original_code":  code,
		"optimizations":  optimizationMaps(opts),
		"optimized_code": nil,
		"report":         optimizationReport(opts),
		"summary": map[string]interface{}{
			"total_optimizations": len(opts),
			"high_priority":       high,
			"medium_priority":     medium,
			"low_priority":        low,
		},
	}), nil
}

func optimizationMaps(opts []Optimization) []map[string]interface{} {
	out := make([]map[string]interface{}, len(opts))
	for i, o := range opts {
		out[i] = o.asMap()
	}
	return out
}

func optimizePython(code string) []Optimization {
	var opts []Optimization

	// loop + append -> list comprehension
	for _, m := range appendLoopRe.FindAllStringSubmatchIndex(code, -1) {
		line := strings.Count(code[:m[0]], "\n") + 1
		sub := appendLoopRe.FindStringSubmatch(code[m[0]:m[1]])
		opts = append(opts, Optimization{
			Type:          "ListComprehension",
			Priority:      "high",
			Line:          line,
			OriginalCode:  strings.TrimSpace(code[m[0]:m[1]]),
			OptimizedCode: fmt.Sprintf("%s = [item for %s in %s]", sub[4], sub[2], strings.TrimSpace(sub[3])),
			Explanation:   "Replace loop with list comprehension for better performance",
			Impact:        "performance",
			Improvement:   "2-3x faster, more Pythonic",
		})
	}

	// membership test against a list literal
	for _, m := range listMembershipRe.FindAllStringSubmatchIndex(code, -1) {
		line := strings.Count(code[:m[0]], "\n") + 1
		sub := listMembershipRe.FindStringSubmatch(code[m[0]:m[1]])
		opts = append(opts, Optimization{
			Type:          "DataStructure",
			Priority:      "medium",
			Line:          line,
			OriginalCode:  fmt.Sprintf("if %s in [%s]", sub[1], sub[2]),
			OptimizedCode: fmt.Sprintf("if %s in {%s}", sub[1], sub[2]),
			Explanation:   "Use set instead of list for membership testing",
			Impact:        "performance",
			Improvement:   "O(1) vs O(n) lookup time",
		})
	}

	// string concatenation with +=
	for i, line := range codeLines(code) {
		if strings.Contains(line, "+=") && strings.Contains(strings.ToLower(line), "str") {
			opts = append(opts, Optimization{
				Type:          "StringConcatenation",
				Priority:      "medium",
				Line:          i + 1,
				OriginalCode:  strings.TrimSpace(line),
				OptimizedCode: "Use a list and ''.join() for string concatenation",
				Explanation:   "String concatenation in loops is inefficient",
				Impact:        "performance",
				Improvement:   "O(n) vs O(n^2) for large strings",
			})
		}
	}

	// repeated old-style formatting
	if strings.Count(code, "%") > 3 || strings.Count(code, ".format") > 3 {
		opts = append(opts, Optimization{
			Type:          "StringFormatting",
			Priority:      "low",
			OriginalCode:  "Multiple .format() or % operations",
			OptimizedCode: "Use f-strings for better readability and performance",
			Explanation:   "f-strings are faster and more readable",
			Impact:        "performance",
			Improvement:   "10-20% faster than .format()",
		})
	}

	// len() evaluated inside a loop header
	for _, m := range lenInLoopRe.FindAllStringIndex(code, -1) {
		line := strings.Count(code[:m[0]], "\n") + 1
		opts = append(opts, Optimization{
			Type:          "FunctionCall",
			Priority:      "low",
			Line:          line,
			OriginalCode:  "len() called in loop",
			OptimizedCode: "Store the len() result before the loop",
			Explanation:   "Avoid repeated len() calls",
			Impact:        "performance",
			Improvement:   "Minor improvement for large iterations",
		})
	}

	return opts
}

func optimizeJava(code string) []Optimization {
	var opts []Optimization

	if javaStrConcatRe.MatchString(code) {
		opts = append(opts, Optimization{
			Type:          "StringBuilder",
			Priority:      "high",
			OriginalCode:  "String concatenation in loop",
			OptimizedCode: "Use StringBuilder instead of String concatenation",
			Explanation:   "StringBuilder is mutable and much faster for concatenation",
			Impact:        "performance",
			Improvement:   "10-100x faster for large strings",
		})
	}

	if strings.Contains(code, "LinkedList") && strings.Contains(code, ".get(") {
		opts = append(opts, Optimization{
			Type:          "DataStructure",
			Priority:      "medium",
			OriginalCode:  "LinkedList with random access",
			OptimizedCode: "Use ArrayList instead of LinkedList for random access",
			Explanation:   "ArrayList has O(1) random access vs LinkedList's O(n)",
			Impact:        "performance",
			Improvement:   "Much faster random access",
		})
	}

	if wrapperTypeRe.MatchString(code) && strings.Contains(code, "for") {
		opts = append(opts, Optimization{
			Type:          "AutoBoxing",
			Priority:      "medium",
			OriginalCode:  "Potential autoboxing in loops",
			OptimizedCode: "Use primitive types instead of wrapper classes",
			Explanation:   "Avoid autoboxing overhead in performance-critical code",
			Impact:        "performance",
			Improvement:   "Reduced memory and CPU overhead",
		})
	}

	return opts
}

func optimizationReport(opts []Optimization) string {
	if len(opts) == 0 {
		return "Code is already well-optimized. No significant improvements found."
	}

	var high, medium, low []Optimization
	for _, o := range opts {
		switch o.Priority {
		case "high":
			high = append(high, o)
		case "medium":
			medium = append(medium, o)
		default:
			low = append(low, o)
		}
	}

	var report []string
	report = append(report, "Optimization Report", strings.Repeat("=", 60))

	if len(high) > 0 {
		report = append(report, fmt.Sprintf("\nHIGH PRIORITY (%d optimizations):", len(high)))
		for i, o := range high {
			report = append(report, fmt.Sprintf("\n%d. %s", i+1, o.Type))
			if o.Line > 0 {
				report = append(report, fmt.Sprintf("   Line: %d", o.Line))
			}
			report = append(report, fmt.Sprintf("   Impact: %s", o.Impact))
			report = append(report, fmt.Sprintf("   Improvement: %s", o.Improvement))
			report = append(report, fmt.Sprintf("   Suggestion: %s", o.Explanation))
		}
	}
	if len(medium) > 0 {
		report = append(report, fmt.Sprintf("\nMEDIUM PRIORITY (%d optimizations):", len(medium)))
		for i, o := range medium {
			report = append(report, fmt.Sprintf("%d. %s - %s", i+1, o.Type, o.Explanation))
		}
	}
	if len(low) > 0 {
		report = append(report, fmt.Sprintf("\nLOW PRIORITY (%d optimizations):", len(low)))
		for i, o := range low {
			report = append(report, fmt.Sprintf("%d. %s", i+1, o.Type))
		}
	}

	return strings.Join(report, "\n")
}
