package units

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/logging"
)

// Bug describes a single detected issue. Line is 1-based, 0 when unknown.
type Bug struct {
	Type         string
	Severity     string
	Line         int
	Message      string
	Context      string
	SuggestedFix string
	Explanation  string
}

func (b Bug) asMap() map[string]interface{} {
	var line interface{}
	if b.Line > 0 {
		line = b.Line
	}
	return map[string]interface{}{
		"type":          b.Type,
		"severity":      b.Severity,
		"line":          line,
		"message":       b.Message,
		"context":       b.Context,
		"suggested_fix": b.SuggestedFix,
		"explanation":   b.Explanation,
	}
}

var severityRank = map[string]int{"critical": 0, "high": 1, "medium": 2, "low": 3}

// DebugUnit finds likely bugs through pattern matching and classifies them
// by severity. An "error_message" metadata entry is parsed into the analysis.
type DebugUnit struct{}

func NewDebugUnit() *DebugUnit { return &DebugUnit{} }

func (u *DebugUnit) Capability() core.Capability { return core.CapabilityDebug }

var (
	assignInCondRe   = regexp.MustCompile(`(?m)^\s*(?:if|elif|while)\s+[^=<>!]*[^=<>!]=[^=][^:]*:`)
	mutableDefaultRe = regexp.MustCompile(`(?m)^\s*def\s+(\w+)\s*\([^)]*=\s*(\[\]|\{\})`)
	noneCompareRe    = regexp.MustCompile(`[=!]=\s*None`)
	divZeroRe        = regexp.MustCompile(`/\s*0(?:[^.\d]|$)`)
	errorTypeRe      = regexp.MustCompile(`(\w+Error|\w+Exception)`)
	errorLineRe      = regexp.MustCompile(`line (\d+)`)
	javaIndexRe      = regexp.MustCompile(`(\w+)\[(\d+)\]`)
	emptyCatchRe     = regexp.MustCompile(`catch\s*\([^)]+\)\s*\{\s*\}`)
)

func (u *DebugUnit) Process(ctx context.Context, req core.Request) (core.Result, error) {
	if err := req.Validate(); err != nil {
		return core.Failure("no code provided for debugging"), nil
	}

	code := req.Payload
	errMsg := req.MetaString("error_message")

	var syntaxErrs, runtimeErrs, logicErrs, potential []Bug
	switch req.Language {
	case core.LanguagePython:
		syntaxErrs = checkPythonSyntax(code)
		runtimeErrs = checkPythonRuntime(code, errMsg)
		logicErrs = checkPythonLogic(code)
		potential = checkPythonPotential(code)
	default:
		runtimeErrs = checkBraceRuntime(code, errMsg)
		logicErrs = checkBraceLogic(code)
	}

	fixPriority := make([]Bug, 0, len(syntaxErrs)+len(runtimeErrs)+len(logicErrs)+len(potential))
	fixPriority = append(fixPriority, syntaxErrs...)
	fixPriority = append(fixPriority, runtimeErrs...)
	fixPriority = append(fixPriority, logicErrs...)
	fixPriority = append(fixPriority, potential...)
	sort.SliceStable(fixPriority, func(i, j int) bool {
		return severityRank[fixPriority[i].Severity] < severityRank[fixPriority[j].Severity]
	})

	hasErrors := len(syntaxErrs) > 0 || len(runtimeErrs) > 0
	critical := 0
	for _, b := range fixPriority {
		if b.Severity == "critical" {
			critical++
		}
	}

	var fixedCode interface{}
	if req.Language == core.LanguagePython && len(fixPriority) > 0 {
		if fixed := applyPythonFixes(code, fixPriority); fixed != code {
			fixedCode = fixed
		}
	}

	logging.GetLogger().Debug(ctx, "debug complete: %d issues (%d critical)", len(fixPriority), critical)

	return core.SuccessResult(map[string]interface{}{
		"analysis": map[string]interface{}{
			"has_errors":      hasErrors,
			"total_issues":    len(fixPriority),
			"critical_issues": critical,
			"syntax_errors":   bugMaps(syntaxErrs),
			"runtime_errors":  bugMaps(runtimeErrs),
			"logic_errors":    bugMaps(logicErrs),
			"potential_bugs":  bugMaps(potential),
		},
		"fix_priority": bugMaps(fixPriority),
		"report":       debugReport(syntaxErrs, runtimeErrs, logicErrs, potential),
		"fixed_code":   fixedCode,
	}), nil
}

func bugMaps(bugs []Bug) []map[string]interface{} {
	out := make([]map[string]interface{}, len(bugs))
	for i, b := range bugs {
		out[i] = b.asMap()
	}
	return out
}

func checkPythonSyntax(code string) []Bug {
	var bugs []Bug
	for i, line := range codeLines(code) {
		if assignInCondRe.MatchString(line) {
			bugs = append(bugs, Bug{
				Type:         "SyntaxError",
				Severity:     "critical",
				Line:         i + 1,
				Message:      "Assignment inside condition",
				Context:      lineContext(code, i+1),
				SuggestedFix: "Use '==' for comparison, '=' only for assignment",
				Explanation:  "Python does not allow plain assignment in conditions",
			})
		}
	}
	return bugs
}

func checkPythonRuntime(code, errMsg string) []Bug {
	var bugs []Bug
	if b := parseErrorMessage(errMsg, code); b != nil {
		bugs = append(bugs, *b)
	}
	for i, line := range codeLines(code) {
		if divZeroRe.MatchString(line) {
			bugs = append(bugs, Bug{
				Type:         "ZeroDivisionError",
				Severity:     "high",
				Line:         i + 1,
				Message:      "Division by zero",
				Context:      lineContext(code, i+1),
				SuggestedFix: "Add check: if denominator != 0: ...",
				Explanation:  "Dividing by zero causes a runtime error",
			})
		}
	}
	return bugs
}

func checkPythonLogic(code string) []Bug {
	var bugs []Bug
	for i, line := range codeLines(code) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "if True:" || trimmed == "if False:" {
			bugs = append(bugs, Bug{
				Type:         "ConstantCondition",
				Severity:     "high",
				Line:         i + 1,
				Message:      "Condition is always the same value",
				Context:      lineContext(code, i+1),
				SuggestedFix: "Review the condition logic",
				Explanation:  "Constant conditions indicate logic errors",
			})
		}
		if m := mutableDefaultRe.FindStringSubmatch(line); m != nil {
			bugs = append(bugs, Bug{
				Type:         "MutableDefaultArgument",
				Severity:     "high",
				Line:         i + 1,
				Message:      fmt.Sprintf("Mutable default argument in function %q", m[1]),
				Context:      lineContext(code, i+1),
				SuggestedFix: "Use None as default and create the mutable in the function body",
				Explanation:  "Mutable defaults are shared between calls",
			})
		}
	}
	return bugs
}

func checkPythonPotential(code string) []Bug {
	var bugs []Bug
	lines := codeLines(code)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if noneCompareRe.MatchString(line) {
			bugs = append(bugs, Bug{
				Type:         "IncorrectNoneComparison",
				Severity:     "low",
				Line:         i + 1,
				Message:      "Use 'is None' instead of '== None'",
				Context:      lineContext(code, i+1),
				SuggestedFix: "Replace '== None' with 'is None'",
				Explanation:  "'is' is the idiomatic way to check for None",
			})
		}
		if strings.HasPrefix(trimmed, "except") && strings.HasSuffix(trimmed, ":") {
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "pass" {
				bugs = append(bugs, Bug{
					Type:         "EmptyExceptHandler",
					Severity:     "medium",
					Line:         i + 1,
					Message:      "Empty exception handler",
					Context:      lineContext(code, i+1),
					SuggestedFix: "Log the exception or handle it appropriately",
					Explanation:  "Silent exception handling hides errors",
				})
			}
		}
	}
	return bugs
}

func checkBraceRuntime(code, errMsg string) []Bug {
	var bugs []Bug
	if b := parseErrorMessage(errMsg, code); b != nil {
		bugs = append(bugs, *b)
	}
	for i, line := range codeLines(code) {
		for _, m := range javaIndexRe.FindAllStringSubmatch(line, -1) {
			bugs = append(bugs, Bug{
				Type:         "PotentialIndexOutOfBounds",
				Severity:     "medium",
				Line:         i + 1,
				Message:      fmt.Sprintf("Fixed index %s on %q", m[2], m[1]),
				Context:      strings.TrimSpace(line),
				SuggestedFix: "Check length before accessing",
				Explanation:  "Accessing beyond bounds raises an exception",
			})
		}
	}
	return bugs
}

func checkBraceLogic(code string) []Bug {
	var bugs []Bug
	if emptyCatchRe.MatchString(code) {
		bugs = append(bugs, Bug{
			Type:         "EmptyCatchBlock",
			Severity:     "medium",
			Message:      "Empty catch block detected",
			SuggestedFix: "Add proper exception handling or logging",
			Explanation:  "Silent exception handling hides errors",
		})
	}
	return bugs
}

var errorFixes = map[string][2]string{
	"NameError":         {"Check if the variable is defined before use. Check spelling.", "Attempting to use a variable that hasn't been defined"},
	"TypeError":         {"Check that the operation uses compatible types", "Operation performed on incompatible types"},
	"AttributeError":    {"Check if the object has the attribute/method. Check for None values.", "Trying to access an attribute/method that doesn't exist"},
	"IndexError":        {"Check list length before accessing. Use bounds checking.", "Accessing a sequence with an invalid index"},
	"KeyError":          {"Check if the key exists. Use .get() or a membership test.", "Accessing a dictionary with a non-existent key"},
	"ValueError":        {"Check if the value is in the expected format/range", "Function received an argument with the wrong value"},
	"ZeroDivisionError": {"Add a check to ensure the denominator is not zero", "Attempting to divide by zero"},
	"ImportError":       {"Check if the module is installed. Check the import path.", "Unable to import the specified module"},
	"SyntaxError":       {"Check for typos, missing colons, or unclosed brackets", "Code violates the language's syntax rules"},
}

// parseErrorMessage turns a caller-supplied runtime error string into a Bug,
// extracting the error type and line number when present.
func parseErrorMessage(errMsg, code string) *Bug {
	if strings.TrimSpace(errMsg) == "" {
		return nil
	}

	errType := "UnknownError"
	if m := errorTypeRe.FindStringSubmatch(errMsg); m != nil {
		errType = m[1]
	}
	line := 0
	if m := errorLineRe.FindStringSubmatch(errMsg); m != nil {
		line, _ = strconv.Atoi(m[1])
	}

	fix, explanation := "Review the code at the error location", "An error occurred during execution"
	if known, ok := errorFixes[errType]; ok {
		fix, explanation = known[0], known[1]
	}

	return &Bug{
		Type:         errType,
		Severity:     "high",
		Line:         line,
		Message:      errMsg,
		Context:      lineContext(code, line),
		SuggestedFix: fix,
		Explanation:  explanation,
	}
}

// lineContext returns the lines surrounding lineNum with the offending
// line marked, matching the format shown in debug reports.
func lineContext(code string, lineNum int) string {
	if lineNum <= 0 {
		return ""
	}
	lines := strings.Split(code, "\n")
	start := lineNum - 3
	if start < 0 {
		start = 0
	}
	end := lineNum + 2
	if end > len(lines) {
		end = len(lines)
	}
	var out []string
	for i := start; i < end; i++ {
		marker := "    "
		if i == lineNum-1 {
			marker = ">>> "
		}
		out = append(out, fmt.Sprintf("%s%d: %s", marker, i+1, lines[i]))
	}
	return strings.Join(out, "\n")
}

// applyPythonFixes rewrites the issues that have a mechanical fix.
func applyPythonFixes(code string, bugs []Bug) string {
	fixed := code
	for _, b := range bugs {
		switch b.Type {
		case "IncorrectNoneComparison":
			fixed = strings.ReplaceAll(fixed, "== None", "is None")
			fixed = strings.ReplaceAll(fixed, "!= None", "is not None")
		case "MutableDefaultArgument":
			lines := strings.Split(fixed, "\n")
			if b.Line > 0 && b.Line <= len(lines) {
				line := lines[b.Line-1]
				line = regexp.MustCompile(`=\s*\[\]`).ReplaceAllString(line, "=None")
				line = regexp.MustCompile(`=\s*\{\}`).ReplaceAllString(line, "=None")
				lines[b.Line-1] = line
			}
			fixed = strings.Join(lines, "\n")
		}
	}
	return fixed
}

func debugReport(syntaxErrs, runtimeErrs, logicErrs, potential []Bug) string {
	if len(syntaxErrs)+len(runtimeErrs)+len(logicErrs)+len(potential) == 0 {
		return "No errors or issues detected."
	}

	var report []string
	report = append(report, "Debug Report", strings.Repeat("=", 50))

	section := func(title string, bugs []Bug, limit int) {
		if len(bugs) == 0 {
			return
		}
		report = append(report, fmt.Sprintf("\n%s (%d):", title, len(bugs)))
		if limit > 0 && len(bugs) > limit {
			bugs = bugs[:limit]
		}
		for _, b := range bugs {
			loc := "Unknown line"
			if b.Line > 0 {
				loc = fmt.Sprintf("Line %d", b.Line)
			}
			report = append(report, fmt.Sprintf("\n  %s: %s", loc, b.Type))
			report = append(report, fmt.Sprintf("  Message: %s", b.Message))
			report = append(report, fmt.Sprintf("  Fix: %s", b.SuggestedFix))
		}
	}

	section("SYNTAX ERRORS", syntaxErrs, 0)
	section("RUNTIME ERRORS", runtimeErrs, 0)
	section("LOGIC ERRORS", logicErrs, 0)
	section("POTENTIAL ISSUES", potential, 5)

	return strings.Join(report, "\n")
}
