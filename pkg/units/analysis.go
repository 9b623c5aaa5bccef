package units

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/logging"
)

// AnalysisUnit scores code quality, structure, and risk from lightweight
// lexical heuristics. It never executes or fully parses the payload.
type AnalysisUnit struct{}

func NewAnalysisUnit() *AnalysisUnit { return &AnalysisUnit{} }

func (u *AnalysisUnit) Capability() core.Capability { return core.CapabilityAnalysis }

var (
	pyFuncRe     = regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+(\w+)\s*\(([^)]*)\)`)
	pyClassRe    = regexp.MustCompile(`(?m)^\s*class\s+(\w+)`)
	braceFuncRe  = regexp.MustCompile(`(?m)(?:function\s+(\w+)\s*\(([^)]*)\)|(?:\w[\w<>\[\]]*\s+)+(\w+)\s*\(([^)]*)\)\s*\{)`)
	credentialRe = regexp.MustCompile(`(?i)(password|secret|api_?key|token)\s*=\s*["'][^"']+["']`)
	sqlConcatRe  = regexp.MustCompile(`(?i)execute\s*\([^)]*(%s|\+)`)
	evalRe       = regexp.MustCompile(`\b(eval|exec)\s*\(`)
)

func (u *AnalysisUnit) Process(ctx context.Context, req core.Request) (core.Result, error) {
	if err := req.Validate(); err != nil {
		return core.Failure("no code provided for analysis"), nil
	}

	code := req.Payload
	lang := req.Language

	structure := analyzeStructure(code, lang)
	loc := linesOfCode(code, lang)
	complexity := cyclomaticEstimate(code, lang)
	nesting := maxNesting(code)

	smells := detectCodeSmells(code, lang, nesting)
	security := detectSecurityIssues(code)
	performance := detectPerformanceIssues(code, lang)

	// Simplified maintainability index, clamped to 0..100
	maintainability := 171 - 5.43*float64(complexity) - 16.2*float64(loc)/100
	if maintainability > 100 {
		maintainability = 100
	}
	if maintainability < 0 {
		maintainability = 0
	}

	score := qualityScore(complexity, smells, security, performance)
	rating := qualityRating(score)

	quality := map[string]interface{}{
		"score":                 score,
		"rating":                rating,
		"maintainability_index": maintainability,
		"summary":               qualitySummary(rating, complexity, smells, security, performance),
	}

	insights := buildInsights(complexity, nesting, maintainability, smells, security, performance)

	logging.GetLogger().Debug(ctx, "analysis complete: score=%d loc=%d complexity=%d", score, loc, complexity)

	return core.SuccessResult(map[string]interface{}{
		"analysis": map[string]interface{}{
			"structure": structure,
			"metrics": map[string]interface{}{
				"lines_of_code":         loc,
				"cyclomatic_complexity": complexity,
				"nesting_depth":         nesting,
			},
			"code_quality":       quality,
			"code_smells":        smells,
			"security":           security,
			"performance_issues": performance,
		},
		"insights": insights,
		"language": lang.String(),
	}), nil
}

func analyzeStructure(code string, lang core.Language) map[string]interface{} {
	var functions, classes int
	if lang == core.LanguagePython {
		functions = len(pyFuncRe.FindAllString(code, -1))
		classes = len(pyClassRe.FindAllString(code, -1))
	} else {
		functions = len(braceFuncRe.FindAllString(code, -1))
		classes = strings.Count(code, "class ")
	}
	return map[string]interface{}{
		"functions": functions,
		"classes":   classes,
		"imports":   countImports(code, lang),
	}
}

func countImports(code string, lang core.Language) int {
	count := 0
	for _, line := range codeLines(code) {
		trimmed := strings.TrimSpace(line)
		switch lang {
		case core.LanguagePython:
			if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") {
				count++
			}
		default:
			if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "#include") {
				count++
			}
		}
	}
	return count
}

// cyclomaticEstimate counts decision points plus one, the original's
// regex-based approximation generalized across languages.
func cyclomaticEstimate(code string, lang core.Language) int {
	complexity := 1
	keywords := []string{"if ", "for ", "while ", "case ", "catch ", "&&", "||"}
	if lang == core.LanguagePython {
		keywords = []string{"if ", "elif ", "for ", "while ", "except", " and ", " or "}
	}
	for _, kw := range keywords {
		complexity += strings.Count(code, kw)
	}
	return complexity
}

func detectCodeSmells(code string, lang core.Language, nesting int) []string {
	var smells []string

	for _, fn := range extractFunctions(code, lang) {
		if fn.lineCount > 50 {
			smells = append(smells, fmt.Sprintf("Long function %q (%d lines)", fn.name, fn.lineCount))
		}
		if fn.paramCount > 5 {
			smells = append(smells, fmt.Sprintf("Too many parameters in %q (%d)", fn.name, fn.paramCount))
		}
	}

	if nesting > 4 {
		smells = append(smells, fmt.Sprintf("Deeply nested code (depth %d)", nesting))
	}

	return dedupe(smells)
}

func detectSecurityIssues(code string) []string {
	var issues []string

	if evalRe.MatchString(code) {
		issues = append(issues, "Use of eval/exec - potential code injection risk")
	}
	if credentialRe.MatchString(code) {
		issues = append(issues, "Potential hardcoded credential")
	}
	if sqlConcatRe.MatchString(code) {
		issues = append(issues, "Potential SQL injection - use parameterized queries")
	}

	return issues
}

func detectPerformanceIssues(code string, lang core.Language) []string {
	var issues []string

	lines := codeLines(code)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "for ") && !strings.HasPrefix(trimmed, "while ") {
			continue
		}
		depth := indentDepth(line)
		for j := i + 1; j < len(lines); j++ {
			inner := strings.TrimSpace(lines[j])
			if inner == "" {
				continue
			}
			if indentDepth(lines[j]) <= depth {
				break
			}
			if strings.HasPrefix(inner, "for ") || strings.HasPrefix(inner, "while ") {
				issues = append(issues, "Nested loops detected - consider reducing quadratic work")
			}
			if lang == core.LanguagePython && strings.Contains(inner, ".append(") {
				issues = append(issues, "Consider a list comprehension instead of append in a loop")
			}
			if strings.Contains(inner, "+=") && strings.Contains(inner, `"`) {
				issues = append(issues, "String concatenation in a loop - use a builder/join")
			}
		}
	}

	return dedupe(issues)
}

type functionInfo struct {
	name       string
	paramCount int
	lineCount  int
}

// extractFunctions finds function definitions and estimates their extent.
// For Python the extent runs until indentation returns to the def's level;
// for brace languages it runs to the matching closing brace heuristically.
func extractFunctions(code string, lang core.Language) []functionInfo {
	var out []functionInfo
	lines := codeLines(code)

	if lang == core.LanguagePython {
		for i, line := range lines {
			m := pyFuncRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			depth := indentDepth(line)
			end := len(lines)
			for j := i + 1; j < len(lines); j++ {
				trimmed := strings.TrimSpace(lines[j])
				if trimmed == "" {
					continue
				}
				if indentDepth(lines[j]) <= depth {
					end = j
					break
				}
			}
			out = append(out, functionInfo{
				name:       m[1],
				paramCount: countParams(m[2]),
				lineCount:  end - i,
			})
		}
		return out
	}

	for i, line := range lines {
		m := braceFuncRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name, params := m[1], m[2]
		if name == "" {
			name, params = m[3], m[4]
		}
		if name == "" || name == "if" || name == "for" || name == "while" || name == "switch" {
			continue
		}
		depth := 0
		end := len(lines)
		for j := i; j < len(lines); j++ {
			depth += strings.Count(lines[j], "{") - strings.Count(lines[j], "}")
			if j > i && depth <= 0 {
				end = j + 1
				break
			}
		}
		out = append(out, functionInfo{
			name:       name,
			paramCount: countParams(params),
			lineCount:  end - i,
		})
	}
	return out
}

func countParams(params string) int {
	params = strings.TrimSpace(params)
	if params == "" {
		return 0
	}
	count := 0
	for _, p := range strings.Split(params, ",") {
		p = strings.TrimSpace(p)
		if p == "" || p == "self" {
			continue
		}
		count++
	}
	return count
}

func qualityScore(complexity int, smells, security, performance []string) int {
	score := 100
	if complexity > 10 {
		score -= (complexity - 10) * 2
	}
	score -= len(smells) * 5
	score -= len(security) * 10
	score -= len(performance) * 3
	if score < 0 {
		score = 0
	}
	return score
}

func qualityRating(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 60:
		return "Fair"
	case score >= 40:
		return "Poor"
	default:
		return "Critical"
	}
}

func qualitySummary(rating string, complexity int, smells, security, performance []string) string {
	var issues []string
	if complexity > 10 {
		issues = append(issues, fmt.Sprintf("high complexity (%d)", complexity))
	}
	if len(smells) > 0 {
		issues = append(issues, fmt.Sprintf("%d code smells", len(smells)))
	}
	if len(security) > 0 {
		issues = append(issues, fmt.Sprintf("%d security issues", len(security)))
	}
	if len(performance) > 0 {
		issues = append(issues, fmt.Sprintf("%d performance issues", len(performance)))
	}

	if len(issues) == 0 {
		return fmt.Sprintf("Code quality is %s with no major issues", strings.ToLower(rating))
	}
	return fmt.Sprintf("Code quality is %s with %s", strings.ToLower(rating), strings.Join(issues, ", "))
}

func buildInsights(complexity, nesting int, maintainability float64, smells, security, performance []string) []string {
	var insights []string

	if complexity > 10 {
		insights = append(insights, fmt.Sprintf("High cyclomatic complexity (%d). Consider refactoring into smaller functions.", complexity))
	}
	if nesting > 4 {
		insights = append(insights, fmt.Sprintf("Deep nesting (depth %d). Code may be difficult to follow.", nesting))
	}
	if maintainability < 60 {
		insights = append(insights, fmt.Sprintf("Low maintainability index (%.1f). Code may be hard to maintain.", maintainability))
	}
	if len(security) > 0 {
		insights = append(insights, fmt.Sprintf("%d security issues found. Review and address immediately.", len(security)))
	}
	if len(performance) > 0 {
		insights = append(insights, fmt.Sprintf("%d performance issues detected.", len(performance)))
	}
	if len(smells) > 0 {
		insights = append(insights, fmt.Sprintf("%d code smells worth cleaning up.", len(smells)))
	}

	if len(insights) == 0 {
		insights = append(insights, "Code looks good. No major issues detected.")
	}
	return insights
}
