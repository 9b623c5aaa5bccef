package units

import (
	"context"
	"fmt"
	"strings"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/logging"
)

// ExplanationUnit produces a structured natural language description of code.
// A "detail_level" metadata entry of low, medium, or high controls how far
// the step-by-step walkthrough goes.
type ExplanationUnit struct{}

func NewExplanationUnit() *ExplanationUnit { return &ExplanationUnit{} }

func (u *ExplanationUnit) Capability() core.Capability { return core.CapabilityExplanation }

func (u *ExplanationUnit) Process(ctx context.Context, req core.Request) (core.Result, error) {
	if err := req.Validate(); err != nil {
		return core.Failure("no code provided for explanation"), nil
	}

	detail := core.DetailLevel(req.MetaString("detail_level"))
	if detail == "" {
		detail = core.DetailMedium
	}

	code := req.Payload
	lang := req.Language

	functions := extractFunctions(code, lang)
	structure := explainStructure(code, lang, functions)
	overview := explainOverview(code, lang, functions)
	concepts := identifyKeyConcepts(code, lang)

	explanation := map[string]interface{}{
		"overview":     overview,
		"structure":    structure,
		"functions":    explainFunctions(functions),
		"logic_flow":   explainLogicFlow(code, lang),
		"key_concepts": concepts,
		"step_by_step": stepByStep(code, lang, detail),
	}

	summary := overview
	if len(concepts) > 0 {
		summary += " Key concepts: " + strings.Join(concepts, ", ")
	}

	logging.GetLogger().Debug(ctx, "explanation complete: %d functions, detail=%s", len(functions), detail)

	return core.SuccessResult(map[string]interface{}{
		"explanation": explanation,
		"summary":     summary,
		"language":    lang.String(),
	}), nil
}

func explainOverview(code string, lang core.Language, functions []functionInfo) string {
	loc := linesOfCode(code, lang)
	classes := len(pyClassRe.FindAllString(code, -1))
	if lang != core.LanguagePython {
		classes = strings.Count(code, "class ")
	}

	parts := []string{fmt.Sprintf("This is a %s program with %d lines of code", titleCase(lang.String()), loc)}
	if classes > 0 {
		parts = append(parts, fmt.Sprintf("It defines %d %s", classes, pluralize("class", "classes", classes)))
	}
	if len(functions) > 0 {
		parts = append(parts, fmt.Sprintf("It contains %d %s", len(functions), pluralize("function", "functions", len(functions))))
	}
	if purpose := inferPurpose(code); purpose != "" {
		parts = append(parts, "Purpose: "+purpose)
	}
	return strings.Join(parts, ". ") + "."
}

func pluralize(singular, plural string, n int) string {
	if n == 1 {
		return singular
	}
	return plural
}

func inferPurpose(code string) string {
	lower := strings.ToLower(code)
	switch {
	case containsAny(lower, "request", "api", "http", "url"):
		return "Makes HTTP requests or works with web APIs"
	case containsAny(lower, "dataframe", "pd.", "csv", "read_"):
		return "Processes and analyzes data"
	case containsAny(lower, "sort", "search", "tree", "graph"):
		return "Implements algorithms or data structures"
	case containsAny(lower, "def test_", "assert", "unittest"):
		return "Contains test cases"
	case containsAny(lower, "class ", "__init__"):
		return "Implements classes and objects"
	default:
		return ""
	}
}

func explainStructure(code string, lang core.Language, functions []functionInfo) map[string]interface{} {
	var imports, funcNames, classes []string

	for _, line := range codeLines(code) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") || strings.HasPrefix(trimmed, "#include") {
			imports = append(imports, trimmed)
		}
	}
	for _, fn := range functions {
		funcNames = append(funcNames, fn.name)
	}
	for _, m := range pyClassRe.FindAllStringSubmatch(code, -1) {
		classes = append(classes, m[1])
	}
	if lang != core.LanguagePython {
		for _, m := range classNameRe.FindAllStringSubmatch(code, -1) {
			classes = append(classes, m[1])
		}
	}

	return map[string]interface{}{
		"imports":   imports,
		"functions": funcNames,
		"classes":   dedupe(classes),
	}
}

func explainFunctions(functions []functionInfo) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(functions))
	for _, fn := range functions {
		out = append(out, map[string]interface{}{
			"name":        fn.name,
			"parameters":  fn.paramCount,
			"explanation": explainFunctionPurpose(fn.name),
		})
	}
	return out
}

// explainFunctionPurpose infers intent from common naming conventions.
func explainFunctionPurpose(name string) string {
	suffix := func(prefix string) string {
		return strings.ReplaceAll(strings.TrimPrefix(name, prefix), "_", " ")
	}
	switch {
	case strings.HasPrefix(name, "get_"):
		return "Retrieves or returns " + suffix("get_")
	case strings.HasPrefix(name, "set_"):
		return "Sets or updates " + suffix("set_")
	case strings.HasPrefix(name, "is_"):
		return "Checks if " + suffix("is_")
	case strings.HasPrefix(name, "has_"):
		return "Checks if " + suffix("has_")
	case strings.HasPrefix(name, "calculate_"):
		return "Calculates " + suffix("calculate_")
	case strings.HasPrefix(name, "process_"):
		return "Processes " + suffix("process_")
	case name == "__init__":
		return "Initializes a new instance of the class"
	default:
		return "Function: " + strings.ReplaceAll(name, "_", " ")
	}
}

func explainLogicFlow(code string, lang core.Language) []string {
	var flow []string

	if strings.Contains(code, `if __name__ ==`) {
		flow = append(flow, "Program has a main execution block (if __name__ == '__main__')")
	}
	if loops := strings.Count(code, "for ") + strings.Count(code, "while "); loops > 0 {
		flow = append(flow, fmt.Sprintf("Contains %d loop(s) for iteration", loops))
	}
	if ifs := strings.Count(code, "if "); ifs > 0 {
		flow = append(flow, fmt.Sprintf("Uses %d conditional statement(s) for decision making", ifs))
	}
	tries := strings.Count(code, "try:")
	if lang != core.LanguagePython {
		tries = strings.Count(code, "try {") + strings.Count(code, "try{")
	}
	if tries > 0 {
		flow = append(flow, fmt.Sprintf("Includes %d try block(s) for error handling", tries))
	}

	return flow
}

func identifyKeyConcepts(code string, lang core.Language) []string {
	var concepts []string

	if strings.Contains(code, "class ") {
		concepts = append(concepts, "Object-Oriented Programming (Classes)")
	}
	if lang == core.LanguagePython {
		if strings.Contains(code, " for ") && strings.Contains(code, "[") {
			concepts = append(concepts, "List Comprehensions")
		}
		if strings.Contains(code, "lambda ") {
			concepts = append(concepts, "Lambda Functions")
		}
		if strings.Contains(code, "yield") {
			concepts = append(concepts, "Generators")
		}
		if strings.Contains(code, "@") {
			concepts = append(concepts, "Decorators")
		}
		if containsAny(code, "async def", "await ") {
			concepts = append(concepts, "Asynchronous Programming")
		}
		if strings.Contains(code, "with ") {
			concepts = append(concepts, "Context Managers (with statement)")
		}
	} else {
		if containsAny(code, "interface ", "implements ") {
			concepts = append(concepts, "Interfaces")
		}
		if containsAny(code, "extends ") {
			concepts = append(concepts, "Inheritance")
		}
		if containsAny(code, "->", "=>") {
			concepts = append(concepts, "Lambda Expressions")
		}
	}

	return dedupe(concepts)
}

func stepByStep(code string, lang core.Language, detail core.DetailLevel) []string {
	lines := codeLines(code)
	if len(lines) > 20 && detail != core.DetailHigh {
		return []string{"Code is too long for a step-by-step explanation. Use detail_level=high for longer code."}
	}
	if detail == core.DetailLow {
		return nil
	}

	var steps []string
	step := 1
	add := func(s string) {
		steps = append(steps, fmt.Sprintf("Step %d: %s", step, s))
		step++
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import "):
			add("Import " + strings.Fields(trimmed)[1] + " module")
		case lang == core.LanguagePython && strings.HasPrefix(trimmed, "def "):
			if m := pyFuncRe.FindStringSubmatch(line); m != nil {
				add(fmt.Sprintf("Define function %q", m[1]))
			}
		case strings.HasPrefix(trimmed, "class "):
			if m := pyClassRe.FindStringSubmatch(line); m != nil {
				add(fmt.Sprintf("Define class %q", m[1]))
			} else if m := classNameRe.FindStringSubmatch(trimmed); m != nil {
				add(fmt.Sprintf("Define class %q", m[1]))
			}
		}
	}

	return steps
}
