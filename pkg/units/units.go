// Package units ships the built-in processing units for the well-known
// capabilities. Each unit is a self-contained heuristic collaborator: the
// orchestration core only sees its capability tag and Process contract.
package units

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/XiaoConstantine/coda-go/pkg/core"
)

// All returns one instance of every built-in unit, ready for registration.
func All() []core.ProcessingUnit {
	return []core.ProcessingUnit{
		NewAnalysisUnit(),
		NewDebugUnit(),
		NewGenerationUnit(),
		NewOptimizationUnit(),
		NewExplanationUnit(),
		NewDSAUnit(),
	}
}

var titleCaser = cases.Title(language.English)

// titleCase renders headings for human-readable reports.
func titleCase(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// codeLines splits a payload into lines with trailing whitespace removed.
func codeLines(code string) []string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return lines
}

// isComment reports whether a trimmed line is a comment for the language.
func isComment(line string, lang core.Language) bool {
	switch lang {
	case core.LanguagePython:
		return strings.HasPrefix(line, "#")
	default:
		return strings.HasPrefix(line, "//") || strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*")
	}
}

// linesOfCode counts non-blank, non-comment lines.
func linesOfCode(code string, lang core.Language) int {
	count := 0
	for _, line := range codeLines(code) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isComment(trimmed, lang) {
			continue
		}
		count++
	}
	return count
}

// indentDepth measures a line's indentation in levels of four spaces; tabs
// count as one level each.
func indentDepth(line string) int {
	spaces, tabs := 0, 0
	for _, r := range line {
		switch r {
		case ' ':
			spaces++
		case '\t':
			tabs++
		default:
			return tabs + spaces/4
		}
	}
	return tabs + spaces/4
}

// maxNesting estimates the deepest indentation level of any code line.
func maxNesting(code string) int {
	depth := 0
	for _, line := range codeLines(code) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if d := indentDepth(line); d > depth {
			depth = d
		}
	}
	return depth
}

// dedupe removes duplicate strings preserving first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
