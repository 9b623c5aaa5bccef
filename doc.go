// Package coda is an offline coding assistant built around a pool of
// specialized processing units coordinated by a single facade.
//
// A request names a capability, carries a code or text payload, and is routed
// to the unit that owns that capability. Units work from static heuristics
// over the payload text, so no network access or external model is involved.
//
// Key Components:
//
//   - Core: the shared request/result envelope, capability and language
//     identifiers, and validation shared by every unit.
//
//   - Units: the processing units behind each capability:
//     * AnalysisUnit: structure, complexity, and quality scoring with
//       code smell, security, and performance findings
//     * DebugUnit: syntax, runtime, and logic error detection with
//       prioritized fixes and an annotated report
//     * GenerationUnit: template-backed code generation from a short
//       natural language description
//     * OptimizationUnit: pattern-based performance suggestions ranked
//       by priority
//     * ExplanationUnit: structured natural language walkthroughs at a
//       configurable level of detail
//     * DSAUnit: recognizes classic algorithm problems and emits a
//       worked solution with complexity notes and test cases
//
//   - Registry and Router: capability lookup plus composite workflows that
//     expand one request into an ordered sequence of unit steps.
//
//   - Workflows: sequential and concurrent executors for composite plans,
//     with fail-fast aggregation of per-step results.
//
//   - Memory: bounded conversational history with in-process and SQLite
//     backed implementations.
//
//   - Assistant: the facade tying the pieces together with caching, request
//     metrics, and per-capability convenience methods.
//
// Example usage:
//
//	a, err := assistant.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer a.Close()
//
//	result := a.Analyze(ctx, code, core.LanguagePython)
//	if result.Success {
//		fmt.Println(result.Data["insights"])
//	}
//
//	review := a.ComprehensiveReview(ctx, code, core.LanguagePython)
//
// For more details and examples, see the package documentation under pkg/.
package coda
