package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-enry/go-enry/v2"
)

// strategyKind tags the two execution variants. Compile+run languages must
// finish a successful compile phase strictly before the run phase starts;
// interpreted languages have no compile phase at all.
type strategyKind int

const (
	interpreted strategyKind = iota
	compileAndRun
)

// stepBuilder builds the argv for one phase. tool is the resolved
// toolchain (or, for languages that launch their artifact directly, the
// artifact path), src the source file, dir the workspace, exe the
// platform-adjusted artifact path.
type stepBuilder func(tool, src, dir, exe string) []string

// strategy is the tagged variant describing how one language family runs.
// Preference orders are fixed policy, tried in sequence.
type strategy struct {
	kind strategyKind

	// interpreted
	interpreters []string // e.g. python before python3
	linters      []string // lint-only fallback when no interpreter exists
	missing      string   // stderr when nothing is available

	// compileAndRun
	compilers   []string
	runTools    []string // run-phase toolchains; empty means "launch the artifact"
	compileArgs stepBuilder
	runArgs     stepBuilder
	missingRun  string // stderr when compile succeeded but the run toolchain is gone
}

func compileToArtifact(cc, src, dir, exe string) []string {
	return []string{cc, src, "-o", exe}
}

func launchArtifact(_, _, _, exe string) []string {
	return []string{exe}
}

// strategies is the dispatch table, keyed by canonical language name.
// Synonyms resolve through the aliases map first.
var strategies = map[string]strategy{
	"python": {
		kind:         interpreted,
		interpreters: []string{"python", "python3"},
		linters:      []string{"pylint"},
		missing:      "no python interpreter or pylint found on the search path",
	},
	"javascript": {
		kind:         interpreted,
		interpreters: []string{"node"},
		linters:      []string{"eslint"},
		missing:      "no node or eslint found on the search path",
	},
	"java": {
		kind:      compileAndRun,
		compilers: []string{"javac"},
		runTools:  []string{"java"},
		compileArgs: func(cc, src, _, _ string) []string {
			return []string{cc, src}
		},
		runArgs: func(rt, src, dir, _ string) []string {
			// The class name is the file's base name without extension;
			// the classpath is the workspace itself.
			class := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
			return []string{rt, "-cp", dir, class}
		},
		missing:    "no javac found on the search path; install a JDK",
		missingRun: "compiled, but the java runtime was not found on the search path",
	},
	"c": {
		kind:        compileAndRun,
		compilers:   []string{"gcc", "clang"},
		compileArgs: compileToArtifact,
		runArgs:     launchArtifact,
		missing:     "no C compiler found on the search path; install gcc or clang",
	},
	"cpp": {
		kind:      compileAndRun,
		compilers: []string{"g++", "clang++"},
		compileArgs: func(cc, src, dir, exe string) []string {
			args := compileToArtifact(cc, src, dir, exe)
			switch filepath.Base(cc) {
			case "g++", "clang++":
				args = append(args, "-std=c++17")
			}
			return args
		},
		runArgs: launchArtifact,
		missing: "no C++ compiler found on the search path; install g++ or clang++",
	},
}

// aliases maps language synonyms onto canonical table keys.
var aliases = map[string]string{
	"py":   "python",
	"js":   "javascript",
	"node": "javascript",
	"c++":  "cpp",
}

// extensions maps canonical language names to source file extensions.
var extensions = map[string]string{
	"python":     ".py",
	"javascript": ".js",
	"java":       ".java",
	"c":          ".c",
	"cpp":        ".cpp",
}

// Normalize lower-cases a language identifier and resolves synonyms onto
// the canonical name. Unknown identifiers pass through unchanged (apart
// from casing) so error messages can name them.
func Normalize(language string) string {
	key := strings.ToLower(strings.TrimSpace(language))
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// Extension returns the canonical source extension for a language, or
// ".txt" when the language is not recognized.
func Extension(language string) string {
	if ext, ok := extensions[Normalize(language)]; ok {
		return ext
	}
	return ".txt"
}

// Supported reports whether a language identifier (or synonym) maps to an
// execution strategy.
func Supported(language string) bool {
	_, ok := strategies[Normalize(language)]
	return ok
}

// Runner is the orchestrator interface consumed by the service layer.
type Runner interface {
	Run(ctx context.Context, srcPath, language string, timeout time.Duration) Result
}

// Orchestrator dispatches executions across the per-language strategies.
// It holds no per-request state; concurrent requests need no locking.
type Orchestrator struct {
	logger *slog.Logger
}

var _ Runner = (*Orchestrator)(nil)

// New creates an Orchestrator.
func New(logger *slog.Logger) *Orchestrator {
	return &Orchestrator{logger: logger}
}

// Run executes the source file at srcPath under the named language's
// policy and returns a unified Result. It never returns an error: every
// failure mode is reported through the Result's return code (see
// CodeTimeout and CodeEnvFailure).
func (o *Orchestrator) Run(ctx context.Context, srcPath, language string, timeout time.Duration) Result {
	key := Normalize(language)
	strat, ok := strategies[key]
	if !ok {
		return o.fallbackByExtension(ctx, srcPath, language, timeout)
	}

	dir := filepath.Dir(srcPath)
	switch strat.kind {
	case compileAndRun:
		return o.compileThenRun(ctx, strat, srcPath, dir, timeout)
	default:
		return o.interpret(ctx, strat, srcPath, dir, timeout)
	}
}

// interpret runs the source directly under the first available
// interpreter, falling back to a lint-only pass when none is installed.
func (o *Orchestrator) interpret(ctx context.Context, strat strategy, src, dir string, timeout time.Duration) Result {
	if tool, ok := FirstTool(strat.interpreters...); ok {
		return Invoke(ctx, []string{tool, src}, dir, timeout)
	}

	if lint, ok := FirstTool(strat.linters...); ok {
		o.logger.Warn("no interpreter available, falling back to lint-only",
			slog.String("linter", lint),
		)
		return Invoke(ctx, []string{lint, src}, dir, timeout)
	}

	return Result{
		Stderr:     "orchestrator: " + strat.missing,
		ReturnCode: CodeEnvFailure,
	}
}

// compileThenRun drives the two-phase state machine: the compile step must
// finish with code 0 strictly before the run step starts, and a failed
// compile is surfaced verbatim with no run attempt.
func (o *Orchestrator) compileThenRun(ctx context.Context, strat strategy, src, dir string, timeout time.Duration) Result {
	compiler, ok := FirstTool(strat.compilers...)
	if !ok {
		return Result{
			Stderr:     "orchestrator: " + strat.missing,
			ReturnCode: CodeEnvFailure,
		}
	}

	exe := ExecutablePath(dir, artifactName)

	compileRes := Invoke(ctx, strat.compileArgs(compiler, src, dir, exe), dir, timeout)
	if compileRes.ReturnCode != 0 {
		return compileRes
	}

	runTool := exe
	if len(strat.runTools) > 0 {
		tool, ok := FirstTool(strat.runTools...)
		if !ok {
			// Compile output is preserved so the caller still sees what
			// succeeded before the environment fell over.
			return Result{
				Stdout:     compileRes.Stdout,
				Stderr:     "orchestrator: " + strat.missingRun,
				ReturnCode: CodeEnvFailure,
				Command:    compileRes.Command,
			}
		}
		runTool = tool
	}

	runRes := Invoke(ctx, strat.runArgs(runTool, src, dir, exe), dir, timeout)
	// Report the full pipeline even though only one result is returned.
	runRes.Command = compileRes.Command + " ; " + runRes.Command
	return runRes
}

// fallbackByExtension handles unrecognized language names. Deliberately
// narrow: only a file that is itself Python retries the interpreted-python
// policy; everything else is a deterministic "no runner available" without
// any process being spawned.
func (o *Orchestrator) fallbackByExtension(ctx context.Context, src, language string, timeout time.Duration) Result {
	if lang, _ := enry.GetLanguageByExtension(src); lang == "Python" {
		if tool, ok := FirstTool("python", "python3"); ok {
			o.logger.Info("unknown language, running by file extension",
				slog.String("language", language),
				slog.String("file", filepath.Base(src)),
			)
			return Invoke(ctx, []string{tool, src}, filepath.Dir(src), timeout)
		}
	}

	return Result{
		Stderr:     fmt.Sprintf("orchestrator: no runner available for language %q", language),
		ReturnCode: CodeEnvFailure,
	}
}
