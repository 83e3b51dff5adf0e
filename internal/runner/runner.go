// Package runner executes user-submitted source code with whatever
// toolchains exist on the host's search path. It decides per language
// whether a compile step is needed, runs the process(es) inside an
// isolated workspace directory, and reports a unified Result.
//
// The package never lets a subprocess failure escape as an error. Toolchain
// absence, compile failures, timeouts and launch failures all come back as
// a well-formed Result; callers distinguish them through the reserved
// return codes below.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"
)

// Reserved orchestrator return codes. These are distinct from anything the
// target program reports about itself: 0+ is the program's own exit status,
// the two values below mean the orchestrator could not (fully) run it.
const (
	// CodeTimeout is returned when the process exceeded its deadline and
	// was terminated.
	CodeTimeout = 124

	// CodeEnvFailure is returned when the environment could not execute
	// the program at all: no toolchain on the search path, or an OS-level
	// launch failure such as a missing or non-executable file.
	CodeEnvFailure = 125
)

// Result is the unified outcome of an orchestrated execution.
type Result struct {
	Stdout     string
	Stderr     string
	ReturnCode int

	// Command is a shell-quoted, human-readable reconstruction of the
	// argument list actually launched. For compile+run languages it holds
	// both phases joined by " ; ". Diagnostics only, never re-executed.
	Command string
}

// Invoke spawns one child process from an ordered argument list, captures
// its stdout and stderr, and waits up to timeout.
//
// The command is never passed through a shell: argv[0] is resolved on the
// search path directly, so there is no quoting ambiguity and nothing to
// inject into. On timeout the child (and, where the platform allows, its
// descendants) is killed and the Result carries CodeTimeout with stdout
// discarded. OS-level launch failures yield CodeEnvFailure.
func Invoke(ctx context.Context, argv []string, dir string, timeout time.Duration) Result {
	if len(argv) == 0 {
		return Result{
			Stderr:     "orchestrator: empty command",
			ReturnCode: CodeEnvFailure,
		}
	}

	command := shellquote.Join(argv...)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Give a killed process a moment to release its pipes before Wait
	// gives up on them.
	cmd.WaitDelay = 3 * time.Second
	setProcAttr(cmd)

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		// Captured output up to the kill is deliberately dropped: a timed
		// out run reports nothing but the timeout itself.
		return Result{
			Stderr:     fmt.Sprintf("orchestrator: process exceeded timeout of %s", timeout),
			ReturnCode: CodeTimeout,
			Command:    command,
		}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The child ran and failed on its own terms. Signal deaths
			// normalize to the platform's integer convention.
			return Result{
				Stdout:     stdout.String(),
				Stderr:     stderr.String(),
				ReturnCode: exitErr.ExitCode(),
				Command:    command,
			}
		}
		// The process never produced output: executable not found,
		// permission denied, or some other pre-launch OS error.
		return Result{
			Stderr:     fmt.Sprintf("orchestrator: cannot start process: %v", err),
			ReturnCode: CodeEnvFailure,
			Command:    command,
		}
	}

	return Result{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Command: command,
	}
}

// InvokeLine accepts a single command string, tokenizes it with shell-like
// quoting rules, and invokes the result as an argument list. The program
// name is still resolved through the search path, never through a shell.
func InvokeLine(ctx context.Context, line, dir string, timeout time.Duration) Result {
	argv, err := shellquote.Split(line)
	if err != nil {
		return Result{
			Stderr:     fmt.Sprintf("orchestrator: cannot parse command: %v", err),
			ReturnCode: CodeEnvFailure,
			Command:    line,
		}
	}
	return Invoke(ctx, argv, dir, timeout)
}
