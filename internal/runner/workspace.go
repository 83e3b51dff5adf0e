package runner

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is an isolated, disposable directory holding exactly one
// request's source file and, for compiled languages, its build artifact.
//
// A workspace is created immediately before dispatch and must be destroyed
// immediately after the result is obtained, success or failure. It never
// outlives a single request, and concurrent requests never share one;
// os.MkdirTemp guarantees collision-free naming.
type Workspace struct {
	Dir  string
	File string
}

// NewWorkspace allocates a fresh directory and writes code (UTF-8) into it
// under filename. An empty filename defaults to "main" plus the language's
// canonical source extension. Callers must Close the workspace on every
// exit path.
func NewWorkspace(code, filename, language string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "codefix-run-")
	if err != nil {
		return nil, fmt.Errorf("runner: creating workspace: %w", err)
	}

	name := filename
	if name == "" {
		name = "main" + Extension(language)
	}
	// Base strips any path components a caller might smuggle in, keeping
	// the source inside the workspace.
	path := filepath.Join(dir, filepath.Base(name))

	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("runner: writing source file: %w", err)
	}

	return &Workspace{Dir: dir, File: path}, nil
}

// Close removes the workspace directory and everything in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.Dir)
}
