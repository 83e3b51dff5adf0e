package runner

import "os/exec"

// FindTool reports where a toolchain lives on the current search path.
//
// The lookup is performed fresh on every call, never cached: in a
// long-running server a compiler can be installed or removed between
// requests, and dispatch decisions must see the environment as it is now.
func FindTool(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

// FirstTool tries an ordered preference list of candidate names and
// returns the first one available.
func FirstTool(candidates ...string) (string, bool) {
	for _, name := range candidates {
		if path, ok := FindTool(name); ok {
			return path, true
		}
	}
	return "", false
}
