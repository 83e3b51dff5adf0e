package runner

import (
	"path/filepath"
	"runtime"
)

// artifactName is the fixed base name for compiled-language outputs inside
// a workspace.
const artifactName = "a_out_exec"

// ExecutablePath returns the platform-correct path for a compiled artifact
// named base inside dir. Windows needs the .exe suffix for a binary to be
// directly launchable; everywhere else the bare name is used. The compile
// step writes to this exact path and the run step launches it.
func ExecutablePath(dir, base string) string {
	if runtime.GOOS == "windows" {
		base += ".exe"
	}
	return filepath.Join(dir, base)
}
