//go:build windows

package runner

import "os/exec"

// setProcAttr is a no-op on Windows: exec.CommandContext's default Kill
// only reaches the direct child, which is the best portable behaviour
// available here.
func setProcAttr(cmd *exec.Cmd) {}
