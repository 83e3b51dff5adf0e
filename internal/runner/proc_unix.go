//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// setProcAttr places the child in its own process group so that a timeout
// kills the whole tree, not just the direct child.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid signals the entire group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
