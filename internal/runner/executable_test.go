package runner

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutablePath(t *testing.T) {
	got := ExecutablePath(filepath.Join("tmp", "ws"), "a_out_exec")

	if runtime.GOOS == "windows" {
		assert.Equal(t, filepath.Join("tmp", "ws", "a_out_exec.exe"), got)
	} else {
		assert.Equal(t, filepath.Join("tmp", "ws", "a_out_exec"), got)
	}
}
