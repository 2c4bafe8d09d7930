// Package open shows finished downloads in the system file manager.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/segrab-cli/segrab/constant"
)

// openers maps an OS to the command that opens a directory in its file manager.
var openers = map[string]string{
	constant.Windows: "explorer",
	constant.Darwin:  "open",
	constant.Linux:   "xdg-open",
	constant.Android: "termux-open",
}

// Dir returns path itself for directories and the parent directory otherwise.
func Dir(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

// Reveal opens the directory containing path without waiting for the file manager to exit.
func Reveal(path string) error {
	name, ok := openers[runtime.GOOS]
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	cmd := exec.Command(name, Dir(path))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("reveal %s: %w", path, err)
	}

	return cmd.Process.Release()
}
