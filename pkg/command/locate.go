package command

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// engineName is the extraction engine binary.
const engineName = "bakread"

func engineBinary() string {
	if runtime.GOOS == "windows" {
		return engineName + ".exe"
	}
	return engineName
}

// FindEngine locates the engine binary. explicit wins when set; otherwise
// the directory of the running executable is tried, then the working
// directory, then PATH.
func FindEngine(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("engine binary %s: %w", explicit, err)
		}
		return explicit, nil
	}
	bin := engineBinary()
	if self, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), bin)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if wd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(wd, bin)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath(bin); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("engine binary %s not found next to the executable, in the working directory, or on PATH", bin)
}
