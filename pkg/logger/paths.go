/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
)

const (
	appID   = "xencheck"
	logName = "check_xenserver_messages.log"
)

// PlatformLogPaths returns candidate log paths in order of priority.
func PlatformLogPaths() []string {
	paths := []string{filepath.Join("/var/log", appID, logName)}
	if state := xdgStateHome(); state != "" {
		paths = append(paths, filepath.Join(state, appID, logName))
	}
	return append(paths, filepath.Join(os.TempDir(), appID, logName))
}

func xdgStateHome() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".local", "state")
}
