// pkg/logger/writer.go

package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
)

// EnsureLogPermissions creates the log directory (0700) and file (0600).
func EnsureLogPermissions(logFilePath string) error {
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0o700); err != nil {
		return err
	}
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	return file.Close()
}

// GetLogFileWriter opens path for appending.
func GetLogFileWriter(path string) (zapcore.WriteSyncer, error) {
	if err := EnsureLogPermissions(path); err != nil {
		return nil, fmt.Errorf("log permission error: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return zapcore.AddSync(file), nil
}

// FindWritableLogPath returns the first usable path and its open writer.
// A non-empty override is the only candidate tried.
func FindWritableLogPath(override string) (string, zapcore.WriteSyncer, error) {
	candidates := PlatformLogPaths()
	if override != "" {
		candidates = []string{override}
	}
	for _, path := range candidates {
		if w, err := GetLogFileWriter(path); err == nil {
			return path, w, nil
		}
	}
	return "", nil, fmt.Errorf("no writable log path found")
}
