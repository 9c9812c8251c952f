// Package logger routes the standard logger into a per-user debug file
// so TUI rendering is never interleaved with log output.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

const (
	appDirName  = ".touch-race"
	logFileName = "debug.log"
	maxLogSize  = 10 * 1024 * 1024
)

var (
	logFile *os.File
	logPath string
)

// Init opens ~/.touch-race/debug.log and points the standard logger at it.
func Init() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	logDir := filepath.Join(homeDir, appDirName)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath = filepath.Join(logDir, logFileName)
	logFile, err = openOrRotate(logDir)
	if err != nil {
		return err
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	Info("logger initialized, log file: %s", logPath)
	return nil
}

// openOrRotate opens the log file, moving it aside first when it has
// grown past maxLogSize.
func openOrRotate(logDir string) (*os.File, error) {
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		backupPath := filepath.Join(logDir, fmt.Sprintf("%s.%d", logFileName, time.Now().Unix()))
		_ = os.Rename(logPath, backupPath)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Close closes the debug log file
func Close() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

// Info logs an info message
func Info(format string, args ...any) {
	log.Printf("[INFO] "+format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...any) {
	log.Printf("[WARN] "+format, args...)
}

// Error logs an error message
func Error(format string, args ...any) {
	log.Printf("[ERROR] "+format, args...)
}

// Panic logs a recovered panic with its stack trace
func Panic(r any) {
	log.Printf("[PANIC] %v\n%s", r, debug.Stack())
}

// Path returns the current log file path
func Path() string {
	return logPath
}
