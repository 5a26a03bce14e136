package logging

import (
	"os"
	"path/filepath"
)

// logDirName is the directory under the user home holding rxmcp state.
const logDirName = ".rxmcp"

// DefaultLogPath returns the default log file path (~/.rxmcp/logs/rxmcp.log).
// Falls back to the working directory if the home directory is unknown.
func DefaultLogPath() string {
	return filepath.Join(LogDir(), "rxmcp.log")
}

// LogDir returns the log directory path.
func LogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(logDirName, "logs")
	}
	return filepath.Join(home, logDirName, "logs")
}
