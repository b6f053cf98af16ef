package tui

import (
	"os"
	"path/filepath"
)

// LogFilePath returns where the debug log is written: ST_LOG_FILE when set,
// otherwise ~/.st/logs/st.log
func LogFilePath() string {
	if customPath := os.Getenv("ST_LOG_FILE"); customPath != "" {
		return customPath
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "st.log"
	}
	return filepath.Join(homeDir, ".st", "logs", "st.log")
}
