// Package logger provides centralized logging for the parking service.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

// logFile is the file opened by the last InitLogger call.
var logFile *os.File

// defaultLogDir is used when LOG_DIR is not set.
const defaultLogDir = "./logs"

// ------------------- logger initialization -------------------

// InitLogger creates or reinitializes the logging system. It:
// - Ensures dir exists.
// - Creates a timestamped log file in dir, closing any previous one.
// - Writes logs to both the file and stdout.
// - Configures separate loggers (Info, Warn, Error, Debug) with consistent prefixes & flags.
func InitLogger(dir string) error {
	if dir == "" {
		dir = defaultLogDir
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	logFileName := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
	file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec
	if err != nil {
		return err
	}

	configure(io.MultiWriter(os.Stdout, file))
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	return nil
}

// configure points every level at w.
func configure(w io.Writer) {
	Info = log.New(w, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	Warn = log.New(w, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(w, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(w, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// SetLogLevel adjusts the Debug logger's output depending on environment.
// In production debug output is discarded entirely.
func SetLogLevel(env string) {
	if env == "production" {
		Debug.SetOutput(io.Discard)
	}
}

// init is called automatically at package load time. Loggers write to
// stdout until InitLogger adds a file.
func init() {
	configure(os.Stdout)
}
