package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logDir      = "logs"
	logFileName = "cube-hunter.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging routes logrus to a rotating file when debug is set and discards
// everything otherwise. The terminal belongs to the game, so nothing goes to stdout or stderr
func setupLogging(debug bool) *os.File {
	if !debug {
		logrus.SetOutput(io.Discard)
		logrus.SetLevel(logrus.WarnLevel)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		logrus.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("cube-hunter-%s.log", time.Now().Format("20060102-150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logrus.SetOutput(io.Discard)
		return nil
	}

	logrus.SetOutput(f)
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return f
}
