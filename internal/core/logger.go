package core

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a file-backed logger. Logs never go to the terminal so they
// cannot interfere with the line editor that invoked us.
func NewLogger(level string) (*zap.Logger, error) {
	logFile, err := LogFile()
	if err != nil {
		return nil, err
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.WarnLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.OutputPaths = []string{logFile}
	config.ErrorOutputPaths = []string{logFile}

	return config.Build()
}
