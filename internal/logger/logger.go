package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger sets up the process logger: console output plus a daily
// rotated JSON log file under workspace/logs.
func InitLogger(workspace string, debug bool) (*zap.Logger, error) {
	logDir := filepath.Join(workspace, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	writer, err := rotatelogs.New(
		filepath.Join(logDir, "kinokod.%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(logDir, "kinokod.log")),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(14*24*time.Hour),
	)
	if err != nil {
		// Console-only fallback when the log file cannot be opened.
		fmt.Fprintf(os.Stderr, "Warning: failed to open log file: %v, using console only\n", err)
		core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)
		return zap.New(core, zap.AddCaller()), nil
	}

	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, zapcore.AddSync(writer), level),
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level),
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
