package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger tees JSON (console in debug) logs to stdout and a rotated <app name>.log under LogPath.
func InitLogger(app AppConfig) (*zap.Logger, error) {
	if app.LogPath != "" {
		if err := os.MkdirAll(app.LogPath, 0755); err != nil {
			return nil, fmt.Errorf("create log dir %s: %w", app.LogPath, err)
		}
	}

	name := app.Name
	if name == "" {
		name = "coffee-shop-api"
	}

	level := zap.InfoLevel
	if app.Debug {
		level = zap.DebugLevel
	}

	encoder := newLogEncoder(app.Debug)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, rotatingFile(filepath.Join(app.LogPath, name+".log")), level),
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(zap.String("app", name)),
	), nil
}

func newLogEncoder(debug bool) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	if debug {
		cfg = zap.NewDevelopmentEncoderConfig()
	}
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.CallerKey = "caller"
	cfg.EncodeCaller = zapcore.ShortCallerEncoder

	if debug {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func rotatingFile(filename string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10, // MB
		MaxBackups: 7,
		MaxAge:     28, // days
		Compress:   true,
	})
}
