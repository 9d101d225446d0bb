package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	JSON  bool
	Debug bool
	// File enables a rotated JSON log file next to stdout output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey: "step",

		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.RFC3339TimeEncoder,

		CallerKey:    "caller",
		EncodeCaller: zapcore.ShortCallerEncoder,

		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	if cfg.File == "" {
		encoding := "console"
		if cfg.JSON {
			encoding = "json"
		}

		zcfg := zap.Config{
			Encoding:         encoding,
			Level:            zap.NewAtomicLevelAt(level),
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    encoderConfig(),
		}
		logger, err := zcfg.Build()
		if err != nil {
			return nil, err
		}
		defer logger.Sync()

		return logger, nil
	}

	return zap.New(newTee(cfg, level, zapcore.AddSync(os.Stdout)), zap.AddCaller()), nil
}

func newTee(cfg Config, level zapcore.Level, console zapcore.WriteSyncer) zapcore.Core {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}

	file := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	})

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig())
	if cfg.JSON {
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig())
	}

	return zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), file, level),
		zapcore.NewCore(consoleEncoder, console, level),
	)
}
