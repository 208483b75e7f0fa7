// Package logging builds the process-wide zap logger and its sinks.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level string
	Dev   bool

	File           string
	FileMaxSizeMB  int
	FileMaxAgeDays int
	FileMaxBackups int
	FileCompress   bool

	LogstashAddr string
}

func levelFromString(l string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init returns the logger and a closer for the file and Logstash sinks.
// Stdout is always a sink; the rotating file and Logstash are added when
// configured.
func Init(cfg Config) (*zap.Logger, io.Closer, error) {
	lvl := zap.NewAtomicLevelAt(levelFromString(cfg.Level))
	closers := multiCloser{}

	var consoleEncoder zapcore.Encoder
	if cfg.Dev {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(productionEncoderConfig())
	}
	cores := []zapcore.Core{zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), lvl)}

	if file := strings.TrimSpace(cfg.File); file != "" {
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    positive(cfg.FileMaxSizeMB, 100),
			MaxAge:     positive(cfg.FileMaxAgeDays, 28),
			MaxBackups: positive(cfg.FileMaxBackups, 5),
			Compress:   cfg.FileCompress,
		}
		closers = append(closers, rotator)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(productionEncoderConfig()), zapcore.AddSync(rotator), lvl))
	}

	if addr := strings.TrimSpace(cfg.LogstashAddr); addr != "" {
		writer, err := NewLogstashWriter(addr)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, writer)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(productionEncoderConfig()), writer, lvl))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Dev {
		opts = append(opts, zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), opts...), closers, nil
}

func productionEncoderConfig() zapcore.EncoderConfig {
	c := zap.NewProductionEncoderConfig()
	c.EncodeTime = zapcore.ISO8601TimeEncoder
	c.TimeKey = "@timestamp"
	return c
}

func positive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
