package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Development switches to the console encoder with caller info.
	Development bool
	// Output defaults to stderr.
	Output []string
}

// New builds the process logger.
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	output := opts.Output
	if len(output) == 0 {
		output = []string{"stderr"}
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: opts.Development,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      output,
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	if opts.Development {
		config.Sampling = nil
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		config.DisableCaller = false
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return logger, nil
}

func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zap.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zap.InfoLevel, fmt.Errorf("logging: %w", err)
	}
	if level > zap.ErrorLevel {
		return zap.InfoLevel, fmt.Errorf("logging: level %q not allowed", s)
	}
	return level, nil
}
