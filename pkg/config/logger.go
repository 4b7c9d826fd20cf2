package config

import (
	"io"
	"time"

	"github.com/mpapenbr/f1-dashboard-service/log"
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// NewLogger creates the logger described by LogFormat, LogLevel and LogFilter
func NewLogger(w io.Writer) (*log.Logger, error) {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if LogFilter != "" {
		filter, err := log.WithFilter(LogFilter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, filter)
	}
	switch LogFormat {
	case "json":
		return log.New(w, parseLogLevel(LogLevel, log.InfoLevel), opts...), nil
	default:
		return log.DevLogger(w, parseLogLevel(LogLevel, log.DebugLevel), opts...), nil
	}
}

// DurationOrDefault parses value. Invalid or non-positive values yield defaultVal.
func DurationOrDefault(value string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		if value != "" {
			log.Warn("invalid duration, using default",
				log.String("value", value), log.Duration("default", defaultVal))
		}
		return defaultVal
	}
	if d <= 0 {
		return defaultVal
	}
	return d
}
