// Package logger is the process-wide leveled logger. Levels are ordered
// debug < info < warn < error; messages below the configured level are
// dropped.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

type level int32

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var (
	current atomic.Int32
	std     = log.New(os.Stderr, "", log.LstdFlags|log.LUTC)
)

func init() {
	current.Store(int32(levelInfo))
	if env := os.Getenv("MARKETLENS_LOG_LEVEL"); env != "" {
		SetLevel(env)
	}
}

// SetLevel switches the minimum emitted level. Unknown names keep the
// current level.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		current.Store(int32(levelDebug))
	case "info":
		current.Store(int32(levelInfo))
	case "warn", "warning":
		current.Store(int32(levelWarn))
	case "error":
		current.Store(int32(levelError))
	}
}

// SetOutput redirects the logger, mainly for tests.
func SetOutput(l *log.Logger) { std = l }

func logf(lv level, tag, format string, args ...any) {
	if int32(lv) < current.Load() {
		return
	}
	std.Output(3, tag+" "+fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...any) { logf(levelDebug, "DEBUG", format, args...) }
func Infof(format string, args ...any)  { logf(levelInfo, "INFO", format, args...) }
func Warnf(format string, args ...any)  { logf(levelWarn, "WARN", format, args...) }
func Errorf(format string, args ...any) { logf(levelError, "ERROR", format, args...) }
