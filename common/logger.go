package common

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type LogLevel int32

const (
	DEBUG_INFO_DETAIL LogLevel = 1
	DEBUG_INFO        LogLevel = 2
	SEARCH_TASK       LogLevel = 4
	DEBUGGING         LogLevel = 8
	INFO              LogLevel = 16
	WARN              LogLevel = 32
	ERROR             LogLevel = 64
	FATAL             LogLevel = 128
)

var logger = newLogger()

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// SetLogger replaces the sink of ShPrintf. Passing nil silences output.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

func ShPrintf(logLevel LogLevel, fmtStl string, a ...interface{}) {
	if logLevel&LogLevelSetting == 0 {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(fmtStl, a...), "\n")
	switch {
	case logLevel >= ERROR:
		logger.Error(msg)
	case logLevel >= WARN:
		logger.Warn(msg)
	case logLevel >= INFO:
		logger.Info(msg)
	default:
		logger.Debug(msg)
	}
}
