package service

import (
	"github.com/robfig/cron/v3"

	"golang-market-intel/pkg/logger"
)

// cronLogger routes cron's own messages, including recovered panics, into zap.
type cronLogger struct {
	logger *logger.Logger
}

func newCronLogger(log *logger.Logger) cron.Logger {
	return cronLogger{logger: log}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Infow("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
