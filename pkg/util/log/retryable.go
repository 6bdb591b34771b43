package log

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// RetryableLogger lets go-retryablehttp log through a go-kit logger.
type RetryableLogger struct {
	log log.Logger
}

func NewRetryableLogger(l log.Logger) *RetryableLogger {
	return &RetryableLogger{log: log.With(l, "component", "http")}
}

func (r *RetryableLogger) Error(msg string, keysAndValues ...interface{}) {
	_ = level.Error(r.log).Log(append([]interface{}{"msg", msg}, keysAndValues...)...)
}

func (r *RetryableLogger) Info(msg string, keysAndValues ...interface{}) {
	_ = level.Info(r.log).Log(append([]interface{}{"msg", msg}, keysAndValues...)...)
}

// Debug output of the client is a line per request, which is far too chatty
// for a batch of thousands of images.
func (r *RetryableLogger) Debug(msg string, keysAndValues ...interface{}) {}

func (r *RetryableLogger) Warn(msg string, keysAndValues ...interface{}) {
	_ = level.Warn(r.log).Log(append([]interface{}{"msg", msg}, keysAndValues...)...)
}
