// Package executor provides the execution contexts the fetch pipeline hops
// between. Every implementation hands work off to another goroutine; none of
// them run work on the caller's stack.
package executor

import (
	"log/slog"
	"runtime/debug"
)

type options struct {
	logger *slog.Logger
}

// Option configures an executor.
type Option func(*options)

// WithLogger sets the logger used to report panics and dropped work.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// invoke runs work and reports a panic instead of letting it take down the
// worker goroutine.
func invoke(logger *slog.Logger, name string, work func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("executor work panicked",
				slog.String("executor", name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	work()
}
