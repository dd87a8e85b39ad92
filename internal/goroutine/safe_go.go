package goroutine

import (
	"context"
	"runtime/debug"
)

// Logger интерфейс для логирования ошибок. *logrus.Logger и *logrus.Entry ему удовлетворяют.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// SafeGo запускает горутину с обработкой panic.
func SafeGo(log Logger, fn func()) {
	go func() {
		defer recoverTo(log, "")
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic.
func SafeGoWithContext(ctx context.Context, log Logger, fn func(context.Context)) {
	go func() {
		defer recoverTo(log, " (with context)")
		fn(ctx)
	}()
}

func recoverTo(log Logger, suffix string) {
	if r := recover(); r != nil && log != nil {
		log.Errorf("Panic in goroutine%s: %v\nStack trace:\n%s", suffix, r, debug.Stack())
	}
}
