package logging

import "go.uber.org/zap"

// Leveled adapts a zap logger to the key/value logging interface used by
// HTTP client libraries such as go-retryablehttp.
type Leveled struct {
	s *zap.SugaredLogger
}

// NewLeveled wraps l. Retry chatter is logged one level lower than the
// client asks for, so routine retries stay out of production logs.
func NewLeveled(l *zap.Logger) *Leveled {
	return &Leveled{s: l.Sugar()}
}

func (l *Leveled) Error(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}

func (l *Leveled) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l *Leveled) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l *Leveled) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}
