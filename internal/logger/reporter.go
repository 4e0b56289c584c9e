package logger

import "go.uber.org/zap"

// Reporter logs diagnostics for rows dropped during normalization.
type Reporter struct {
	l *zap.Logger
}

// NewReporter creates a Reporter writing to l. A nil l discards reports.
func NewReporter(l *zap.Logger) *Reporter {
	if l == nil {
		l = zap.NewNop()
	}
	return &Reporter{l: l}
}

// Report logs err at warn level.
func (r *Reporter) Report(err error) {
	r.l.Warn("dropped malformed hit", zap.Error(err))
}
