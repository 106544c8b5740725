package converter

import "go.uber.org/zap"

// Diagnostics receives non-fatal compile problems
type Diagnostics interface {
	// Critical reports an entity that could not be compiled at all.
	Critical(msg string, fields ...zap.Field)
	// Warn reports a dropped or degraded declaration.
	Warn(msg string, fields ...zap.Field)
}

// ZapDiagnostics writes diagnostics to a zap logger
type ZapDiagnostics struct {
	logger *zap.Logger
}

// NewZapDiagnostics creates diagnostics backed by logger
func NewZapDiagnostics(logger *zap.Logger) *ZapDiagnostics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapDiagnostics{logger: logger}
}

// Critical implements Diagnostics
func (d *ZapDiagnostics) Critical(msg string, fields ...zap.Field) {
	d.logger.Error(msg, append(fields[:len(fields):len(fields)], zap.Bool("critical", true))...)
}

// Warn implements Diagnostics
func (d *ZapDiagnostics) Warn(msg string, fields ...zap.Field) {
	d.logger.Warn(msg, fields...)
}
