package diag

import "go.uber.org/zap"

// ZapSink adapts a *zap.Logger to the Sink interface; this is the Sink
// cmd/codanna wires by default, following bufbuild's zap.Logger-field
// adapter pattern (private/buf/bufcheckclient).
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink wraps logger. A nil logger is replaced with zap.NewNop().
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Emit(d Diagnostic) {
	fields := []zap.Field{
		zap.String("kind", string(d.Kind)),
		zap.String("language", d.Language),
	}
	if d.File != "" {
		fields = append(fields, zap.String("file", d.File))
	}

	switch d.Kind {
	case KindParserSetup, KindAuditLanguageSetup, KindAuditParserCreation, KindAuditFileRead, KindAuditParseFailure:
		s.logger.Error(d.Message, fields...)
	case KindParseFailure:
		s.logger.Warn(d.Message, fields...)
	default:
		s.logger.Debug(d.Message, fields...)
	}
}
