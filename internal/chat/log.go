package chat

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes rendered cards to a zap logger.
type LogSink struct {
	logger   *zap.Logger
	renderer Renderer
}

// NewLogSink creates a LogSink.
//
// Precondition: logger must be non-nil.
func NewLogSink(logger *zap.Logger, renderer Renderer) *LogSink {
	return &LogSink{logger: logger, renderer: renderer}
}

// Send logs msg at info level.
func (s *LogSink) Send(_ context.Context, msg Message) error {
	html, err := s.renderer.Render(msg.Card)
	if err != nil {
		return err
	}
	fields := []zap.Field{
		zap.String("speaker", msg.Speaker),
		zap.String("flavor", msg.Flavor),
		zap.String("outcome", msg.Card.OutcomeKey),
		zap.String("html", html),
	}
	if msg.Roll != nil && msg.Roll.Formula != "" {
		fields = append(fields, zap.String("roll", msg.Roll.String()))
	}
	s.logger.Info("chat message", fields...)
	return nil
}

// LogNotifier writes notices to a zap logger at the matching level.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs text.
func (n *LogNotifier) Notify(_ context.Context, level Level, text string) {
	switch level {
	case Error:
		n.logger.Error(text)
	case Warn:
		n.logger.Warn(text)
	default:
		n.logger.Info(text)
	}
}
