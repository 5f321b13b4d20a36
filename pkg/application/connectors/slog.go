package connectors

import (
	"context"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Slog builds the application logger. Debug switches the handler to
// tint for readable local output; otherwise JSON for log shipping.
type Slog struct {
	Name    string
	Version string
	Debug   bool
}

func (s *Slog) Logger(_ context.Context) *slog.Logger {
	var handler slog.Handler
	if s.Debug {
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	logger := slog.New(handler).With(
		slog.String("app", s.Name),
		slog.String("version", s.Version),
	)
	slog.SetDefault(logger)

	return logger
}
