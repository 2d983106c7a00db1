package logging

import (
	"context"
	"log/slog"
	"os"
)

// Environment selects log output formatting.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Module labels a log record with the subsystem it came from.
type Module string

// ServiceInfo identifies the running service in every log record.
type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

// NewLogger builds the process-wide slog logger: human-readable text in
// dev, JSON with service attributes everywhere else.
func NewLogger(env Environment, level slog.Level, info ServiceInfo, module Module) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if env == EnvDev {
		base = slog.NewTextHandler(os.Stdout, opts)
	} else {
		base = slog.NewJSONHandler(os.Stdout, opts)
	}

	handler := &contextHandler{Handler: base}

	logger := slog.New(handler).With(
		slog.String("service", info.Name),
		slog.String("module", string(module)),
	)
	if info.Version != "" {
		logger = logger.With(slog.String("version", info.Version))
	}
	if info.Revision != "" {
		logger = logger.With(slog.String("revision", info.Revision))
	}

	return logger
}

// contextHandler enriches records with platform trace attributes when
// the context carries them.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs := gcpTraceAttrs(ctx, ""); len(attrs) > 0 {
		record.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
