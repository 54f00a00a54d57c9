package mediapager

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

const tracerName = "github.com/Alp4ka/mediapager"

var _tracer = otel.Tracer(tracerName)

// componentLogger derives the logger a pager part writes with.
func componentLogger(logger zerolog.Logger, component, source string) zerolog.Logger {
	ctx := logger.With().Str("component", component)
	if source != "" {
		ctx = ctx.Str("source", source)
	}

	return ctx.Logger()
}

// sourceLabel is the metrics label of a pager without a preference identifier.
func sourceLabel(source string) string {
	if source == "" {
		return "unnamed"
	}

	return source
}
