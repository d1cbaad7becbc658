package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("team-gamelog/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// startSpan opens a child span for handler operations only. Middleware and response
// helpers pass through without one, as does any request the router left untraced.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

// startTeamSpan opens a handler span for a /v1/teams/{abbr} route and tags it
// with the requested team.
func startTeamSpan(r *http.Request, name string) (context.Context, trace.Span, string) {
	abbr := strings.ToUpper(strings.TrimSpace(r.PathValue("abbr")))
	ctx, span := startSpan(r.Context(), name)
	span.SetAttributes(
		attribute.String("team.abbreviation", abbr),
		attribute.String("http.route", r.Pattern),
	)
	return ctx, span, abbr
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}
