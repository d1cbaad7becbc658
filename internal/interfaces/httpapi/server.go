package httpapi

import (
	"net/http"

	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	observer RequestObserver,
	metricsHandler http.Handler,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	register := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, RequestMetrics(observer, pattern, h))
	}

	register("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	register("GET /v1/teams", handler.ListTeams)
	register("GET /v1/teams/{abbr}/games", handler.ListTeamGames)
	register("GET /v1/teams/{abbr}/summary", handler.GetTeamSummary)
	register("GET /v1/teams/{abbr}/rolling", handler.GetTeamRolling)
	register("POST /v1/teams/{abbr}/reports", handler.RunTeamReport)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
