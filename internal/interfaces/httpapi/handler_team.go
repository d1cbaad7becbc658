package httpapi

import "net/http"

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.teamService.List(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeamGames(w http.ResponseWriter, r *http.Request) {
	ctx, span, abbr := startTeamSpan(r, "httpapi.Handler.ListTeamGames")
	defer span.End()

	limit, err := parsePositiveQuery(r.URL.Query(), "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, gamesQuery{Limit: limit}); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, log, err := h.reportService.GameLog(ctx, abbr)
	if err != nil {
		h.logger.WarnContext(ctx, "list team games failed", "team", abbr, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamesDTO{
		Team:  teamToDTO(item),
		Total: log.Len(),
		Items: gamesToDTO(log.Tail(limit)),
	})
}

func (h *Handler) GetTeamSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span, abbr := startTeamSpan(r, "httpapi.Handler.GetTeamSummary")
	defer span.End()

	item, summary, err := h.reportService.Summary(ctx, abbr)
	if err != nil {
		h.logger.WarnContext(ctx, "get team summary failed", "team", abbr, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamSummaryDTO{
		Team:    teamToDTO(item),
		Summary: summaryToDTO(summary),
	})
}

func (h *Handler) GetTeamRolling(w http.ResponseWriter, r *http.Request) {
	ctx, span, abbr := startTeamSpan(r, "httpapi.Handler.GetTeamRolling")
	defer span.End()

	window, err := parsePositiveQuery(r.URL.Query(), "window")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, rollingQuery{Window: window}); err != nil {
		writeError(ctx, w, err)
		return
	}

	points, err := h.reportService.Rolling(ctx, abbr, window)
	if err != nil {
		h.logger.WarnContext(ctx, "get team rolling average failed", "team", abbr, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rollingToDTO(points))
}

func (h *Handler) RunTeamReport(w http.ResponseWriter, r *http.Request) {
	ctx, span, abbr := startTeamSpan(r, "httpapi.Handler.RunTeamReport")
	defer span.End()

	report, err := h.reportService.Run(ctx, abbr)
	if err != nil {
		h.logger.ErrorContext(ctx, "run team report failed", "team", abbr, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, reportToDTO(report))
}
