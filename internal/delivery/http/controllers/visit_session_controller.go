package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"visitscheduler/internal/delivery/http/helpers"
	"visitscheduler/internal/delivery/http/middleware"
	"visitscheduler/internal/domain"
)

// VisitSessionResponse is one schedulable session in API responses.
type VisitSessionResponse struct {
	SessionTemplateReference string                `json:"sessionTemplateReference"`
	PrisonCode               string                `json:"prisonCode"`
	VisitRoom                string                `json:"visitRoom"`
	Date                     string                `json:"date"`
	StartTime                string                `json:"startTime"`
	EndTime                  string                `json:"endTime"`
	StartTimestamp           time.Time             `json:"startTimestamp"`
	EndTimestamp             time.Time             `json:"endTimestamp"`
	OpenCapacity             int                   `json:"openCapacity"`
	ClosedCapacity           int                   `json:"closedCapacity"`
	OpenBookedCount          int                   `json:"openBookedCount"`
	ClosedBookedCount        int                   `json:"closedBookedCount"`
	SessionConflicts         []domain.ConflictKind `json:"sessionConflicts"`
}

func toVisitSessionResponse(s *domain.VisitSession) VisitSessionResponse {
	conflicts := s.Conflicts
	if conflicts == nil {
		conflicts = []domain.ConflictKind{}
	}
	return VisitSessionResponse{
		SessionTemplateReference: s.SessionTemplateReference,
		PrisonCode:               s.PrisonCode,
		VisitRoom:                s.VisitRoom,
		Date:                     s.Date.Format(domain.DateFormat),
		StartTime:                string(s.StartTime),
		EndTime:                  string(s.EndTime),
		StartTimestamp:           s.StartTimestamp,
		EndTimestamp:             s.EndTimestamp,
		OpenCapacity:             s.Capacity.Open,
		ClosedCapacity:           s.Capacity.Closed,
		OpenBookedCount:          s.Counted.Open,
		ClosedBookedCount:        s.Counted.Closed,
		SessionConflicts:         conflicts,
	}
}

// VisitSessionsSuccessResponse is the success envelope for the session listing endpoints.
type VisitSessionsSuccessResponse struct {
	Data  []VisitSessionResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// SessionCapacitySuccessResponse is the success envelope for GET /visit-sessions/capacity.
type SessionCapacitySuccessResponse struct {
	Data  *domain.SessionCapacity `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

type VisitSessionController struct {
	Logger  *slog.Logger
	Service domain.AvailabilityService
}

func NewVisitSessionController(logger *slog.Logger, svc domain.AvailabilityService) *VisitSessionController {
	return &VisitSessionController{
		Logger:  logger,
		Service: svc,
	}
}

// queryFromRequest builds a SessionQuery from the query string and the
// authenticated caller. Date parse failures are reported to the client.
func (c *VisitSessionController) queryFromRequest(w http.ResponseWriter, r *http.Request) (domain.SessionQuery, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return domain.SessionQuery{}, false
	}
	q := domain.SessionQuery{
		PrisonCode: r.URL.Query().Get("prisonCode"),
		PrisonerID: r.URL.Query().Get("prisonerId"),
		ClientType: identity.ClientType,
		Username:   identity.Username,
	}
	var ok2 bool
	if q.FromDate, ok2 = parseDateParam(w, r, "fromDate"); !ok2 {
		return domain.SessionQuery{}, false
	}
	if q.ToDate, ok2 = parseDateParam(w, r, "toDate"); !ok2 {
		return domain.SessionQuery{}, false
	}
	return q, true
}

func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, fmt.Sprintf("%s is required", name))
		return time.Time{}, false
	}
	d, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, fmt.Sprintf("%s must be a date in the form %s", name, domain.DateFormat))
		return time.Time{}, false
	}
	return d, true
}

// GetVisitSessions godoc
// @Summary List visit sessions
// @Description Returns every schedulable visit session at the prison inside the requested window, clipped to the caller's booking notice policy. When prisonerId is given, sessions are filtered to that prisoner's eligibility and annotated with conflicts.
// @Tags visit-sessions
// @Produce json
// @Security BearerAuth
// @Param prisonCode query string true "Prison code"
// @Param fromDate query string true "Window start (YYYY-MM-DD)"
// @Param toDate query string true "Window end (YYYY-MM-DD)"
// @Param prisonerId query string false "Prisoner to filter and conflict-check against"
// @Success 200 {object} controllers.VisitSessionsSuccessResponse "data contains the sessions in order"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: prisoner_not_at_prison"
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Router /visit-sessions [get]
func (c *VisitSessionController) GetVisitSessions(w http.ResponseWriter, r *http.Request) {
	q, ok := c.queryFromRequest(w, r)
	if !ok {
		return
	}
	sessions, err := c.Service.ListSessions(r.Context(), q)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	c.writeSessions(w, sessions)
}

// GetAvailableVisitSessions godoc
// @Summary List bookable visit sessions
// @Description Returns the sessions from the listing endpoint that still have free capacity for the requested restriction and carry no conflicts for the prisoner. prisonerId is required.
// @Tags visit-sessions
// @Produce json
// @Security BearerAuth
// @Param prisonCode query string true "Prison code"
// @Param fromDate query string true "Window start (YYYY-MM-DD)"
// @Param toDate query string true "Window end (YYYY-MM-DD)"
// @Param prisonerId query string true "Prisoner booking the visit"
// @Param restriction query string false "OPEN or CLOSED (default OPEN)"
// @Success 200 {object} controllers.VisitSessionsSuccessResponse "data contains the bookable sessions in order"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: prisoner_not_at_prison"
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Router /visit-sessions/available [get]
func (c *VisitSessionController) GetAvailableVisitSessions(w http.ResponseWriter, r *http.Request) {
	q, ok := c.queryFromRequest(w, r)
	if !ok {
		return
	}
	restriction := domain.Restriction(r.URL.Query().Get("restriction"))
	if restriction == "" {
		restriction = domain.RestrictionOpen
	}
	sessions, err := c.Service.ListAvailableSessions(r.Context(), q, restriction)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	c.writeSessions(w, sessions)
}

func (c *VisitSessionController) writeSessions(w http.ResponseWriter, sessions []*domain.VisitSession) {
	out := make([]VisitSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toVisitSessionResponse(s))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// GetSessionCapacity godoc
// @Summary Get total capacity for a slot
// @Description Sums open and closed capacity over the session templates holding a session at exactly the given date and times. Templates sharing a capacity group contribute their pooled capacity once.
// @Tags visit-sessions
// @Produce json
// @Security BearerAuth
// @Param prisonCode query string true "Prison code"
// @Param sessionDate query string true "Session date (YYYY-MM-DD)"
// @Param sessionStartTime query string true "Session start (HH:MM)"
// @Param sessionEndTime query string true "Session end (HH:MM)"
// @Success 200 {object} controllers.SessionCapacitySuccessResponse "data contains the open and closed totals"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /visit-sessions/capacity [get]
func (c *VisitSessionController) GetSessionCapacity(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.IdentityFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	date, ok := parseDateParam(w, r, "sessionDate")
	if !ok {
		return
	}
	start, err := domain.ParseTimeOfDay(r.URL.Query().Get("sessionStartTime"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "sessionStartTime must be a time in the form HH:MM")
		return
	}
	end, err := domain.ParseTimeOfDay(r.URL.Query().Get("sessionEndTime"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "sessionEndTime must be a time in the form HH:MM")
		return
	}
	capacity, err := c.Service.SessionCapacity(r.Context(), r.URL.Query().Get("prisonCode"), date, start, end)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, capacity)
}
