package workspace

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boredapes/ctaplanner/internal/rest"
	"github.com/boredapes/ctaplanner/pkg/composer"
	"github.com/boredapes/ctaplanner/pkg/session"
	"github.com/boredapes/ctaplanner/pkg/submission"
	"github.com/boredapes/ctaplanner/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// workspace resolves the workspace of the session in the request context.
func (h *Handler) workspace(w http.ResponseWriter, r *http.Request) (*Workspace, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		rest.WriteError(w, http.StatusUnauthorized, session.ErrNoSession.Error(), "")
		return nil, false
	}
	owner, err := user.CurrentEmail(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, err.Error(), "")
		return nil, false
	}
	ws, err := h.registry.For(s.Token, owner)
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, err.Error(), "")
		return nil, false
	}
	return ws, true
}

// GetForm godoc
// @Summary Current event form
// @Description Get the event form state, including the time and category carried over from the last entry
// @Tags Schedule
// @Produce json
// @Success 200 {object} composer.Form
// @Failure 401 {object} rest.ErrorResponse "No active session"
// @Router /api/schedule/form [get]
// @Security Bearer
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	rest.WriteJSON(w, http.StatusOK, ws.Form())
}

// AddEvent godoc
// @Summary Add an event to the schedule
// @Description Validate the event form and add the resulting event to the pending schedule
// @Tags Schedule
// @Accept json
// @Produce json
// @Param form body composer.Form true "Event form"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Validation failed, details carry the failure kind"
// @Failure 409 {object} rest.ErrorResponse "Submission in progress"
// @Router /api/schedule/event [post]
// @Security Bearer
func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Adding event to schedule")
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var form composer.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := ws.AddEvent(form)
	if err != nil {
		var validationErr *composer.ValidationError
		switch {
		case errors.As(err, &validationErr):
			rest.WriteError(w, http.StatusBadRequest, validationErr.Message, string(validationErr.Kind))
		case errors.Is(err, submission.ErrSubmissionInFlight):
			rest.WriteError(w, http.StatusConflict, err.Error(), "SubmissionInFlight")
		default:
			log.Errorf("failed to add event: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}
	rest.WriteJSON(w, http.StatusCreated, EventToDTO(record))
}

func (h *Handler) RemoveEvent(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	eventId := mux.Vars(r)["eventId"]
	if err := ws.RemoveEvent(eventId); err != nil {
		rest.WriteError(w, http.StatusConflict, err.Error(), "SubmissionInFlight")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSchedule godoc
// @Summary Pending schedule
// @Description Get the pending events grouped by time slot, noon first and midnight last
// @Tags Schedule
// @Produce json
// @Success 200 {object} ScheduleDTO
// @Failure 401 {object} rest.ErrorResponse "No active session"
// @Router /api/schedule [get]
// @Security Bearer
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	rest.WriteJSON(w, http.StatusOK, scheduleToDTO(ws))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	rest.WriteJSON(w, http.StatusOK, StatusDTO{Busy: ws.Busy(), Count: len(ws.Records())})
}

// Submit godoc
// @Summary Submit the schedule
// @Description Write the schedule header and then its events. The pending schedule is cleared only when both writes succeed.
// @Tags Schedule
// @Produce json
// @Success 200 {object} SubmitResultDTO
// @Failure 409 {object} rest.ErrorResponse "Empty schedule or submission in progress"
// @Failure 502 {object} rest.ErrorResponse "Store write failed, the schedule is kept for retry"
// @Router /api/schedule/submit [post]
// @Security Bearer
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log.Debug("Submitting schedule")
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	result, err := ws.Submit(r.Context())
	switch {
	case err == nil:
		rest.WriteJSON(w, http.StatusOK, SubmitResultDTO{
			ScheduleId: result.ScheduleId,
			Outcome:    string(result.Outcome),
			Events:     len(result.Envelope.Rows),
		})
	case errors.Is(err, submission.ErrEmptySchedule):
		rest.WriteError(w, http.StatusConflict, err.Error(), "EmptySchedule")
	case errors.Is(err, submission.ErrSubmissionInFlight):
		rest.WriteError(w, http.StatusConflict, err.Error(), "SubmissionInFlight")
	case errors.Is(err, submission.ErrScheduleHeaderWriteFailed):
		rest.WriteError(w, http.StatusBadGateway, err.Error(), "ScheduleHeaderWriteFailed")
	case errors.Is(err, submission.ErrEventRowsWriteFailed):
		rest.WriteError(w, http.StatusBadGateway, err.Error(), "EventRowsWriteFailed")
	default:
		log.Errorf("failed to submit schedule: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, err.Error(), "")
	}
}

func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cta-schedule.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(ws.ExportICS())); err != nil {
		log.Errorf("failed to write calendar export: %v", err)
	}
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	out, err := ws.ExportCSV()
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cta-schedule.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(out)); err != nil {
		log.Errorf("failed to write csv export: %v", err)
	}
}
