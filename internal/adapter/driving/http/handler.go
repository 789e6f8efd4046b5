package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/adminpanel/internal/application"
	"github.com/ericfisherdev/adminpanel/internal/domain/model"
)

// NotificationSource yields the toasts raised since the last drain.
type NotificationSource interface {
	Drain() []model.Notification
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	session application.AdminStore
	toasts  NotificationSource
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(session application.AdminStore, toasts NotificationSource, logger *slog.Logger) *Handler {
	return &Handler{
		session: session,
		toasts:  toasts,
		logger:  logger,
	}
}

// RegisterAPIRoutes registers every /api/v1 route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/session", h.GetSession)

	// State-changing routes only accept same-origin JSON requests.
	mux.HandleFunc("PUT /api/v1/session/token", requireJSON(h.SetToken))
	mux.HandleFunc("DELETE /api/v1/session/token", requireJSON(h.ClearToken))
	mux.HandleFunc("POST /api/v1/doctors/refresh", requireJSON(h.RefreshDoctors))
	mux.HandleFunc("POST /api/v1/doctors/{id}/availability", requireJSON(h.ChangeAvailability))
	mux.HandleFunc("POST /api/v1/appointments/refresh", requireJSON(h.RefreshAppointments))
	mux.HandleFunc("POST /api/v1/appointments/{id}/cancel", requireJSON(h.CancelAppointment))
	mux.HandleFunc("POST /api/v1/dashboard/refresh", requireJSON(h.RefreshDashboard))
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with the standard middleware chain.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetSession reports credential presence and the cached server data.
func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(h.session.HasToken(), h.session.Snapshot()))
}

// SetToken replaces the admin credential.
func (h *Handler) SetToken(w http.ResponseWriter, r *http.Request) {
	var req SetTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.session.SetToken(r.Context(), token); err != nil {
		h.logger.Error("failed to persist admin token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearToken drops the admin credential.
func (h *Handler) ClearToken(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ClearToken(r.Context()); err != nil {
		h.logger.Error("failed to remove admin token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefreshDoctors runs FetchAllDoctors and returns the roster.
func (h *Handler) RefreshDoctors(w http.ResponseWriter, r *http.Request) {
	ok := h.session.FetchAllDoctors(r.Context())
	h.writeDoctors(w, ok)
}

// ChangeAvailability toggles one doctor's availability and returns the
// refreshed roster.
func (h *Handler) ChangeAvailability(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !isValidID(id) {
		writeError(w, http.StatusBadRequest, "invalid doctor id")
		return
	}

	ok := h.session.SetDoctorAvailability(r.Context(), id)
	h.writeDoctors(w, ok)
}

// RefreshAppointments runs FetchAllAppointments and returns the roster.
func (h *Handler) RefreshAppointments(w http.ResponseWriter, r *http.Request) {
	ok := h.session.FetchAllAppointments(r.Context())
	h.writeAppointments(w, ok)
}

// CancelAppointment cancels one appointment and returns the refreshed roster.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !isValidID(id) {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	ok := h.session.CancelAppointment(r.Context(), id)
	h.writeAppointments(w, ok)
}

// RefreshDashboard runs FetchDashboardSummary and returns the summary.
func (h *Handler) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	ok := h.session.FetchDashboardSummary(r.Context())

	resp := h.operationResponse(ok)
	if dash, loaded := h.session.Dashboard(); loaded {
		resp.Dashboard = &dash
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeDoctors(w http.ResponseWriter, ok bool) {
	resp := h.operationResponse(ok)
	doctors := h.session.Doctors()
	resp.Doctors = &doctors
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeAppointments(w http.ResponseWriter, ok bool) {
	resp := h.operationResponse(ok)
	appointments := h.session.Appointments()
	resp.Appointments = &appointments
	writeJSON(w, http.StatusOK, resp)
}

// operationResponse drains pending toasts. Operation failures are reported
// in the body, not the status code; the session already absorbed them.
func (h *Handler) operationResponse(ok bool) OperationResponse {
	return OperationResponse{
		OK:            ok,
		Notifications: toNotificationResponses(h.toasts.Drain()),
	}
}

// isValidID accepts backend document identifiers: non-empty, at most 64
// characters, alphanumeric plus hyphen and underscore.
func isValidID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, ch := range id {
		if !isValidIDChar(ch) {
			return false
		}
	}
	return true
}

// isValidIDChar returns true if the rune is allowed in an identifier.
func isValidIDChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '_'
}
