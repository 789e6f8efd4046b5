package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/adminpanel/internal/application"
	"github.com/ericfisherdev/adminpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// SessionResponse describes the admin session: whether a credential is held
// and the current contents of every cache slot. The token itself is never
// echoed back.
type SessionResponse struct {
	Authenticated        bool                      `json:"authenticated"`
	Doctors              []model.DoctorRecord      `json:"doctors"`
	DoctorsLoadedAt      string                    `json:"doctors_loaded_at,omitempty"`
	Appointments         []model.AppointmentRecord `json:"appointments"`
	AppointmentsLoadedAt string                    `json:"appointments_loaded_at,omitempty"`
	Dashboard            *model.DashboardSummary   `json:"dashboard"`
	DashboardLoadedAt    string                    `json:"dashboard_loaded_at,omitempty"`
}

// NotificationResponse is the JSON representation of one toast.
type NotificationResponse struct {
	ID        string `json:"id"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// OperationResponse is returned by every endpoint that runs a session
// operation. OK mirrors the operation's result; the toasts it raised are
// drained into Notifications. Only the slot the operation refreshes is
// attached; an unloaded dashboard is omitted.
type OperationResponse struct {
	OK            bool                       `json:"ok"`
	Notifications []NotificationResponse     `json:"notifications"`
	Doctors       *[]model.DoctorRecord      `json:"doctors,omitempty"`
	Appointments  *[]model.AppointmentRecord `json:"appointments,omitempty"`
	Dashboard     *model.DashboardSummary    `json:"dashboard,omitempty"`
}

// SetTokenRequest is the JSON body for the set token endpoint.
type SetTokenRequest struct {
	Token string `json:"token"`
}

// toSessionResponse converts a session snapshot to its JSON representation.
func toSessionResponse(authenticated bool, snap application.Snapshot) SessionResponse {
	resp := SessionResponse{
		Authenticated:        authenticated,
		Doctors:              snap.Doctors,
		DoctorsLoadedAt:      formatTime(snap.DoctorsLoadedAt),
		Appointments:         snap.Appointments,
		AppointmentsLoadedAt: formatTime(snap.AppointmentsLoadedAt),
	}
	if snap.DashboardLoaded {
		dash := snap.Dashboard
		resp.Dashboard = &dash
		resp.DashboardLoadedAt = formatTime(snap.DashboardLoadedAt)
	}
	return resp
}

// toNotificationResponses converts drained toasts, always returning a
// non-nil slice so the field encodes as [].
func toNotificationResponses(ns []model.Notification) []NotificationResponse {
	resp := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		resp = append(resp, NotificationResponse{
			ID:        n.ID,
			Level:     string(n.Level),
			Message:   n.Message,
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
