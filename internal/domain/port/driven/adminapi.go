package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/adminpanel/internal/domain/model"
)

// ErrNetwork marks a call that failed before any response arrived.
var ErrNetwork = errors.New("network error")

// APIError is a failure the backend answered with: either success=false or a
// non-2xx status. Message is server-authored and meant for the admin; it is
// empty when the response carried none.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// AdminAPI defines the driven port for the backend admin endpoints. Every
// call authenticates with the given token. Records are passed through
// verbatim.
type AdminAPI interface {
	// FetchDoctors returns the full doctor roster.
	FetchDoctors(ctx context.Context, token string) ([]model.DoctorRecord, error)
	// ChangeAvailability toggles a doctor's availability flag and returns the
	// server message.
	ChangeAvailability(ctx context.Context, token, doctorID string) (string, error)
	// FetchAppointments returns the full appointment roster.
	FetchAppointments(ctx context.Context, token string) ([]model.AppointmentRecord, error)
	// CancelAppointment cancels one appointment and returns the server message.
	CancelAppointment(ctx context.Context, token, appointmentID string) (string, error)
	// FetchDashboard returns the aggregate dashboard metrics.
	FetchDashboard(ctx context.Context, token string) (model.DashboardSummary, error)
}
