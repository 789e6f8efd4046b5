// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ericfisherdev/adminpanel/internal/domain/model"
	"github.com/ericfisherdev/adminpanel/internal/domain/port/driven"
)

// AdminStore is the consumer-facing surface of the admin session: the
// credential, read-only views of the cached server data, and the five
// backend operations. Operations never return errors; failures are reported
// through the notifier and the bool result is true only when the success
// path ran.
type AdminStore interface {
	Token() string
	HasToken() bool
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error

	Doctors() []model.DoctorRecord
	Appointments() []model.AppointmentRecord
	Dashboard() (model.DashboardSummary, bool)
	Snapshot() Snapshot

	FetchAllDoctors(ctx context.Context) bool
	SetDoctorAvailability(ctx context.Context, doctorID string) bool
	FetchAllAppointments(ctx context.Context) bool
	CancelAppointment(ctx context.Context, appointmentID string) bool
	FetchDashboardSummary(ctx context.Context) bool
}

// Compile-time interface satisfaction check.
var _ AdminStore = (*AdminSession)(nil)

// Snapshot is a consistent copy of all three cache slots. A zero LoadedAt
// means the slot has never been filled by a successful fetch.
type Snapshot struct {
	Doctors              []model.DoctorRecord
	DoctorsLoadedAt      time.Time
	Appointments         []model.AppointmentRecord
	AppointmentsLoadedAt time.Time
	Dashboard            model.DashboardSummary
	DashboardLoaded      bool
	DashboardLoadedAt    time.Time
}

// AdminSession holds the admin credential and the last-fetched results of
// the doctor roster, appointment roster and dashboard summary. Each slot is
// replaced wholesale by a successful fetch and never touched by a failure.
// Overlapping calls are not serialised; the last response to arrive wins.
type AdminSession struct {
	api      driven.AdminAPI
	notifier driven.Notifier
	creds    *CredentialHolder
	now      func() time.Time

	mu                   sync.RWMutex
	doctors              []model.DoctorRecord
	doctorsLoadedAt      time.Time
	appointments         []model.AppointmentRecord
	appointmentsLoadedAt time.Time
	dashboard            model.DashboardSummary
	dashboardLoaded      bool
	dashboardLoadedAt    time.Time
}

// NewAdminSession creates a session with empty rosters and an unloaded
// dashboard.
func NewAdminSession(api driven.AdminAPI, notifier driven.Notifier, creds *CredentialHolder) *AdminSession {
	return &AdminSession{
		api:          api,
		notifier:     notifier,
		creds:        creds,
		now:          time.Now,
		doctors:      []model.DoctorRecord{},
		appointments: []model.AppointmentRecord{},
	}
}

// Token returns the current admin token.
func (s *AdminSession) Token() string {
	return s.creds.Token()
}

// HasToken reports whether an admin token is held.
func (s *AdminSession) HasToken() bool {
	return s.creds.HasToken()
}

// SetToken replaces the admin token.
func (s *AdminSession) SetToken(ctx context.Context, token string) error {
	return s.creds.SetToken(ctx, token)
}

// ClearToken drops the admin token.
func (s *AdminSession) ClearToken(ctx context.Context) error {
	return s.creds.Clear(ctx)
}

// Doctors returns a copy of the cached doctor roster.
func (s *AdminSession) Doctors() []model.DoctorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.doctors)
}

// Appointments returns a copy of the cached appointment roster.
func (s *AdminSession) Appointments() []model.AppointmentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.appointments)
}

// Dashboard returns the cached dashboard summary. The bool is false while
// the summary has not been loaded.
func (s *AdminSession) Dashboard() (model.DashboardSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dashboard, s.dashboardLoaded
}

// Snapshot returns all three slots under one lock.
func (s *AdminSession) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Doctors:              slices.Clone(s.doctors),
		DoctorsLoadedAt:      s.doctorsLoadedAt,
		Appointments:         slices.Clone(s.appointments),
		AppointmentsLoadedAt: s.appointmentsLoadedAt,
		Dashboard:            s.dashboard,
		DashboardLoaded:      s.dashboardLoaded,
		DashboardLoadedAt:    s.dashboardLoadedAt,
	}
}

// ReplaceAppointments overwrites the appointment slot directly.
func (s *AdminSession) ReplaceAppointments(appointments []model.AppointmentRecord) {
	if appointments == nil {
		appointments = []model.AppointmentRecord{}
	}
	s.mu.Lock()
	s.appointments = slices.Clone(appointments)
	s.appointmentsLoadedAt = s.now()
	s.mu.Unlock()
}

// FetchAllDoctors replaces the doctor roster with the backend's.
func (s *AdminSession) FetchAllDoctors(ctx context.Context) bool {
	doctors, err := s.api.FetchDoctors(ctx, s.creds.Token())
	if err != nil {
		s.fail(ctx, "get doctors", err)
		return false
	}

	s.mu.Lock()
	s.doctors = doctors
	s.doctorsLoadedAt = s.now()
	s.mu.Unlock()

	slog.Debug("doctors loaded", "count", len(doctors))
	return true
}

// SetDoctorAvailability toggles a doctor's availability, then re-queries the
// roster so the cache reflects the server's state.
func (s *AdminSession) SetDoctorAvailability(ctx context.Context, doctorID string) bool {
	msg, err := s.api.ChangeAvailability(ctx, s.creds.Token(), doctorID)
	if err != nil {
		s.fail(ctx, "change availability", err)
		return false
	}

	s.notifier.Success(ctx, msg)
	s.FetchAllDoctors(ctx)
	return true
}

// FetchAllAppointments replaces the appointment roster with the backend's.
func (s *AdminSession) FetchAllAppointments(ctx context.Context) bool {
	appointments, err := s.api.FetchAppointments(ctx, s.creds.Token())
	if err != nil {
		s.fail(ctx, "get appointments", err)
		return false
	}

	s.mu.Lock()
	s.appointments = appointments
	s.appointmentsLoadedAt = s.now()
	s.mu.Unlock()

	slog.Debug("appointments loaded", "count", len(appointments))
	return true
}

// CancelAppointment cancels one appointment, then re-queries the
// appointment roster.
func (s *AdminSession) CancelAppointment(ctx context.Context, appointmentID string) bool {
	msg, err := s.api.CancelAppointment(ctx, s.creds.Token(), appointmentID)
	if err != nil {
		s.fail(ctx, "cancel appointment", err)
		return false
	}

	s.notifier.Success(ctx, msg)
	s.FetchAllAppointments(ctx)
	return true
}

// FetchDashboardSummary replaces the dashboard summary with the backend's.
func (s *AdminSession) FetchDashboardSummary(ctx context.Context) bool {
	summary, err := s.api.FetchDashboard(ctx, s.creds.Token())
	if err != nil {
		s.fail(ctx, "get dashboard data", err)
		return false
	}

	s.mu.Lock()
	s.dashboard = summary
	s.dashboardLoaded = true
	s.dashboardLoadedAt = s.now()
	s.mu.Unlock()

	slog.Debug("dashboard loaded")
	return true
}

// Generic texts shown when the backend supplied no message of its own.
const (
	msgNetworkError      = "Network Error"
	msgUnexpectedFailure = "Something went wrong, please try again"
)

// fail logs err and surfaces it to the admin. The log line keeps the full
// error; the notification carries only text meant for the admin.
func (s *AdminSession) fail(ctx context.Context, op string, err error) {
	slog.Error("admin operation failed", "op", op, "error", err)
	s.notifier.Error(ctx, userMessage(err))
}

// userMessage picks the text shown to the admin for a failed call.
func userMessage(err error) string {
	var apiErr *driven.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case apiErr != nil:
		return fmt.Sprintf("Request failed with status code %d", apiErr.StatusCode)
	case errors.Is(err, driven.ErrNetwork):
		return msgNetworkError
	default:
		return msgUnexpectedFailure
	}
}
