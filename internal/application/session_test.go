package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/adminpanel/internal/adapter/driven/backend"
	"github.com/ericfisherdev/adminpanel/internal/adapter/driven/notify"
	"github.com/ericfisherdev/adminpanel/internal/application"
	"github.com/ericfisherdev/adminpanel/internal/domain/model"
	"github.com/ericfisherdev/adminpanel/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockAdminAPI struct {
	mu sync.Mutex

	doctors      []model.DoctorRecord
	doctorsErr   error
	appointments []model.AppointmentRecord
	apptsErr     error
	dashboard    model.DashboardSummary
	dashErr      error
	changeMsg    string
	changeErr    error
	cancelMsg    string
	cancelErr    error

	tokens            []string
	fetchDoctorsCalls int
	fetchApptsCalls   int
	changeCalls       []string
	cancelCalls       []string
}

func (m *mockAdminAPI) record(token string) {
	m.tokens = append(m.tokens, token)
}

func (m *mockAdminAPI) FetchDoctors(_ context.Context, token string) ([]model.DoctorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(token)
	m.fetchDoctorsCalls++
	return m.doctors, m.doctorsErr
}

func (m *mockAdminAPI) ChangeAvailability(_ context.Context, token, doctorID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(token)
	m.changeCalls = append(m.changeCalls, doctorID)
	return m.changeMsg, m.changeErr
}

func (m *mockAdminAPI) FetchAppointments(_ context.Context, token string) ([]model.AppointmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(token)
	m.fetchApptsCalls++
	return m.appointments, m.apptsErr
}

func (m *mockAdminAPI) CancelAppointment(_ context.Context, token, appointmentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(token)
	m.cancelCalls = append(m.cancelCalls, appointmentID)
	return m.cancelMsg, m.cancelErr
}

func (m *mockAdminAPI) FetchDashboard(_ context.Context, token string) (model.DashboardSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(token)
	return m.dashboard, m.dashErr
}

type toast struct {
	Level   model.NotificationLevel
	Message string
}

type mockNotifier struct {
	mu     sync.Mutex
	toasts []toast
}

func (m *mockNotifier) Success(_ context.Context, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = append(m.toasts, toast{Level: model.NotificationSuccess, Message: msg})
}

func (m *mockNotifier) Error(_ context.Context, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = append(m.toasts, toast{Level: model.NotificationError, Message: msg})
}

type mockCredentialStore struct {
	values    map[string]string
	getErr    error
	setErr    error
	deleteErr error
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{values: map[string]string{}}
}

func (m *mockCredentialStore) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[key], nil
}

func (m *mockCredentialStore) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockCredentialStore) Delete(_ context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.values, key)
	return nil
}

// --- Helpers ---

func doctor(id string) model.DoctorRecord {
	return model.DoctorRecord{RawMessage: json.RawMessage(fmt.Sprintf(`{"_id":%q,"name":"Dr. %s"}`, id, id))}
}

func appointment(id string) model.AppointmentRecord {
	return model.AppointmentRecord{RawMessage: json.RawMessage(fmt.Sprintf(`{"_id":%q,"cancelled":false}`, id))}
}

func dashboard(raw string) model.DashboardSummary {
	return model.DashboardSummary{RawMessage: json.RawMessage(raw)}
}

func newSession(t *testing.T, api driven.AdminAPI, token string) (*application.AdminSession, *mockNotifier) {
	t.Helper()

	store := newMockCredentialStore()
	store.values[model.CredentialKeyAdminToken] = token
	creds := application.LoadCredentialHolder(context.Background(), store)
	notifier := &mockNotifier{}
	return application.NewAdminSession(api, notifier, creds), notifier
}

// seeded returns a session whose three slots have already been filled once.
func seeded(t *testing.T) (*application.AdminSession, *mockAdminAPI, *mockNotifier) {
	t.Helper()

	api := &mockAdminAPI{
		doctors:      []model.DoctorRecord{doctor("d1")},
		appointments: []model.AppointmentRecord{appointment("a1")},
		dashboard:    dashboard(`{"doctors":1}`),
	}
	s, notifier := newSession(t, api, "tok")
	ctx := context.Background()
	require.True(t, s.FetchAllDoctors(ctx))
	require.True(t, s.FetchAllAppointments(ctx))
	require.True(t, s.FetchDashboardSummary(ctx))
	return s, api, notifier
}

// --- Tests ---

func TestAdminSession_InitialState(t *testing.T) {
	s, _ := newSession(t, &mockAdminAPI{}, "")

	assert.Empty(t, s.Doctors())
	assert.NotNil(t, s.Doctors())
	assert.Empty(t, s.Appointments())
	_, loaded := s.Dashboard()
	assert.False(t, loaded)
	assert.False(t, s.HasToken())

	snap := s.Snapshot()
	assert.True(t, snap.DoctorsLoadedAt.IsZero())
	assert.True(t, snap.AppointmentsLoadedAt.IsZero())
	assert.False(t, snap.DashboardLoaded)
}

func TestAdminSession_FetchAllDoctors_ReplacesOnlyDoctors(t *testing.T) {
	s, api, notifier := seeded(t)
	before := s.Snapshot()

	api.doctors = []model.DoctorRecord{doctor("d2"), doctor("d3")}
	ok := s.FetchAllDoctors(context.Background())

	require.True(t, ok)
	assert.Equal(t, api.doctors, s.Doctors())
	assert.Equal(t, before.Appointments, s.Appointments())
	dash, loaded := s.Dashboard()
	assert.True(t, loaded)
	assert.True(t, dash.Equal(before.Dashboard))
	assert.Empty(t, notifier.toasts)
}

func TestAdminSession_FetchAllAppointments_ReplacesOnlyAppointments(t *testing.T) {
	s, api, _ := seeded(t)
	before := s.Snapshot()

	api.appointments = []model.AppointmentRecord{appointment("a2")}
	require.True(t, s.FetchAllAppointments(context.Background()))

	assert.Equal(t, api.appointments, s.Appointments())
	assert.Equal(t, before.Doctors, s.Doctors())
}

func TestAdminSession_FetchDashboardSummary_ReplacesOnlyDashboard(t *testing.T) {
	s, api, _ := seeded(t)
	before := s.Snapshot()

	api.dashboard = dashboard(`{"doctors":2}`)
	require.True(t, s.FetchDashboardSummary(context.Background()))

	dash, loaded := s.Dashboard()
	require.True(t, loaded)
	assert.True(t, dash.Equal(api.dashboard))
	assert.Equal(t, before.Doctors, s.Doctors())
	assert.Equal(t, before.Appointments, s.Appointments())
}

func TestAdminSession_FetchAllDoctors_EmptyRosterReplaces(t *testing.T) {
	s, api, _ := seeded(t)

	api.doctors = []model.DoctorRecord{}
	require.True(t, s.FetchAllDoctors(context.Background()))

	assert.Empty(t, s.Doctors())
}

func TestAdminSession_FailuresLeaveSlotsUntouched(t *testing.T) {
	apiFailure := &driven.APIError{StatusCode: http.StatusOK, Message: "Not Authorized Login Again"}
	statusFailure := &driven.APIError{StatusCode: http.StatusBadGateway}
	transportFailure := fmt.Errorf("fetching: %w: %w", driven.ErrNetwork,
		errors.New("dial tcp 127.0.0.1:1: connect: connection refused"))

	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "application failure", err: apiFailure, wantMsg: "Not Authorized Login Again"},
		{name: "wrapped application failure", err: fmt.Errorf("fetching: %w", apiFailure), wantMsg: "Not Authorized Login Again"},
		{name: "status without message", err: fmt.Errorf("fetching: %w", statusFailure), wantMsg: "Request failed with status code 502"},
		{name: "transport failure", err: transportFailure, wantMsg: "Network Error"},
		{name: "malformed response", err: errors.New("decoding response: unexpected end of JSON input"), wantMsg: "Something went wrong, please try again"},
	}

	ops := []struct {
		name   string
		inject func(api *mockAdminAPI, err error)
		call   func(s *application.AdminSession) bool
	}{
		{
			name:   "fetchAllDoctors",
			inject: func(api *mockAdminAPI, err error) { api.doctorsErr = err },
			call:   func(s *application.AdminSession) bool { return s.FetchAllDoctors(context.Background()) },
		},
		{
			name:   "setDoctorAvailability",
			inject: func(api *mockAdminAPI, err error) { api.changeErr = err },
			call:   func(s *application.AdminSession) bool { return s.SetDoctorAvailability(context.Background(), "d1") },
		},
		{
			name:   "fetchAllAppointments",
			inject: func(api *mockAdminAPI, err error) { api.apptsErr = err },
			call:   func(s *application.AdminSession) bool { return s.FetchAllAppointments(context.Background()) },
		},
		{
			name:   "cancelAppointment",
			inject: func(api *mockAdminAPI, err error) { api.cancelErr = err },
			call:   func(s *application.AdminSession) bool { return s.CancelAppointment(context.Background(), "a1") },
		},
		{
			name:   "fetchDashboardSummary",
			inject: func(api *mockAdminAPI, err error) { api.dashErr = err },
			call:   func(s *application.AdminSession) bool { return s.FetchDashboardSummary(context.Background()) },
		},
	}

	for _, op := range ops {
		for _, tt := range tests {
			t.Run(op.name+"/"+tt.name, func(t *testing.T) {
				s, api, notifier := seeded(t)
				before := s.Snapshot()
				doctorCalls, apptCalls := api.fetchDoctorsCalls, api.fetchApptsCalls

				op.inject(api, tt.err)
				ok := op.call(s)

				assert.False(t, ok)
				after := s.Snapshot()
				assert.Equal(t, before, after)
				assert.Equal(t, doctorCalls, api.fetchDoctorsCalls, "no dependent re-fetch")
				assert.Equal(t, apptCalls, api.fetchApptsCalls, "no dependent re-fetch")
				require.Len(t, notifier.toasts, 1)
				assert.Equal(t, toast{Level: model.NotificationError, Message: tt.wantMsg}, notifier.toasts[0])
			})
		}
	}
}

func TestAdminSession_FetchAllDoctors_Idempotent(t *testing.T) {
	api := &mockAdminAPI{doctors: []model.DoctorRecord{doctor("d1"), doctor("d2")}}
	s, _ := newSession(t, api, "tok")
	ctx := context.Background()

	require.True(t, s.FetchAllDoctors(ctx))
	first := s.Doctors()
	require.True(t, s.FetchAllDoctors(ctx))

	assert.Equal(t, first, s.Doctors())
}

func TestAdminSession_SetDoctorAvailability_RefetchesOnce(t *testing.T) {
	api := &mockAdminAPI{
		doctors:   []model.DoctorRecord{doctor("d1")},
		changeMsg: "Availablity Changed",
	}
	s, notifier := newSession(t, api, "tok")

	ok := s.SetDoctorAvailability(context.Background(), "d1")

	require.True(t, ok)
	assert.Equal(t, []string{"d1"}, api.changeCalls)
	assert.Equal(t, 1, api.fetchDoctorsCalls)
	assert.Equal(t, 0, api.fetchApptsCalls)
	assert.Equal(t, api.doctors, s.Doctors())
	require.Len(t, notifier.toasts, 1)
	assert.Equal(t, toast{Level: model.NotificationSuccess, Message: "Availablity Changed"}, notifier.toasts[0])
}

func TestAdminSession_SetDoctorAvailability_RefetchFailureStillSucceeds(t *testing.T) {
	api := &mockAdminAPI{
		changeMsg:  "Availablity Changed",
		doctorsErr: errors.New("connection reset"),
	}
	s, notifier := newSession(t, api, "tok")

	ok := s.SetDoctorAvailability(context.Background(), "d1")

	assert.True(t, ok)
	assert.Equal(t, 1, api.fetchDoctorsCalls)
	require.Len(t, notifier.toasts, 2)
	assert.Equal(t, model.NotificationSuccess, notifier.toasts[0].Level)
	assert.Equal(t, toast{Level: model.NotificationError, Message: "connection reset"}, notifier.toasts[1])
}

func TestAdminSession_CancelAppointment_RefetchesOnce(t *testing.T) {
	api := &mockAdminAPI{
		appointments: []model.AppointmentRecord{appointment("a1")},
		cancelMsg:    "Appointment Cancelled",
	}
	s, notifier := newSession(t, api, "tok")

	ok := s.CancelAppointment(context.Background(), "a1")

	require.True(t, ok)
	assert.Equal(t, []string{"a1"}, api.cancelCalls)
	assert.Equal(t, 1, api.fetchApptsCalls)
	assert.Equal(t, 0, api.fetchDoctorsCalls)
	assert.Equal(t, api.appointments, s.Appointments())
	require.Len(t, notifier.toasts, 1)
	assert.Equal(t, toast{Level: model.NotificationSuccess, Message: "Appointment Cancelled"}, notifier.toasts[0])
}

func TestAdminSession_SendsCurrentToken(t *testing.T) {
	api := &mockAdminAPI{}
	s, _ := newSession(t, api, "")
	ctx := context.Background()

	s.FetchAllDoctors(ctx)
	require.NoError(t, s.SetToken(ctx, "fresh"))
	s.FetchDashboardSummary(ctx)
	require.NoError(t, s.ClearToken(ctx))
	s.FetchAllAppointments(ctx)

	assert.Equal(t, []string{"", "fresh", ""}, api.tokens)
}

func TestAdminSession_AccessorsReturnCopies(t *testing.T) {
	s, _, _ := seeded(t)

	doctors := s.Doctors()
	doctors[0] = doctor("mutated")
	appts := s.Appointments()
	appts[0] = appointment("mutated")

	assert.True(t, s.Doctors()[0].Equal(doctor("d1")))
	assert.True(t, s.Appointments()[0].Equal(appointment("a1")))
}

func TestAdminSession_ReplaceAppointments(t *testing.T) {
	s, api, _ := seeded(t)

	s.ReplaceAppointments([]model.AppointmentRecord{appointment("local")})
	assert.Equal(t, []model.AppointmentRecord{appointment("local")}, s.Appointments())

	s.ReplaceAppointments(nil)
	assert.NotNil(t, s.Appointments())
	assert.Empty(t, s.Appointments())
	assert.Equal(t, 1, api.fetchApptsCalls)
}

func TestAdminSession_ConcurrentOperations(t *testing.T) {
	api := &mockAdminAPI{
		doctors:      []model.DoctorRecord{doctor("d1")},
		appointments: []model.AppointmentRecord{appointment("a1")},
		dashboard:    dashboard(`{}`),
		changeMsg:    "ok",
		cancelMsg:    "ok",
	}
	s, _ := newSession(t, api, "tok")
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(5)
		go func() { defer wg.Done(); s.FetchAllDoctors(ctx) }()
		go func() { defer wg.Done(); s.SetDoctorAvailability(ctx, "d1") }()
		go func() { defer wg.Done(); s.FetchAllAppointments(ctx) }()
		go func() { defer wg.Done(); s.CancelAppointment(ctx, "a1") }()
		go func() { defer wg.Done(); _ = s.Snapshot() }()
	}
	wg.Wait()

	assert.Equal(t, api.doctors, s.Doctors())
	assert.Equal(t, api.appointments, s.Appointments())
}

// --- End-to-end against an HTTP backend ---

func newBackendSession(t *testing.T, handler http.HandlerFunc, token string) (*application.AdminSession, *notify.Toaster) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := backend.NewClientWithHTTPClient(srv.Client(), srv.URL)
	require.NoError(t, err)

	store := newMockCredentialStore()
	store.values[model.CredentialKeyAdminToken] = token
	creds := application.LoadCredentialHolder(context.Background(), store)

	toaster := notify.NewToaster(notify.DefaultCapacity, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return application.NewAdminSession(client, toaster, creds), toaster
}

func TestAdminSession_DashboardScenario(t *testing.T) {
	var (
		mu       sync.Mutex
		gotToken string
	)
	s, toaster := newBackendSession(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotToken = r.Header.Get(backend.TokenHeader)
		mu.Unlock()
		assert.Equal(t, "/api/admin/dashboard", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"dashData":{"doctors":5,"appointments":12}}`)
	}, "abc123")

	ok := s.FetchDashboardSummary(context.Background())

	require.True(t, ok)
	mu.Lock()
	assert.Equal(t, "abc123", gotToken)
	mu.Unlock()
	dash, loaded := s.Dashboard()
	require.True(t, loaded)
	assert.JSONEq(t, `{"doctors":5,"appointments":12}`, string(dash.RawMessage))
	assert.Empty(t, toaster.Drain())
}

func TestAdminSession_AlreadyCancelledScenario(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	s, toaster := newBackendSession(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		_, _ = io.WriteString(w, `{"success":false,"message":"Already cancelled"}`)
	}, "tok")
	s.ReplaceAppointments([]model.AppointmentRecord{appointment("appt-9")})
	before := s.Appointments()

	ok := s.CancelAppointment(context.Background(), "appt-9")

	assert.False(t, ok)
	assert.Equal(t, before, s.Appointments())
	mu.Lock()
	assert.Equal(t, []string{"/api/admin/cancel-appointment"}, paths)
	mu.Unlock()

	toasts := toaster.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, model.NotificationError, toasts[0].Level)
	assert.Equal(t, "Already cancelled", toasts[0].Message)
}

func TestAdminSession_UnreachableBackendShowsGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := backend.NewClient(url)
	require.NoError(t, err)
	store := newMockCredentialStore()
	creds := application.LoadCredentialHolder(context.Background(), store)
	toaster := notify.NewToaster(notify.DefaultCapacity, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := application.NewAdminSession(client, toaster, creds)

	ok := s.FetchAllDoctors(context.Background())

	assert.False(t, ok)
	toasts := toaster.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Network Error", toasts[0].Message)
	assert.NotContains(t, toasts[0].Message, url)
}
