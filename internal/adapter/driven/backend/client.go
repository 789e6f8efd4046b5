// Package backend implements the AdminAPI port against the appointment
// backend's REST admin endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/gregjones/httpcache"
	"golang.org/x/net/publicsuffix"

	"github.com/ericfisherdev/adminpanel/internal/domain/model"
	"github.com/ericfisherdev/adminpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AdminAPI = (*Client)(nil)

// TokenHeader is the header the backend's admin middleware reads the token
// from. The backend matches it case-sensitively, so it is written into the
// header map as-is rather than through Header.Set.
const TokenHeader = "atoken"

const (
	pathAllDoctors         = "/api/admin/all-doctors"
	pathChangeAvailability = "/api/admin/change-availability"
	pathAppointments       = "/api/admin/appointments"
	pathCancelAppointment  = "/api/admin/cancel-appointment"
	pathDashboard          = "/api/admin/dashboard"
)

// Client implements the driven.AdminAPI port over plain HTTP+JSON.
type Client struct {
	http    *http.Client
	baseURL *url.URL
}

// NewClient creates a backend client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching for GETs; every
//     GET is revalidated, never served from cache unseen)
//  2. a cookie jar, so session cookies set by the backend are sent back
//
// No timeout is set; callers bound calls through their context.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()

	return NewClientWithHTTPClient(&http.Client{
		Transport: cacheTransport,
		Jar:       jar,
	}, baseURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL: %q is not absolute", baseURL)
	}

	return &Client{http: httpClient, baseURL: u}, nil
}

// FetchDoctors retrieves the doctor roster. The endpoint is a POST with an
// empty object body.
func (c *Client) FetchDoctors(ctx context.Context, token string) ([]model.DoctorRecord, error) {
	var env struct {
		envelope
		Doctors []model.DoctorRecord `json:"doctors"`
	}
	if err := c.do(ctx, http.MethodPost, pathAllDoctors, token, struct{}{}, &env, &env.envelope); err != nil {
		return nil, fmt.Errorf("fetching doctors: %w", err)
	}

	logFetch(pathAllDoctors, len(env.Doctors))

	if env.Doctors == nil {
		env.Doctors = []model.DoctorRecord{}
	}
	return env.Doctors, nil
}

// ChangeAvailability toggles a doctor's availability and returns the
// server's confirmation message.
func (c *Client) ChangeAvailability(ctx context.Context, token, doctorID string) (string, error) {
	body := struct {
		DocID string `json:"docId"`
	}{DocID: doctorID}

	var env envelope
	if err := c.do(ctx, http.MethodPost, pathChangeAvailability, token, body, &env, &env); err != nil {
		return "", fmt.Errorf("changing availability of doctor %s: %w", doctorID, err)
	}
	return env.Message, nil
}

// FetchAppointments retrieves the appointment roster.
func (c *Client) FetchAppointments(ctx context.Context, token string) ([]model.AppointmentRecord, error) {
	var env struct {
		envelope
		Appointments []model.AppointmentRecord `json:"appointments"`
	}
	if err := c.do(ctx, http.MethodGet, pathAppointments, token, nil, &env, &env.envelope); err != nil {
		return nil, fmt.Errorf("fetching appointments: %w", err)
	}

	logFetch(pathAppointments, len(env.Appointments))

	if env.Appointments == nil {
		env.Appointments = []model.AppointmentRecord{}
	}
	return env.Appointments, nil
}

// CancelAppointment cancels one appointment and returns the server's
// confirmation message.
func (c *Client) CancelAppointment(ctx context.Context, token, appointmentID string) (string, error) {
	body := struct {
		AppointmentID string `json:"appointmentId"`
	}{AppointmentID: appointmentID}

	var env envelope
	if err := c.do(ctx, http.MethodPost, pathCancelAppointment, token, body, &env, &env); err != nil {
		return "", fmt.Errorf("cancelling appointment %s: %w", appointmentID, err)
	}
	return env.Message, nil
}

// FetchDashboard retrieves the aggregate dashboard metrics.
func (c *Client) FetchDashboard(ctx context.Context, token string) (model.DashboardSummary, error) {
	var env struct {
		envelope
		DashData model.DashboardSummary `json:"dashData"`
	}
	if err := c.do(ctx, http.MethodGet, pathDashboard, token, nil, &env, &env.envelope); err != nil {
		return model.DashboardSummary{}, fmt.Errorf("fetching dashboard: %w", err)
	}

	logFetch(pathDashboard, 1)
	return env.DashData, nil
}

// do performs one round trip. body is JSON-encoded when non-nil. status
// points at the envelope embedded in out; it is decoded first so a
// success=false reply surfaces its message whatever the payload looks like.
func (c *Client) do(ctx context.Context, method, path, token string, body any, out any, status *envelope) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header[TokenHeader] = []string{token}
	if method == http.MethodGet {
		// Cached entries count as stale, so every GET reaches the backend
		// with the current token and is revalidated against the stored ETag.
		req.Header.Set("Cache-Control", "max-age=0")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", driven.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", driven.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, raw)
	}

	if err := json.Unmarshal(raw, status); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if !status.Success {
		return &driven.APIError{StatusCode: resp.StatusCode, Message: status.Message}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// statusError maps a non-2xx response to an APIError, carrying the server's
// message when the body is a structured envelope.
func statusError(resp *http.Response, raw []byte) error {
	var message string
	var env envelope
	if json.Unmarshal(raw, &env) == nil {
		message = env.Message
	}
	return &driven.APIError{StatusCode: resp.StatusCode, Message: message}
}

// logFetch logs the size of each successful roster fetch.
func logFetch(endpoint string, count int) {
	slog.Debug("backend api call",
		"endpoint", endpoint,
		"count", count,
	)
}
