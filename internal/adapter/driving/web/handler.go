// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/adminpanel/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/adminpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/adminpanel/internal/application"
	"github.com/ericfisherdev/adminpanel/internal/domain/model"
)

// NotificationSource yields the toasts raised since the last drain.
type NotificationSource interface {
	Drain() []model.Notification
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	session application.AdminStore
	toasts  NotificationSource
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(session application.AdminStore, toasts NotificationSource, logger *slog.Logger) *Handler {
	return &Handler{
		session: session,
		toasts:  toasts,
		logger:  logger,
		now:     time.Now,
	}
}

// Dashboard refreshes and renders the summary page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if !h.requireToken(w, r) {
		return
	}

	h.session.FetchDashboardSummary(r.Context())
	summary, loaded := h.session.Dashboard()

	csrf := csrfToken(w, r)
	body := templates.Dashboard(toDashboardViewModel(summary, loaded, h.now()), csrf)
	h.render(w, r, "Dashboard", "dashboard", csrf, body)
}

// Doctors refreshes and renders the doctor roster.
func (h *Handler) Doctors(w http.ResponseWriter, r *http.Request) {
	if !h.requireToken(w, r) {
		return
	}

	h.session.FetchAllDoctors(r.Context())

	csrf := csrfToken(w, r)
	body := templates.Doctors(toDoctorViewModels(h.session.Doctors()), csrf)
	h.render(w, r, "Doctors", "doctors", csrf, body)
}

// ToggleAvailability flips one doctor's availability, then sends the admin
// back to the roster.
func (h *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	if !h.guardPost(w, r) {
		return
	}

	h.session.SetDoctorAvailability(r.Context(), r.PathValue("id"))
	http.Redirect(w, r, "/doctors", http.StatusSeeOther)
}

// Appointments refreshes and renders the appointment roster.
func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request) {
	if !h.requireToken(w, r) {
		return
	}

	h.session.FetchAllAppointments(r.Context())

	csrf := csrfToken(w, r)
	body := templates.Appointments(toAppointmentViewModels(h.session.Appointments(), h.now()), csrf)
	h.render(w, r, "Appointments", "appointments", csrf, body)
}

// CancelAppointment cancels one appointment, then returns the admin to the
// page the form was posted from.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	if !h.guardPost(w, r) {
		return
	}

	h.session.CancelAppointment(r.Context(), r.PathValue("id"))
	http.Redirect(w, r, returnPath(r, "/appointments"), http.StatusSeeOther)
}

// LoginPage renders the token form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.session.HasToken() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, "")
}

// Login stores the pasted admin token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	token := strings.TrimSpace(r.FormValue("token"))
	if token == "" {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, "Token is required.")
		return
	}

	if err := h.session.SetToken(r.Context(), token); err != nil {
		h.logger.Error("failed to persist admin token", "error", err)
		h.renderLogin(w, r, http.StatusInternalServerError, "Could not save the token.")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout drops the admin token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	if err := h.session.ClearToken(r.Context()); err != nil {
		h.logger.Error("failed to remove admin token", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// requireToken redirects to the login page when no token is held.
func (h *Handler) requireToken(w http.ResponseWriter, r *http.Request) bool {
	if h.session.HasToken() {
		return true
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return false
}

// guardPost applies the token and CSRF checks every mutating form shares.
func (h *Handler) guardPost(w http.ResponseWriter, r *http.Request) bool {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return false
	}
	return h.requireToken(w, r)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	csrf := csrfToken(w, r)
	body := templates.Login(vm.LoginViewModel{Error: errMsg}, csrf)
	h.renderPage(w, r, status, vm.PageViewModel{
		Title:     "Login",
		CSRFToken: csrf,
		Toasts:    toToastViewModels(h.toasts.Drain()),
	}, body)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title, nav, csrf string, body templ.Component) {
	h.renderPage(w, r, http.StatusOK, vm.PageViewModel{
		Title:         title,
		ActiveNav:     nav,
		CSRFToken:     csrf,
		Authenticated: true,
		Toasts:        toToastViewModels(h.toasts.Drain()),
	}, body)
}

// renderPage buffers the page so a render failure can still become a 500.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, page vm.PageViewModel, body templ.Component) {
	var buf bytes.Buffer
	if err := templates.Layout(page, body).Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page", "page", page.Title, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// returnPath honours a local "return" form value so the dashboard's cancel
// buttons land back on the dashboard.
func returnPath(r *http.Request, fallback string) string {
	p := r.FormValue("return")
	if p == "/" || p == "/appointments" {
		return p
	}
	return fallback
}
