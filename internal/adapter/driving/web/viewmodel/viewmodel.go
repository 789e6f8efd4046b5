// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// PageViewModel holds the chrome shared by every page.
type PageViewModel struct {
	Title         string
	ActiveNav     string
	CSRFToken     string
	Authenticated bool
	Toasts        []ToastViewModel
}

// ToastViewModel holds one transient notification.
type ToastViewModel struct {
	ID      string
	Level   string // "success" or "error"
	Message string
}

// DoctorViewModel holds presentation-ready data for one roster row.
type DoctorViewModel struct {
	ID         string
	Name       string
	Email      string
	Image      string
	Speciality string
	Degree     string
	Experience string
	Fees       int
	Available  bool
	AboutHTML  string // sanitized HTML rendered from markdown

	ToggleURL string // POST target for the availability toggle
}

// AppointmentViewModel holds presentation-ready data for one appointment row.
type AppointmentViewModel struct {
	ID           string
	PatientName  string
	PatientImage string
	PatientAge   string // empty when the date of birth is unknown
	DoctorName   string
	DoctorImage  string
	Speciality   string
	SlotDate     string
	SlotTime     string
	Amount       int
	Paid         bool
	Status       string // "cancelled", "completed" or "booked"
	CanCancel    bool
	CancelURL    string // POST target for cancellation
}

// DashboardViewModel holds the counters and the latest bookings.
type DashboardViewModel struct {
	Loaded             bool
	Doctors            int
	Appointments       int
	Patients           int
	LatestAppointments []AppointmentViewModel
}

// LoginViewModel holds the login form state.
type LoginViewModel struct {
	Error string
}
