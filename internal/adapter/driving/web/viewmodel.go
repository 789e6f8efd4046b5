package web

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	vm "github.com/ericfisherdev/adminpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/adminpanel/internal/domain/model"
)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// toDoctorViewModels converts the cached roster. Records that do not decode
// are logged and skipped; the cache itself is never rewritten.
func toDoctorViewModels(records []model.DoctorRecord) []vm.DoctorViewModel {
	out := make([]vm.DoctorViewModel, 0, len(records))
	for _, rec := range records {
		f, err := rec.Fields()
		if err != nil {
			slog.Warn("skipping undecodable doctor record", "error", err)
			continue
		}
		out = append(out, vm.DoctorViewModel{
			ID:         f.ID,
			Name:       f.Name,
			Email:      f.Email,
			Image:      f.Image,
			Speciality: f.Speciality,
			Degree:     f.Degree,
			Experience: f.Experience,
			Fees:       f.Fees,
			Available:  f.Available,
			AboutHTML:  RenderMarkdown(f.About),
			ToggleURL:  "/doctors/" + url.PathEscape(f.ID) + "/availability",
		})
	}
	return out
}

// toAppointmentViewModels converts the cached appointment roster.
func toAppointmentViewModels(records []model.AppointmentRecord, now time.Time) []vm.AppointmentViewModel {
	out := make([]vm.AppointmentViewModel, 0, len(records))
	for _, rec := range records {
		f, err := rec.Fields()
		if err != nil {
			slog.Warn("skipping undecodable appointment record", "error", err)
			continue
		}
		out = append(out, toAppointmentViewModel(f, now))
	}
	return out
}

func toAppointmentViewModel(f model.AppointmentFields, now time.Time) vm.AppointmentViewModel {
	status := "booked"
	switch {
	case f.Cancelled:
		status = "cancelled"
	case f.IsCompleted:
		status = "completed"
	}

	return vm.AppointmentViewModel{
		ID:           f.ID,
		PatientName:  f.UserData.Name,
		PatientImage: f.UserData.Image,
		PatientAge:   ageFrom(f.UserData.Dob, now),
		DoctorName:   f.DocData.Name,
		DoctorImage:  f.DocData.Image,
		Speciality:   f.DocData.Speciality,
		SlotDate:     formatSlotDate(f.SlotDate),
		SlotTime:     f.SlotTime,
		Amount:       f.Amount,
		Paid:         f.Payment,
		Status:       status,
		CanCancel:    f.Cancellable(),
		CancelURL:    "/appointments/" + url.PathEscape(f.ID) + "/cancel",
	}
}

// toDashboardViewModel converts the cached summary. An unloaded or
// undecodable summary renders as not loaded.
func toDashboardViewModel(summary model.DashboardSummary, loaded bool, now time.Time) vm.DashboardViewModel {
	if !loaded {
		return vm.DashboardViewModel{LatestAppointments: []vm.AppointmentViewModel{}}
	}

	f, err := summary.Fields()
	if err != nil {
		slog.Warn("undecodable dashboard summary", "error", err)
		return vm.DashboardViewModel{LatestAppointments: []vm.AppointmentViewModel{}}
	}

	return vm.DashboardViewModel{
		Loaded:             true,
		Doctors:            f.Doctors,
		Appointments:       f.Appointments,
		Patients:           f.Patients,
		LatestAppointments: toAppointmentViewModels(f.LatestAppointments, now),
	}
}

func toToastViewModels(ns []model.Notification) []vm.ToastViewModel {
	out := make([]vm.ToastViewModel, 0, len(ns))
	for _, n := range ns {
		out = append(out, vm.ToastViewModel{
			ID:      n.ID,
			Level:   string(n.Level),
			Message: n.Message,
		})
	}
	return out
}

// formatSlotDate turns the backend's "day_month_year" slot key into
// "20 Jan 2026". Anything else is returned unchanged.
func formatSlotDate(raw string) string {
	parts := strings.Split(raw, "_")
	if len(parts) != 3 {
		return raw
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return raw
	}
	return parts[0] + " " + monthNames[month-1] + " " + parts[2]
}

// ageFrom returns the age in whole years for a YYYY-MM-DD date of birth, or
// "" when the date is missing or unparseable.
func ageFrom(dob string, now time.Time) string {
	born, err := time.Parse(time.DateOnly, dob)
	if err != nil {
		return ""
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return ""
	}
	return strconv.Itoa(age)
}
