package model

import (
	"bytes"
	"encoding/json"
)

// DashboardSummary is the aggregate metrics object returned by the backend.
// It has no schema at this layer and is kept verbatim.
type DashboardSummary struct {
	json.RawMessage
}

// Equal reports whether two summaries carry byte-identical JSON.
func (d DashboardSummary) Equal(other DashboardSummary) bool {
	return bytes.Equal(d.RawMessage, other.RawMessage)
}

// DashboardFields are the counters and the latest-appointments list the
// dashboard page shows.
type DashboardFields struct {
	Doctors            int                 `json:"doctors"`
	Appointments       int                 `json:"appointments"`
	Patients           int                 `json:"patients"`
	LatestAppointments []AppointmentRecord `json:"latestAppointments"`
}

// Fields decodes the display fields.
func (d DashboardSummary) Fields() (DashboardFields, error) {
	var f DashboardFields
	err := json.Unmarshal(d.RawMessage, &f)
	return f, err
}
