package model

import (
	"bytes"
	"encoding/json"
)

// DoctorRecord is one doctor exactly as the backend returned it. The admin
// panel never rewrites records; it only peeks at a few display fields.
type DoctorRecord struct {
	json.RawMessage
}

// AppointmentRecord is one appointment exactly as the backend returned it.
type AppointmentRecord struct {
	json.RawMessage
}

// Equal reports whether two records carry byte-identical JSON.
func (r DoctorRecord) Equal(other DoctorRecord) bool {
	return bytes.Equal(r.RawMessage, other.RawMessage)
}

// Equal reports whether two records carry byte-identical JSON.
func (r AppointmentRecord) Equal(other AppointmentRecord) bool {
	return bytes.Equal(r.RawMessage, other.RawMessage)
}

// DoctorFields are the display fields the dashboard reads out of a
// DoctorRecord. Missing fields decode to zero values.
type DoctorFields struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Image      string `json:"image"`
	Speciality string `json:"speciality"`
	Degree     string `json:"degree"`
	Experience string `json:"experience"`
	About      string `json:"about"`
	Fees       int    `json:"fees"`
	Available  bool   `json:"available"`
}

// Fields decodes the display fields. A malformed record yields an error and
// zero fields; the record itself stays untouched.
func (r DoctorRecord) Fields() (DoctorFields, error) {
	var f DoctorFields
	err := json.Unmarshal(r.RawMessage, &f)
	return f, err
}

// AppointmentFields are the display fields the dashboard reads out of an
// AppointmentRecord.
type AppointmentFields struct {
	ID          string `json:"_id"`
	SlotDate    string `json:"slotDate"`
	SlotTime    string `json:"slotTime"`
	Amount      int    `json:"amount"`
	Cancelled   bool   `json:"cancelled"`
	Payment     bool   `json:"payment"`
	IsCompleted bool   `json:"isCompleted"`
	UserData    struct {
		Name  string `json:"name"`
		Image string `json:"image"`
		Dob   string `json:"dob"`
	} `json:"userData"`
	DocData struct {
		Name       string `json:"name"`
		Image      string `json:"image"`
		Speciality string `json:"speciality"`
	} `json:"docData"`
}

// Fields decodes the display fields.
func (r AppointmentRecord) Fields() (AppointmentFields, error) {
	var f AppointmentFields
	err := json.Unmarshal(r.RawMessage, &f)
	return f, err
}

// Cancellable reports whether the appointment can still be cancelled from
// the dashboard.
func (f AppointmentFields) Cancellable() bool {
	return !f.Cancelled && !f.IsCompleted
}
