package models

import (
	"encoding/json"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// AppointmentStatuses lists every valid status in lifecycle order.
var AppointmentStatuses = []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

func (s AppointmentStatus) Valid() bool {
	for _, v := range AppointmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Appointment links a Patient, the Doctor seeing them and the User who booked.
type Appointment struct {
	ID               int64             `bson:"_id" json:"id"`
	PatientID        int64             `bson:"patientId" json:"patientId"`
	PatientName      string            `bson:"patientName" json:"patientName"`
	DoctorID         int64             `bson:"doctorId" json:"doctorId"`
	DoctorName       string            `bson:"doctorName" json:"doctorName"`
	UserID           int64             `bson:"userId" json:"userId"`
	ConsultationType string            `bson:"consultationType" json:"consultationType"`
	Symptoms         SymptomList       `bson:"symptoms" json:"symptoms"`
	Date             string            `bson:"date" json:"date"` // YYYY-MM-DD
	Time             string            `bson:"time" json:"time"` // HH:MM
	Mobile           string            `bson:"mobile,omitempty" json:"mobile"`
	Status           AppointmentStatus `bson:"status" json:"status"`
	ReminderSent     bool              `bson:"reminderSent" json:"-"`
	CreatedAt        time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// StartsAt combines Date and Time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, loc)
}

// SymptomList decodes from either a JSON array or a comma separated string.
type SymptomList []string

func (s *SymptomList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = cleanSymptoms(list)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = cleanSymptoms(strings.Split(raw, ","))
	return nil
}

func cleanSymptoms(in []string) SymptomList {
	out := make(SymptomList, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
