// Package repository persists accounts, patients and appointments.
//
// Users and doctors live in independently keyed collections: an id is only
// unique within its own collection. Email uniqueness spans both.
package repository

import (
	"context"
	"errors"

	"github.com/harentsoaR/telecare-api/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type AccountStore interface {
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindDoctorByID(ctx context.Context, id int64) (*models.Doctor, error)
	FindDoctorByEmail(ctx context.Context, email string) (*models.Doctor, error)

	// CreateUser and CreateDoctor assign the id and timestamps. They return
	// ErrDuplicateEmail when the email is held by any account of either kind.
	CreateUser(ctx context.Context, u *models.User) error
	CreateDoctor(ctx context.Context, d *models.Doctor) error

	SaveUser(ctx context.Context, u *models.User) error
	SaveDoctor(ctx context.Context, d *models.Doctor) error

	ListDoctors(ctx context.Context, f DoctorFilter) ([]models.Doctor, error)
}

type DoctorFilter struct {
	Department string
	Available  *bool
}

type PatientStore interface {
	CreatePatient(ctx context.Context, p *models.Patient) error
	// FindPatient only matches a patient owned by userID.
	FindPatient(ctx context.Context, id, userID int64) (*models.Patient, error)
	ListPatients(ctx context.Context, userID int64) ([]models.Patient, error)
	SavePatient(ctx context.Context, p *models.Patient) error
	// DeletePatient removes the patient and its appointments.
	DeletePatient(ctx context.Context, id, userID int64) error
}

type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	FindAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	ListAppointments(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error)
	SaveAppointment(ctx context.Context, a *models.Appointment) error
	DeleteAppointment(ctx context.Context, id int64) error
}

// AppointmentFilter fields are ANDed; zero values are ignored.
type AppointmentFilter struct {
	UserID   int64
	DoctorID int64
	Status   models.AppointmentStatus
	Date     string
}

type Store interface {
	AccountStore
	PatientStore
	AppointmentStore
}
