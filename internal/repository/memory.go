package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/harentsoaR/telecare-api/internal/models"
)

// MemoryStore is a process-local Store used with STORE=memory and in tests.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[int64]models.User
	doctors      map[int64]models.Doctor
	patients     map[int64]models.Patient
	appointments map[int64]models.Appointment
	emails       map[string]struct{}
	seq          map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]models.User),
		doctors:      make(map[int64]models.Doctor),
		patients:     make(map[int64]models.Patient),
		appointments: make(map[int64]models.Appointment),
		emails:       make(map[string]struct{}),
		seq:          make(map[string]int64),
	}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) next(name string) int64 {
	m.seq[name]++
	return m.seq[name]
}

func (m *MemoryStore) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindDoctorByID(_ context.Context, id int64) (*models.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	d.Languages = append([]string(nil), d.Languages...)
	return &d, nil
}

func (m *MemoryStore) FindDoctorByEmail(_ context.Context, email string) (*models.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.doctors {
		if d.Email == email {
			d.Languages = append([]string(nil), d.Languages...)
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.emails[u.Email]; taken {
		return ErrDuplicateEmail
	}
	now := time.Now().UTC()
	u.ID = m.next("users")
	u.CreatedAt, u.UpdatedAt = now, now
	m.emails[u.Email] = struct{}{}
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryStore) CreateDoctor(_ context.Context, d *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.emails[d.Email]; taken {
		return ErrDuplicateEmail
	}
	now := time.Now().UTC()
	d.ID = m.next("doctors")
	d.CreatedAt, d.UpdatedAt = now, now
	m.emails[d.Email] = struct{}{}
	stored := *d
	stored.Languages = append([]string(nil), d.Languages...)
	m.doctors[d.ID] = stored
	return nil
}

func (m *MemoryStore) SaveUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryStore) SaveDoctor(_ context.Context, d *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	d.UpdatedAt = time.Now().UTC()
	stored := *d
	stored.Languages = append([]string(nil), d.Languages...)
	m.doctors[d.ID] = stored
	return nil
}

func (m *MemoryStore) ListDoctors(_ context.Context, f DoctorFilter) ([]models.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		if f.Department != "" && d.Department != f.Department {
			continue
		}
		if f.Available != nil && d.Available != *f.Available {
			continue
		}
		d.Languages = append([]string(nil), d.Languages...)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (m *MemoryStore) CreatePatient(_ context.Context, p *models.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[p.UserID]; !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	p.ID = m.next("patients")
	p.CreatedAt, p.UpdatedAt = now, now
	m.patients[p.ID] = *p
	return nil
}

func (m *MemoryStore) FindPatient(_ context.Context, id, userID int64) (*models.Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.patients[id]
	if !ok || p.UserID != userID {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListPatients(_ context.Context, userID int64) ([]models.Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Patient, 0)
	for _, p := range m.patients {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) SavePatient(_ context.Context, p *models.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.patients[p.ID]
	if !ok || cur.UserID != p.UserID {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	m.patients[p.ID] = *p
	return nil
}

func (m *MemoryStore) DeletePatient(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok || p.UserID != userID {
		return ErrNotFound
	}
	for aid, a := range m.appointments {
		if a.PatientID == id {
			delete(m.appointments, aid)
		}
	}
	delete(m.patients, id)
	return nil
}

func (m *MemoryStore) CreateAppointment(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[a.PatientID]
	if !ok || p.UserID != a.UserID {
		return ErrNotFound
	}
	if _, ok := m.doctors[a.DoctorID]; !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	a.ID = m.next("appointments")
	a.CreatedAt, a.UpdatedAt = now, now
	stored := *a
	stored.Symptoms = append(models.SymptomList(nil), a.Symptoms...)
	m.appointments[a.ID] = stored
	return nil
}

func (m *MemoryStore) FindAppointment(_ context.Context, id int64) (*models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Symptoms = append(models.SymptomList(nil), a.Symptoms...)
	return &a, nil
}

func (m *MemoryStore) ListAppointments(_ context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Appointment, 0)
	for _, a := range m.appointments {
		switch {
		case f.UserID != 0 && a.UserID != f.UserID,
			f.DoctorID != 0 && a.DoctorID != f.DoctorID,
			f.Status != "" && a.Status != f.Status,
			f.Date != "" && a.Date != f.Date:
			continue
		}
		a.Symptoms = append(models.SymptomList(nil), a.Symptoms...)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) SaveAppointment(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	stored := *a
	stored.Symptoms = append(models.SymptomList(nil), a.Symptoms...)
	m.appointments[a.ID] = stored
	return nil
}

func (m *MemoryStore) DeleteAppointment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(m.appointments, id)
	return nil
}
