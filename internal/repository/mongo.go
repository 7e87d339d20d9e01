package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harentsoaR/telecare-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection        = "users"
	doctorsCollection      = "doctors"
	patientsCollection     = "patients"
	appointmentsCollection = "appointments"
	countersCollection     = "counters"
	// accountEmailsCollection is keyed by email and claimed before any
	// account insert, which makes email unique across users and doctors.
	accountEmailsCollection = "account_emails"
)

type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

var _ Store = (*MongoStore)(nil)

// EnsureIndexes creates the indexes the store relies on. Safe to call on
// every startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		usersCollection:   {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		doctorsCollection: {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}, {Keys: bson.D{{Key: "department", Value: 1}}}},
		patientsCollection: {{Keys: bson.D{{Key: "userId", Value: 1}}}},
		appointmentsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "doctorId", Value: 1}}},
			{Keys: bson.D{{Key: "patientId", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: 1}, {Key: "status", Value: 1}}},
		},
	}
	for coll, idx := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// nextID increments the named counter and returns its new value.
func (s *MongoStore) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.db.Collection(countersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).
		Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func (s *MongoStore) findOne(ctx context.Context, coll string, filter bson.M, out any) error {
	err := s.db.Collection(coll).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find %s: %w", coll, err)
	}
	return nil
}

func (s *MongoStore) replace(ctx context.Context, coll string, id int64, doc any) error {
	res, err := s.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace %s: %w", coll, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// claimEmail reserves email for role. The claim is released if the account
// insert that follows fails.
func (s *MongoStore) claimEmail(ctx context.Context, email string, role models.Role) error {
	_, err := s.db.Collection(accountEmailsCollection).InsertOne(ctx, bson.M{"_id": email, "role": role})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("claim email: %w", err)
	}
	return nil
}

func (s *MongoStore) releaseEmail(ctx context.Context, email string) {
	_, _ = s.db.Collection(accountEmailsCollection).DeleteOne(ctx, bson.M{"_id": email})
}

func (s *MongoStore) insertAccount(ctx context.Context, coll, email string, role models.Role, assign func(id int64, now time.Time), doc func() any) error {
	if err := s.claimEmail(ctx, email, role); err != nil {
		return err
	}
	id, err := s.nextID(ctx, coll)
	if err != nil {
		s.releaseEmail(ctx, email)
		return err
	}
	assign(id, time.Now().UTC())
	if _, err := s.db.Collection(coll).InsertOne(ctx, doc()); err != nil {
		s.releaseEmail(ctx, email)
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert %s: %w", coll, err)
	}
	return nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := s.findOne(ctx, usersCollection, bson.M{"_id": id}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.findOne(ctx, usersCollection, bson.M{"email": email}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) FindDoctorByID(ctx context.Context, id int64) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.findOne(ctx, doctorsCollection, bson.M{"_id": id}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MongoStore) FindDoctorByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.findOne(ctx, doctorsCollection, bson.M{"email": email}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.insertAccount(ctx, usersCollection, u.Email, models.RoleUser,
		func(id int64, now time.Time) { u.ID, u.CreatedAt, u.UpdatedAt = id, now, now },
		func() any { return u })
}

func (s *MongoStore) CreateDoctor(ctx context.Context, d *models.Doctor) error {
	return s.insertAccount(ctx, doctorsCollection, d.Email, models.RoleDoctor,
		func(id int64, now time.Time) { d.ID, d.CreatedAt, d.UpdatedAt = id, now, now },
		func() any { return d })
}

func (s *MongoStore) SaveUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	return s.replace(ctx, usersCollection, u.ID, u)
}

func (s *MongoStore) SaveDoctor(ctx context.Context, d *models.Doctor) error {
	d.UpdatedAt = time.Now().UTC()
	return s.replace(ctx, doctorsCollection, d.ID, d)
}

func (s *MongoStore) ListDoctors(ctx context.Context, f DoctorFilter) ([]models.Doctor, error) {
	filter := bson.M{}
	if f.Department != "" {
		filter["department"] = f.Department
	}
	if f.Available != nil {
		filter["available"] = *f.Available
	}
	var doctors []models.Doctor
	if err := s.findMany(ctx, doctorsCollection, filter, bson.D{{Key: "fullName", Value: 1}}, &doctors); err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = make([]models.Doctor, 0)
	}
	return doctors, nil
}

func (s *MongoStore) findMany(ctx context.Context, coll string, filter bson.M, sort bson.D, out any) error {
	cursor, err := s.db.Collection(coll).Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return fmt.Errorf("find %s: %w", coll, err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", coll, err)
	}
	return nil
}

func (s *MongoStore) CreatePatient(ctx context.Context, p *models.Patient) error {
	if _, err := s.FindUserByID(ctx, p.UserID); err != nil {
		return err
	}
	id, err := s.nextID(ctx, patientsCollection)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.ID, p.CreatedAt, p.UpdatedAt = id, now, now
	if _, err := s.db.Collection(patientsCollection).InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (s *MongoStore) FindPatient(ctx context.Context, id, userID int64) (*models.Patient, error) {
	var p models.Patient
	if err := s.findOne(ctx, patientsCollection, bson.M{"_id": id, "userId": userID}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) ListPatients(ctx context.Context, userID int64) ([]models.Patient, error) {
	patients := make([]models.Patient, 0)
	if err := s.findMany(ctx, patientsCollection, bson.M{"userId": userID}, bson.D{{Key: "createdAt", Value: -1}}, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (s *MongoStore) SavePatient(ctx context.Context, p *models.Patient) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.Collection(patientsCollection).ReplaceOne(ctx, bson.M{"_id": p.ID, "userId": p.UserID}, p)
	if err != nil {
		return fmt.Errorf("replace patient: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeletePatient(ctx context.Context, id, userID int64) error {
	res, err := s.db.Collection(patientsCollection).DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := s.db.Collection(appointmentsCollection).DeleteMany(ctx, bson.M{"patientId": id}); err != nil {
		return fmt.Errorf("delete patient appointments: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if _, err := s.FindPatient(ctx, a.PatientID, a.UserID); err != nil {
		return err
	}
	if _, err := s.FindDoctorByID(ctx, a.DoctorID); err != nil {
		return err
	}
	id, err := s.nextID(ctx, appointmentsCollection)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	a.ID, a.CreatedAt, a.UpdatedAt = id, now, now
	if _, err := s.db.Collection(appointmentsCollection).InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (s *MongoStore) FindAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.findOne(ctx, appointmentsCollection, bson.M{"_id": id}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *MongoStore) ListAppointments(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	filter := bson.M{}
	if f.UserID != 0 {
		filter["userId"] = f.UserID
	}
	if f.DoctorID != 0 {
		filter["doctorId"] = f.DoctorID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	appointments := make([]models.Appointment, 0)
	if err := s.findMany(ctx, appointmentsCollection, filter, bson.D{{Key: "createdAt", Value: -1}}, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (s *MongoStore) SaveAppointment(ctx context.Context, a *models.Appointment) error {
	a.UpdatedAt = time.Now().UTC()
	return s.replace(ctx, appointmentsCollection, a.ID, a)
}

func (s *MongoStore) DeleteAppointment(ctx context.Context, id int64) error {
	res, err := s.db.Collection(appointmentsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
