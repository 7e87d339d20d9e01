package models

import "time"

// Doctor is a provider account. Its id space is independent of User ids.
type Doctor struct {
	ID                 int64     `bson:"_id" json:"id"`
	FullName           string    `bson:"fullName" json:"fullName"`
	Email              string    `bson:"email" json:"email"`
	Phone              string    `bson:"phone,omitempty" json:"phone"`
	Password           string    `bson:"password" json:"-"`
	Specialization     string    `bson:"specialization,omitempty" json:"specialization"`
	LicenseNumber      string    `bson:"licenseNumber,omitempty" json:"licenseNumber"`
	Qualification      string    `bson:"qualification,omitempty" json:"qualification"`
	Experience         int       `bson:"experience" json:"experience"`
	Fee                int       `bson:"fee" json:"fee"`
	Available          bool      `bson:"available" json:"available"`
	Department         string    `bson:"department,omitempty" json:"department"`
	Bio                string    `bson:"bio,omitempty" json:"bio"`
	Timings            string    `bson:"timings,omitempty" json:"timings"`
	Languages          []string  `bson:"languages,omitempty" json:"languages"`
	Rating             float64   `bson:"rating" json:"rating"`
	SuccessfulPatients int       `bson:"successfulPatients" json:"successfulPatients"`
	TokenVersion       int       `bson:"tokenVersion" json:"-"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (d *Doctor) AccountID() int64            { return d.ID }
func (d *Doctor) AccountRole() Role           { return RoleDoctor }
func (d *Doctor) AccountEmail() string        { return d.Email }
func (d *Doctor) AccountPasswordHash() string { return d.Password }
func (d *Doctor) AccountTokenVersion() int    { return d.TokenVersion }

func (d *Doctor) View() any {
	return struct {
		*Doctor
		Role Role `json:"role"`
	}{d, RoleDoctor}
}
