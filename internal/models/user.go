package models

import "time"

// User is a patient or caretaker account.
type User struct {
	ID           int64     `bson:"_id" json:"id"`
	FullName     string    `bson:"fullName" json:"fullName"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone,omitempty" json:"phone"`
	Password     string    `bson:"password" json:"-"` // bcrypt hash
	Address      string    `bson:"address,omitempty" json:"address"`
	City         string    `bson:"city,omitempty" json:"city"`
	TokenVersion int       `bson:"tokenVersion" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) AccountID() int64            { return u.ID }
func (u *User) AccountRole() Role           { return RoleUser }
func (u *User) AccountEmail() string        { return u.Email }
func (u *User) AccountPasswordHash() string { return u.Password }
func (u *User) AccountTokenVersion() int    { return u.TokenVersion }

func (u *User) View() any {
	return struct {
		*User
		Role Role `json:"role"`
	}{u, RoleUser}
}
