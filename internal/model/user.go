package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account roles. Doctors additionally carry a speciality.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// User represents a portal account in MongoDB. Identified by email everywhere:
// the chat layer keys presence, typing and conversations on it.
type User struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email      string             `json:"email" bson:"email"`
	Password   string             `json:"-" bson:"password"`
	Name       string             `json:"name" bson:"name"`
	Role       string             `json:"role" bson:"role"`
	Speciality string             `json:"speciality,omitempty" bson:"speciality,omitempty"`
	Image      string             `json:"image,omitempty" bson:"image,omitempty"`
	IsActive   bool               `json:"isActive" bson:"is_active"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt  *time.Time         `json:"updatedAt" bson:"updated_at"`
}

// PublicProfile is the subset of User exposed to other authenticated users,
// e.g. the chat screen header for the counterpart.
type PublicProfile struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Speciality string `json:"speciality,omitempty"`
	Image      string `json:"image,omitempty"`
}

// Public strips credential and bookkeeping fields.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		Speciality: u.Speciality,
		Image:      u.Image,
	}
}
