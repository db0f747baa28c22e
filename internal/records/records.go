// Package records stores the student roll in MongoDB.
package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrNotFound       = errors.New("student not found")
	ErrInvalidID      = errors.New("invalid student id")
	ErrDuplicateEmail = errors.New("a student with this email already exists")
)

// Student is one enrolled pupil
type Student struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName      string        `bson:"firstName" json:"firstName" validate:"required,notblank,max=60"`
	LastName       string        `bson:"lastName" json:"lastName" validate:"required,notblank,max=60"`
	Email          string        `bson:"email" json:"email" validate:"required,email"`
	Grade          int           `bson:"grade" json:"grade" validate:"min=1,max=12"`
	EnrollmentDate time.Time     `bson:"enrollmentDate" json:"enrollmentDate"`
	Active         bool          `bson:"active" json:"active"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// StudentInput is the body accepted by create and update. Absent fields
// keep their previous value on update and their default on create.
type StudentInput struct {
	FirstName      *string    `json:"firstName"`
	LastName       *string    `json:"lastName"`
	Email          *string    `json:"email"`
	Grade          *int       `json:"grade"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
	Active         *bool      `json:"active"`
}

// NewStudent builds a student from input, filling enrollment date and active
// flag with their defaults
func NewStudent(in StudentInput, now time.Time) *Student {
	s := &Student{EnrollmentDate: now.UTC(), Active: true}
	in.Apply(s)
	return s
}

// Apply copies the fields present in the input onto s
func (in StudentInput) Apply(s *Student) {
	if in.FirstName != nil {
		s.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		s.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		s.Email = strings.TrimSpace(*in.Email)
	}
	if in.Grade != nil {
		s.Grade = *in.Grade
	}
	if in.EnrollmentDate != nil {
		s.EnrollmentDate = in.EnrollmentDate.UTC()
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
}

// ParseID decodes a hex object id
func ParseID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, ErrInvalidID
	}
	return id, nil
}

// Store persists students
type Store interface {
	List(ctx context.Context) ([]*Student, error)
	Get(ctx context.Context, id bson.ObjectID) (*Student, error)
	Create(ctx context.Context, s *Student) error
	Replace(ctx context.Context, s *Student) error
	Delete(ctx context.Context, id bson.ObjectID) error
}
