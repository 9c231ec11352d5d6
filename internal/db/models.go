package db

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionStatus string

const (
	StatusActive  SessionStatus = "active"
	StatusExpired SessionStatus = "expired"
)

// AttendanceSession is the persisted attendance window. Attendees has set
// semantics: a student id appears at most once, enforced by the $addToSet
// redemption update.
type AttendanceSession struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FacultyID primitive.ObjectID   `bson:"facultyId" json:"facultyId"`
	Subject   string               `bson:"subject" json:"subject"`
	ClassRoom string               `bson:"classRoom" json:"classRoom"`
	QRCode    string               `bson:"qrCode" json:"-"`
	Status    SessionStatus        `bson:"status" json:"status"`
	Attendees []primitive.ObjectID `bson:"attendees" json:"attendees"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

// User documents are written by the identity service; this service only
// reads them to resolve names and emails.
type User struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Role  string             `bson:"role" json:"role"`
}
