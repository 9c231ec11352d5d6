package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateSession(ctx context.Context, session *AttendanceSession) (primitive.ObjectID, error) {
	res, err := s.sessions.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

func (s *Store) GetSession(ctx context.Context, id primitive.ObjectID) (*AttendanceSession, error) {
	var session AttendanceSession
	err := s.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindSessionByCode matches an active session whose creation instant is
// strictly later than notBefore, so a code is honored from creation up to but
// excluding creation+window.
func (s *Store) FindSessionByCode(ctx context.Context, code string, notBefore time.Time) (*AttendanceSession, error) {
	var session AttendanceSession
	err := s.sessions.FindOne(ctx, bson.M{
		"qrCode":    code,
		"status":    StatusActive,
		"createdAt": bson.M{"$gt": notBefore},
	}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// AddAttendee appends the student to the redeemer set in a single atomic
// update. The filter carries the full redemption contract (matching code,
// still active, inside the window, student not yet present), so a false
// return means one of those conditions failed; the caller disambiguates.
func (s *Store) AddAttendee(ctx context.Context, code string, student primitive.ObjectID, notBefore time.Time) (bool, error) {
	res, err := s.sessions.UpdateOne(ctx, bson.M{
		"qrCode":    code,
		"status":    StatusActive,
		"createdAt": bson.M{"$gt": notBefore},
		"attendees": bson.M{"$ne": student},
	}, bson.M{
		"$addToSet": bson.M{"attendees": student},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// ExpireSession flips active to expired. The status filter makes the flip
// idempotent and keeps a late timer from touching anything else.
func (s *Store) ExpireSession(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.sessions.UpdateOne(ctx, bson.M{
		"_id":    id,
		"status": StatusActive,
	}, bson.M{
		"$set": bson.M{"status": StatusExpired},
	})
	return err
}

// ExpireStale flips every active session created at or before cutoff.
func (s *Store) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.sessions.UpdateMany(ctx, bson.M{
		"status":    StatusActive,
		"createdAt": bson.M{"$lte": cutoff},
	}, bson.M{
		"$set": bson.M{"status": StatusExpired},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) ListFacultySessions(ctx context.Context, faculty primitive.ObjectID, subject string, from, to *time.Time) ([]AttendanceSession, error) {
	filter := bson.M{"facultyId": faculty}
	if subject != "" {
		filter["subject"] = subject
	}
	if from != nil || to != nil {
		window := bson.M{}
		if from != nil {
			window["$gte"] = *from
		}
		if to != nil {
			window["$lt"] = *to
		}
		filter["createdAt"] = window
	}
	return s.listSessions(ctx, filter)
}

func (s *Store) ListStudentSessions(ctx context.Context, student primitive.ObjectID, subject string) ([]AttendanceSession, error) {
	filter := bson.M{"attendees": student}
	if subject != "" {
		filter["subject"] = subject
	}
	return s.listSessions(ctx, filter)
}

func (s *Store) listSessions(ctx context.Context, filter bson.M) ([]AttendanceSession, error) {
	cursor, err := s.sessions.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var sessions []AttendanceSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
