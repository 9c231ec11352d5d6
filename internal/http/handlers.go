package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rollmark/attendance/internal/auth"
	"rollmark/attendance/internal/db"
	"rollmark/attendance/internal/export"
	"rollmark/attendance/internal/report"
	"rollmark/attendance/internal/session"
)

type generateQRRequest struct {
	Subject   string `json:"subject" validate:"required"`
	ClassRoom string `json:"classRoom" validate:"required"`
}

type generateQRResponse struct {
	QRCode    string `json:"qrCode"`
	SessionID string `json:"sessionId"`
	ExpiresIn int    `json:"expiresIn"`
}

func (s *Server) handleGenerateQR(w http.ResponseWriter, r *http.Request) {
	claims := s.requireRole(w, r, auth.RoleFaculty)
	if claims == nil {
		return
	}
	facultyID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	var req generateQRRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.ClassRoom = strings.TrimSpace(req.ClassRoom)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	code, err := session.NewCode()
	if err != nil {
		s.writeInternal(w, err)
		return
	}
	now := time.Now().UTC()
	id, err := s.store.CreateSession(r.Context(), &db.AttendanceSession{
		FacultyID: facultyID,
		Subject:   req.Subject,
		ClassRoom: req.ClassRoom,
		QRCode:    code,
		Status:    db.StatusActive,
		Attendees: []primitive.ObjectID{},
		CreatedAt: now,
	})
	if err != nil {
		s.writeInternal(w, err)
		return
	}

	s.scheduleExpiry(id)
	sessionsCreated.Inc()
	writeJSON(w, http.StatusOK, generateQRResponse{
		QRCode:    code,
		SessionID: id.Hex(),
		ExpiresIn: int(s.cfg.SessionTTL.Seconds()),
	})
}

// scheduleExpiry registers the one-shot status flip. It is a courtesy update
// for display; the redemption filter re-checks the window regardless, so a
// failed flip is only logged.
func (s *Server) scheduleExpiry(id primitive.ObjectID) {
	s.scheduler.Schedule(id.Hex(), s.cfg.SessionTTL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.ExpireSession(ctx, id); err != nil {
			log.Printf("session expiry error for %s: %v", id.Hex(), err)
		}
	})
}

type markRequest struct {
	QRCode string `json:"qrCode" validate:"required"`
}

func (s *Server) handleMark(w http.ResponseWriter, r *http.Request) {
	claims := s.requireRole(w, r, auth.RoleStudent)
	if claims == nil {
		return
	}
	studentID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	var req markRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.QRCode = strings.TrimSpace(req.QRCode)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	notBefore := time.Now().UTC().Add(-s.cfg.SessionTTL)
	added, err := s.store.AddAttendee(r.Context(), req.QRCode, studentID, notBefore)
	if err != nil {
		s.writeInternal(w, err)
		return
	}
	if !added {
		// The atomic update matched nothing: either the code has no live
		// session or this student already redeemed it.
		_, err := s.store.FindSessionByCode(r.Context(), req.QRCode, notBefore)
		if errors.Is(err, db.ErrNoSession) {
			redemptions.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, "invalid_or_expired_code")
			return
		}
		if err != nil {
			s.writeInternal(w, err)
			return
		}
		redemptions.WithLabelValues("duplicate").Inc()
		writeError(w, http.StatusBadRequest, "duplicate_redemption")
		return
	}

	redemptions.WithLabelValues("marked").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": "attendance marked"})
}

type facultyReportRequest struct {
	Subject   string `json:"subject"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (s *Server) handleFacultyReport(w http.ResponseWriter, r *http.Request) {
	claims := s.requireRole(w, r, auth.RoleFaculty)
	if claims == nil {
		return
	}
	facultyID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	var req facultyReportRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	from, to, err := parseDateRange(strings.TrimSpace(req.StartDate), strings.TrimSpace(req.EndDate))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}

	sessions, err := s.store.ListFacultySessions(r.Context(), facultyID, strings.TrimSpace(req.Subject), from, to)
	if err != nil {
		s.writeInternal(w, err)
		return
	}
	users, err := s.lookupAttendees(r.Context(), sessions)
	if err != nil {
		s.writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Faculty(sessions, users))
}

func (s *Server) handleMyAttendance(w http.ResponseWriter, r *http.Request) {
	claims := s.requireRole(w, r, auth.RoleStudent)
	if claims == nil {
		return
	}
	studentID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	subject := strings.TrimSpace(r.URL.Query().Get("subject"))
	sessions, err := s.store.ListStudentSessions(r.Context(), studentID, subject)
	if err != nil {
		s.writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.StudentSummary(sessions))
}

type rosterEntry struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

type sessionDetailResponse struct {
	SessionID string        `json:"sessionId"`
	Subject   string        `json:"subject"`
	ClassRoom string        `json:"classRoom"`
	Date      time.Time     `json:"date"`
	Status    string        `json:"status"`
	Students  []rosterEntry `json:"students"`
}

func (s *Server) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	sess, roster, ok := s.loadOwnedSession(w, r)
	if !ok {
		return
	}
	students := make([]rosterEntry, 0, len(roster))
	for _, user := range roster {
		students = append(students, rosterEntry{
			StudentID: user.ID.Hex(),
			Name:      user.Name,
			Email:     user.Email,
		})
	}
	writeJSON(w, http.StatusOK, sessionDetailResponse{
		SessionID: sess.ID.Hex(),
		Subject:   sess.Subject,
		ClassRoom: sess.ClassRoom,
		Date:      sess.CreatedAt,
		Status:    string(sess.Status),
		Students:  students,
	})
}

func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	sess, roster, ok := s.loadOwnedSession(w, r)
	if !ok {
		return
	}

	workbook, err := export.Workbook(sess, roster)
	if err != nil {
		s.writeInternal(w, err)
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "attendance-"+sess.ID.Hex()+".xlsx"))
	w.WriteHeader(http.StatusOK)
	if err := workbook.Write(w); err != nil {
		log.Printf("export write error for %s: %v", sess.ID.Hex(), err)
	}
}

// loadOwnedSession resolves the path session and its roster for the calling
// faculty member, writing the failure response itself when ok is false.
// Existence is checked before ownership so a foreign faculty gets forbidden,
// not not-found, and expired sessions resolve normally. The roster keeps
// attendee order; students whose user document is missing keep a bare entry.
func (s *Server) loadOwnedSession(w http.ResponseWriter, r *http.Request) (*db.AttendanceSession, []db.User, bool) {
	claims := s.requireRole(w, r, auth.RoleFaculty)
	if claims == nil {
		return nil, nil, false
	}
	facultyID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return nil, nil, false
	}

	sessionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id")
		return nil, nil, false
	}

	sess, err := s.store.GetSession(r.Context(), sessionID)
	if errors.Is(err, db.ErrNoSession) {
		writeError(w, http.StatusNotFound, "session_not_found")
		return nil, nil, false
	}
	if err != nil {
		s.writeInternal(w, err)
		return nil, nil, false
	}
	if sess.FacultyID != facultyID {
		writeError(w, http.StatusForbidden, "forbidden")
		return nil, nil, false
	}

	users, err := s.store.FindUsersByIDs(r.Context(), sess.Attendees)
	if err != nil {
		s.writeInternal(w, err)
		return nil, nil, false
	}
	byID := make(map[primitive.ObjectID]db.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	roster := make([]db.User, 0, len(sess.Attendees))
	for _, studentID := range sess.Attendees {
		entry := db.User{ID: studentID}
		if user, ok := byID[studentID]; ok {
			entry = user
		}
		roster = append(roster, entry)
	}
	return sess, roster, true
}

func (s *Server) lookupAttendees(ctx context.Context, sessions []db.AttendanceSession) (map[primitive.ObjectID]db.User, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, sess := range sessions {
		for _, studentID := range sess.Attendees {
			if _, ok := seen[studentID]; ok {
				continue
			}
			seen[studentID] = struct{}{}
			ids = append(ids, studentID)
		}
	}
	users, err := s.store.FindUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]db.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, nil
}
