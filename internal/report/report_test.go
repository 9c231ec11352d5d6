package report

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rollmark/attendance/internal/db"
)

var (
	studentX = primitive.NewObjectID()
	studentY = primitive.NewObjectID()
	faculty  = primitive.NewObjectID()
)

func session(subject string, createdAt time.Time, attendees ...primitive.ObjectID) db.AttendanceSession {
	return db.AttendanceSession{
		ID:        primitive.NewObjectID(),
		FacultyID: faculty,
		Subject:   subject,
		ClassRoom: "A1",
		Status:    db.StatusExpired,
		Attendees: attendees,
		CreatedAt: createdAt,
	}
}

func TestFacultySingleSession(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	users := map[primitive.ObjectID]db.User{
		studentX: {ID: studentX, Name: "Ada", Email: "ada@example.com"},
		studentY: {ID: studentY, Name: "Grace", Email: "grace@example.com"},
	}

	result := Faculty([]db.AttendanceSession{session("CS101", day, studentX, studentY)}, users)
	subject, ok := result["CS101"]
	if !ok {
		t.Fatalf("expected CS101 entry, got %v", result)
	}
	if subject.TotalSessions != 1 {
		t.Fatalf("expected totalSessions 1, got %d", subject.TotalSessions)
	}
	if len(subject.Students) != 2 {
		t.Fatalf("expected two students, got %d", len(subject.Students))
	}
	for _, student := range subject.Students {
		if student.AttendanceCount != 1 || student.AttendancePercentage != 100 {
			t.Fatalf("expected full attendance, got %+v", student)
		}
	}
	if subject.Students[0].Name != "Ada" || subject.Students[1].Name != "Grace" {
		t.Fatalf("expected students sorted by name, got %+v", subject.Students)
	}
	if subject.Students[0].Email != "ada@example.com" {
		t.Fatalf("expected resolved email, got %+v", subject.Students[0])
	}
}

// Two sessions on the same calendar date count once in the denominator but
// each feeds a present student's numerator, so the percentage exceeds 100.
func TestFacultySameDateDenominator(t *testing.T) {
	morning := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	afternoon := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	result := Faculty([]db.AttendanceSession{
		session("CS101", morning, studentX),
		session("CS101", afternoon, studentX),
	}, nil)

	subject := result["CS101"]
	if subject.TotalSessions != 1 {
		t.Fatalf("expected same-date sessions to count once, got %d", subject.TotalSessions)
	}
	if len(subject.Students) != 1 {
		t.Fatalf("expected one student, got %d", len(subject.Students))
	}
	student := subject.Students[0]
	if student.AttendanceCount != 2 {
		t.Fatalf("expected attendanceCount 2, got %d", student.AttendanceCount)
	}
	if student.AttendancePercentage != 200 {
		t.Fatalf("expected 200%%, got %v", student.AttendancePercentage)
	}
}

func TestFacultyPercentageRounding(t *testing.T) {
	days := []time.Time{
		time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
	}

	result := Faculty([]db.AttendanceSession{
		session("CS101", days[0], studentX),
		session("CS101", days[1]),
		session("CS101", days[2]),
	}, nil)

	student := result["CS101"].Students[0]
	if student.AttendancePercentage != 33.33 {
		t.Fatalf("expected 33.33, got %v", student.AttendancePercentage)
	}
}

func TestFacultyGroupsBySubject(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	result := Faculty([]db.AttendanceSession{
		session("CS101", day, studentX),
		session("MA102", day.Add(2*time.Hour), studentY),
	}, nil)

	if len(result) != 2 {
		t.Fatalf("expected two subjects, got %v", result)
	}
	if result["CS101"].TotalSessions != 1 || result["MA102"].TotalSessions != 1 {
		t.Fatalf("expected independent subject totals, got %v", result)
	}
}

func TestFacultyUnknownUserKeepsEntry(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	result := Faculty([]db.AttendanceSession{session("CS101", day, studentX)}, nil)
	student := result["CS101"].Students[0]
	if student.StudentID != studentX.Hex() {
		t.Fatalf("expected student id, got %+v", student)
	}
	if student.Name != "" || student.Email != "" {
		t.Fatalf("expected empty profile for unknown user, got %+v", student)
	}
}

// The student report is presence-only: sessions reach it only when the
// student redeemed them, so the percentage is always 100.
func TestStudentSummaryAlwaysFull(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	result := StudentSummary([]db.AttendanceSession{
		session("CS101", base, studentX),
		session("CS101", base.AddDate(0, 0, 1), studentX),
		session("MA102", base, studentX),
	})

	cs := result["CS101"]
	if cs.TotalClasses != 2 || cs.Attended != 2 || cs.AttendancePercentage != 100 {
		t.Fatalf("unexpected CS101 summary: %+v", cs)
	}
	ma := result["MA102"]
	if ma.TotalClasses != 1 || ma.Attended != 1 || ma.AttendancePercentage != 100 {
		t.Fatalf("unexpected MA102 summary: %+v", ma)
	}
}

func TestStudentSummaryEmpty(t *testing.T) {
	result := StudentSummary(nil)
	if len(result) != 0 {
		t.Fatalf("expected empty summary, got %v", result)
	}
}
