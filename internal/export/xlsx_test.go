package export

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rollmark/attendance/internal/db"
)

func TestWorkbookLayout(t *testing.T) {
	session := &db.AttendanceSession{
		ID:        primitive.NewObjectID(),
		Subject:   "CS101",
		ClassRoom: "A1",
		Status:    db.StatusExpired,
		CreatedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}
	roster := []db.User{
		{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com"},
		{ID: primitive.NewObjectID(), Name: "Grace", Email: "grace@example.com"},
	}

	f, err := Workbook(session, roster)
	if err != nil {
		t.Fatalf("workbook error: %v", err)
	}
	defer f.Close()

	cell := func(ref string) string {
		t.Helper()
		value, err := f.GetCellValue("Attendance", ref)
		if err != nil {
			t.Fatalf("cell %s: %v", ref, err)
		}
		return value
	}

	if cell("A1") != "Attendance Report" {
		t.Fatalf("unexpected title: %q", cell("A1"))
	}
	if cell("A3") != "Subject" || cell("B3") != "CS101" {
		t.Fatalf("unexpected subject row: %q %q", cell("A3"), cell("B3"))
	}
	if cell("B4") != "A1" {
		t.Fatalf("unexpected classroom: %q", cell("B4"))
	}
	if cell("B5") != "2026-03-02 09:30" {
		t.Fatalf("unexpected date: %q", cell("B5"))
	}
	if cell("B6") != "expired" {
		t.Fatalf("unexpected status: %q", cell("B6"))
	}
	if cell("A8") != "Student List" {
		t.Fatalf("unexpected section header: %q", cell("A8"))
	}
	if cell("A9") != "Name" || cell("B9") != "Email" || cell("C9") != "Status" {
		t.Fatalf("unexpected column headers: %q %q %q", cell("A9"), cell("B9"), cell("C9"))
	}
	if cell("A10") != "Ada" || cell("C10") != "Present" {
		t.Fatalf("unexpected first student row: %q %q", cell("A10"), cell("C10"))
	}
	if cell("A11") != "Grace" || cell("B11") != "grace@example.com" {
		t.Fatalf("unexpected second student row: %q %q", cell("A11"), cell("B11"))
	}
}

func TestWorkbookEmptyRoster(t *testing.T) {
	session := &db.AttendanceSession{
		Subject:   "CS101",
		ClassRoom: "A1",
		Status:    db.StatusActive,
		CreatedAt: time.Now().UTC(),
	}

	f, err := Workbook(session, nil)
	if err != nil {
		t.Fatalf("workbook error: %v", err)
	}
	defer f.Close()

	value, err := f.GetCellValue("Attendance", "A10")
	if err != nil {
		t.Fatalf("cell error: %v", err)
	}
	if value != "" {
		t.Fatalf("expected no student rows, got %q", value)
	}
}
