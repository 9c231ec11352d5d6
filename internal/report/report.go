// Package report folds fetched session documents into per-subject attendance
// summaries. Aggregation happens in Go over the already-filtered rows rather
// than in a store pipeline; classroom-scale volumes keep that cheap.
package report

import (
	"math"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rollmark/attendance/internal/db"
)

type FacultyStudent struct {
	StudentID            string  `json:"studentId"`
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	AttendanceCount      int     `json:"attendanceCount"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

type FacultySubject struct {
	TotalSessions int              `json:"totalSessions"`
	Students      []FacultyStudent `json:"students"`
}

// Faculty aggregates a faculty member's sessions by subject. The denominator
// is the number of distinct UTC calendar dates with at least one session; a
// student's numerator counts sessions, not dates. Two same-day sessions
// therefore count once in the denominator while a student present at both
// counts twice, and percentages above 100 are possible. That asymmetry is a
// long-standing behavior consumers rely on; keep it.
func Faculty(sessions []db.AttendanceSession, users map[primitive.ObjectID]db.User) map[string]FacultySubject {
	type subjectAcc struct {
		dates  map[string]struct{}
		counts map[primitive.ObjectID]int
	}

	bySubject := make(map[string]*subjectAcc)
	for _, session := range sessions {
		acc, ok := bySubject[session.Subject]
		if !ok {
			acc = &subjectAcc{
				dates:  make(map[string]struct{}),
				counts: make(map[primitive.ObjectID]int),
			}
			bySubject[session.Subject] = acc
		}
		acc.dates[session.CreatedAt.UTC().Format("2006-01-02")] = struct{}{}
		for _, student := range session.Attendees {
			acc.counts[student]++
		}
	}

	result := make(map[string]FacultySubject, len(bySubject))
	for subject, acc := range bySubject {
		total := len(acc.dates)
		students := make([]FacultyStudent, 0, len(acc.counts))
		for studentID, count := range acc.counts {
			entry := FacultyStudent{
				StudentID:            studentID.Hex(),
				AttendanceCount:      count,
				AttendancePercentage: percentage(count, total),
			}
			if user, ok := users[studentID]; ok {
				entry.Name = user.Name
				entry.Email = user.Email
			}
			students = append(students, entry)
		}
		sort.Slice(students, func(i, j int) bool {
			if students[i].Name != students[j].Name {
				return students[i].Name < students[j].Name
			}
			return students[i].StudentID < students[j].StudentID
		})
		result[subject] = FacultySubject{TotalSessions: total, Students: students}
	}
	return result
}

type StudentSubject struct {
	TotalClasses         int     `json:"totalClasses"`
	Attended             int     `json:"attended"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

// StudentSummary aggregates the sessions a student redeemed, by subject. The
// input only ever contains sessions the student attended (there is no absence
// record), so attended always equals totalClasses and the percentage is
// always 100. A meaningful percentage would need an expected-roster source
// that does not exist in this data model.
func StudentSummary(sessions []db.AttendanceSession) map[string]StudentSubject {
	result := make(map[string]StudentSubject)
	for _, session := range sessions {
		entry := result[session.Subject]
		entry.TotalClasses++
		entry.Attended++
		entry.AttendancePercentage = percentage(entry.Attended, entry.TotalClasses)
		result[session.Subject] = entry
	}
	return result
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
