package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rollmark/attendance/internal/auth"
	"rollmark/attendance/internal/config"
	"rollmark/attendance/internal/db"
	"rollmark/attendance/internal/session"
)

// Store is the slice of the database layer the handlers need. *db.Store
// satisfies it; tests substitute a fake.
type Store interface {
	CreateSession(ctx context.Context, session *db.AttendanceSession) (primitive.ObjectID, error)
	GetSession(ctx context.Context, id primitive.ObjectID) (*db.AttendanceSession, error)
	FindSessionByCode(ctx context.Context, code string, notBefore time.Time) (*db.AttendanceSession, error)
	AddAttendee(ctx context.Context, code string, student primitive.ObjectID, notBefore time.Time) (bool, error)
	ExpireSession(ctx context.Context, id primitive.ObjectID) error
	ListFacultySessions(ctx context.Context, faculty primitive.ObjectID, subject string, from, to *time.Time) ([]db.AttendanceSession, error)
	ListStudentSessions(ctx context.Context, student primitive.ObjectID, subject string) ([]db.AttendanceSession, error)
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]db.User, error)
}

type Server struct {
	cfg       config.Config
	store     Store
	scheduler *session.ExpiryScheduler
	validate  *validator.Validate
}

func NewServer(cfg config.Config, store Store, scheduler *session.ExpiryScheduler) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		scheduler: scheduler,
		validate:  validator.New(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "attendance service running",
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/attendance", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/generate-qr", s.handleGenerateQR)
		r.Post("/mark", s.handleMark)
		r.Post("/report", s.handleFacultyReport)
		r.Get("/my-attendance", s.handleMyAttendance)
		r.Get("/session/{sessionId}", s.handleSessionDetail)
		r.Get("/export/{sessionId}", s.handleExportSession)
	})

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

// requireRole writes the failure response itself and returns nil claims when
// the caller must bail out.
func (s *Server) requireRole(w http.ResponseWriter, r *http.Request, role string) *auth.Claims {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return nil
	}
	if claims.UserType != role {
		writeError(w, http.StatusForbidden, "forbidden")
		return nil
	}
	return claims
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeInternal reports server_error, echoing the underlying detail only in
// development mode.
func (s *Server) writeInternal(w http.ResponseWriter, err error) {
	if s.cfg.IsDevelopment() && err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "server_error",
			"detail": err.Error(),
		})
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error")
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// parseDateRange turns optional YYYY-MM-DD bounds into an inclusive range on
// creation timestamps: [start, end+24h).
func parseDateRange(startDate, endDate string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if startDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", startDate, time.UTC)
		if err != nil {
			return nil, nil, err
		}
		from = &parsed
	}
	if endDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", endDate, time.UTC)
		if err != nil {
			return nil, nil, err
		}
		upper := parsed.Add(24 * time.Hour)
		to = &upper
	}
	return from, to, nil
}
