package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/meetplan/internal/application/usecases"
	"github.com/example/meetplan/internal/auth"
	"github.com/example/meetplan/internal/domain/meeting"
	"github.com/example/meetplan/internal/infrastructure/calendarfile"
	"github.com/example/meetplan/internal/internaltypes"
)

//go:embed templates/*.html
var fs embed.FS

const maxBodyBytes = 1 << 20

type Server struct {
	// Auth is nil when the operator login is disabled.
	Auth *auth.Store

	Propose usecases.ProposeMeetings
	Free    usecases.FreePeriods

	// CalendarOptions are applied to every calendar built from a request.
	CalendarOptions []meeting.Option

	Logger  *zap.Logger
	Limiter *RateLimiter
}

type tmplData struct {
	Title string
	User  string
	Flash string

	CalendarA string
	CalendarB string
	Duration  string

	Submitted bool
	Result    usecases.Proposal
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	if s.Auth != nil {
		mux.HandleFunc("/login", s.handleLogin)
		mux.HandleFunc("/logout", s.handleLogout)
	}

	mux.Handle("/", s.protect(http.HandlerFunc(s.handleHome)))
	mux.Handle("/api/propose", s.protect(http.HandlerFunc(s.handleAPIPropose)))
	mux.Handle("/api/free", s.protect(http.HandlerFunc(s.handleAPIFree)))

	var h http.Handler = mux
	if s.Limiter != nil {
		h = s.Limiter.Middleware(h)
	}
	h = withAccessLog(s.logger(), h)
	return withRequestID(h)
}

func (s *Server) protect(h http.Handler) http.Handler {
	if s.Auth == nil {
		return h
	}
	return s.Auth.RequireAuth(h)
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, http.StatusOK, "templates/login.html", tmplData{Title: "Login"})
		return
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if err := s.Auth.Authenticate(username, password); err != nil {
			s.logger().Warn("login failed", zap.String("username", username), zap.String("request_id", RequestIDFromContext(r.Context())))
			s.render(w, http.StatusUnauthorized, "templates/login.html", tmplData{Title: "Login", Flash: "Invalid username/password"})
			return
		}
		if err := s.Auth.SetSession(w, r, username); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	user, _ := auth.UsernameFromContext(r.Context())
	data := tmplData{Title: "Propose meetings", User: user, Duration: calendarfile.FormatDuration(30)}

	switch r.Method {
	case http.MethodGet:
		s.render(w, http.StatusOK, "templates/propose.html", data)
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			status := http.StatusBadRequest
			if errors.As(err, new(*http.MaxBytesError)) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}
		data.CalendarA = r.FormValue("calendar_a")
		data.CalendarB = r.FormValue("calendar_b")
		data.Duration = strings.TrimSpace(r.FormValue("duration"))

		res, err := s.proposeFromText(r.Context(), data.CalendarA, data.CalendarB, data.Duration)
		if err != nil {
			if isBadInput(err) {
				data.Flash = err.Error()
				s.render(w, http.StatusBadRequest, "templates/propose.html", data)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Submitted = true
		data.Result = res
		s.render(w, http.StatusOK, "templates/propose.html", data)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) proposeFromText(ctx context.Context, docA, docB, duration string) (usecases.Proposal, error) {
	minutes, err := calendarfile.ParseDuration(duration)
	if err != nil {
		return usecases.Proposal{}, err
	}
	a, err := calendarfile.ParseJSON(docA, s.CalendarOptions...)
	if err != nil {
		return usecases.Proposal{}, err
	}
	b, err := calendarfile.ParseJSON(docB, s.CalendarOptions...)
	if err != nil {
		return usecases.Proposal{}, err
	}
	return s.Propose.Execute(ctx, a, b, minutes)
}

// isBadInput reports whether err was caused by the request rather than the
// server.
func isBadInput(err error) bool {
	for _, target := range []error{
		internaltypes.ErrInvalidCalendar,
		internaltypes.ErrInvalidDuration,
		internaltypes.ErrInvalidPeriod,
		internaltypes.ErrInvalidTimeFormat,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data tmplData) {
	t, err := template.ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func Start(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
