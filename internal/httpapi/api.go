// Package httpapi is the HTTP boundary: it decodes requests, calls the
// services and maps their results onto status codes.
package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"bugTracker/internal/metrics"
	"bugTracker/internal/service"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the API to its collaborators. Metrics and Log may be nil.
type Options struct {
	Comments  *service.CommentService
	Bugs      *service.BugService
	Projects  *service.ProjectService
	Users     *service.UserService
	Store     Pinger
	Metrics   *metrics.Metrics
	Log       logrus.FieldLogger
	JWTSecret string
	Version   string
}

// API holds the handlers.
type API struct {
	comments  *service.CommentService
	bugs      *service.BugService
	projects  *service.ProjectService
	users     *service.UserService
	store     Pinger
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
	jwtSecret string
	version   string
}

func New(opts Options) *API {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &API{
		comments:  opts.Comments,
		bugs:      opts.Bugs,
		projects:  opts.Projects,
		users:     opts.Users,
		store:     opts.Store,
		metrics:   opts.Metrics,
		log:       log.WithField("component", "http"),
		jwtSecret: opts.JWTSecret,
		version:   opts.Version,
	}
}

// Router builds the route table.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(a.log))
	if a.metrics != nil {
		r.Use(metricsMiddleware(a.metrics))
		r.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})

	r.HandleFunc("/", a.index).Methods(http.MethodGet)
	r.HandleFunc("/healthz", a.healthz).Methods(http.MethodGet)

	c := r.PathPrefix("/comments").Subrouter()
	c.HandleFunc("", a.listComments).Methods(http.MethodGet)
	c.HandleFunc("", a.createComment).Methods(http.MethodPost)
	c.HandleFunc("/bug/{bugId}", a.listCommentsByBug).Methods(http.MethodGet)
	c.HandleFunc("/bug/{bugId}", a.deleteCommentsByBug).Methods(http.MethodDelete)
	c.HandleFunc("/user/{userId}", a.listCommentsByUser).Methods(http.MethodGet)
	c.HandleFunc("/{id}", a.getComment).Methods(http.MethodGet)
	c.HandleFunc("/{id}", a.updateComment).Methods(http.MethodPut)
	c.HandleFunc("/{id}", a.deleteComment).Methods(http.MethodDelete)

	b := r.PathPrefix("/bugs").Subrouter()
	b.HandleFunc("", a.listBugs).Methods(http.MethodGet)
	b.HandleFunc("", a.createBug).Methods(http.MethodPost)
	b.HandleFunc("/project/{projectId}", a.listBugsByProject).Methods(http.MethodGet)
	b.HandleFunc("/assignee/{userId}", a.listBugsByAssignee).Methods(http.MethodGet)
	b.HandleFunc("/reporter/{userId}", a.listBugsByReporter).Methods(http.MethodGet)
	b.HandleFunc("/{id}/comments", a.listCommentsOnBug).Methods(http.MethodGet)
	b.HandleFunc("/{id}", a.getBug).Methods(http.MethodGet)
	b.HandleFunc("/{id}", a.updateBug).Methods(http.MethodPut)
	b.HandleFunc("/{id}", a.deleteBug).Methods(http.MethodDelete)

	p := r.PathPrefix("/projects").Subrouter()
	p.HandleFunc("", a.listProjects).Methods(http.MethodGet)
	p.HandleFunc("", a.createProject).Methods(http.MethodPost)
	p.HandleFunc("/creator/{userId}", a.listProjectsByCreator).Methods(http.MethodGet)
	p.HandleFunc("/{id}", a.getProject).Methods(http.MethodGet)
	p.HandleFunc("/{id}", a.updateProject).Methods(http.MethodPut)
	p.HandleFunc("/{id}", a.deleteProject).Methods(http.MethodDelete)

	u := r.PathPrefix("/users").Subrouter()
	u.HandleFunc("", a.listUsers).Methods(http.MethodGet)
	u.HandleFunc("/register", a.register).Methods(http.MethodPost)
	u.HandleFunc("/login", a.login).Methods(http.MethodPost)
	u.Handle("/profile", a.requireUser(http.HandlerFunc(a.getProfile))).Methods(http.MethodGet)
	u.Handle("/profile", a.requireUser(http.HandlerFunc(a.updateProfile))).Methods(http.MethodPut)
	u.Handle("/profile", a.requireUser(http.HandlerFunc(a.deleteProfile))).Methods(http.MethodDelete)
	u.Handle("/change-password", a.requireUser(http.HandlerFunc(a.changePassword))).Methods(http.MethodPut)

	return r
}

// NewServer returns an http.Server for h with conservative timeouts.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (a *API) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Bug Tracker API is running",
		"version": a.version,
		"endpoints": map[string]string{
			"bugs":     "/bugs",
			"comments": "/comments",
			"projects": "/projects",
			"users":    "/users",
		},
	})
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	if a.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.store.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
