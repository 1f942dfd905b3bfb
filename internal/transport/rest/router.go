package rest

import (
	"context"
	"fmt"
	"interviewroom/internal/service"
	"interviewroom/internal/transport/rest/handler"
	"interviewroom/internal/transport/rest/middleware"
	"interviewroom/internal/transport/ws"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const healthTimeout = 2 * time.Second

// Container holds all dependencies for the router
type Container struct {
	AuthService        *service.AuthService
	RoomService        *service.RoomService
	AdmissionService   *service.AdmissionService
	WSHandler          *ws.Handler
	CORSAllowedOrigins []string
	Logger             *slog.Logger
	// Ping checks the store on /health; nil skips the check
	Ping func(ctx context.Context) error
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	interviewHandler := handler.NewInterviewHandler(c.RoomService, c.AdmissionService, c.Logger)
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if c.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := c.Ping(ctx); err != nil {
				c.Logger.Warn("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws", c.WSHandler.ServeWS).Methods(http.MethodGet)

	interview := v1.PathPrefix("/interview").Subrouter()
	interview.Use(authMW.RequireUser)

	interview.HandleFunc("/create", interviewHandler.Create).Methods(http.MethodPost)
	interview.HandleFunc("/join", interviewHandler.Join).Methods(http.MethodPost)
	interview.HandleFunc("/assign-problem", interviewHandler.AssignProblem).Methods(http.MethodPost)
	interview.HandleFunc("/approve", interviewHandler.Approve).Methods(http.MethodPost)
	interview.HandleFunc("/reject", interviewHandler.Reject).Methods(http.MethodPost)
	interview.HandleFunc("/add-interviewer", interviewHandler.AddInterviewer).Methods(http.MethodPost)
	interview.HandleFunc("/end", interviewHandler.End).Methods(http.MethodPost)
	interview.HandleFunc("/{roomId}", interviewHandler.Status).Methods(http.MethodGet)
	interview.HandleFunc("/{roomId}/pending", interviewHandler.Pending).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(c.CORSAllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
	)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{c.Logger}),
	)

	return recovery(cors(r))
}

// recoveryLogger reports recovered panics through slog
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic recovered", "panic", fmt.Sprint(v...))
}
