package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sadaqat12/snapconnect/internal/identity"
	"github.com/sadaqat12/snapconnect/internal/lifecycle"
	"github.com/sadaqat12/snapconnect/internal/metrics"
	"github.com/sadaqat12/snapconnect/internal/ratelimit"
	"github.com/sadaqat12/snapconnect/internal/realtime/realtimeimpl"
	"github.com/sadaqat12/snapconnect/pkg/config"
	"github.com/sadaqat12/snapconnect/pkg/logger"
	"go.uber.org/fx"
)

// Streamer turns a request into a live event stream.
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request, subscribe realtimeimpl.SubscribeFunc) error
}

type Opts struct {
	fx.In

	LC        fx.Lifecycle
	Logger    logger.Logger
	Config    *config.Config
	Lifecycle lifecycle.Service
	Identity  identity.Client
	Limiter   ratelimit.Limiter
	Streamer  Streamer
	Metrics   *metrics.Metrics
}

type Server struct {
	lifecycle lifecycle.Service
	identity  identity.Client
	limiter   ratelimit.Limiter
	streamer  Streamer
	metrics   *metrics.Metrics
	config    *config.Config
	logger    logger.Logger

	router *mux.Router
}

func NewServer(opts Opts) *Server {
	s := &Server{
		lifecycle: opts.Lifecycle,
		identity:  opts.Identity,
		limiter:   opts.Limiter,
		streamer:  opts.Streamer,
		metrics:   opts.Metrics,
		config:    opts.Config,
		logger:    opts.Logger.WithComponent("HTTP"),
	}
	s.router = s.routes()
	return s
}

// New builds the server and binds it to the fx lifecycle.
func New(opts Opts) *Server {
	s := NewServer(opts)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.App.Port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.logger.Info("Starting server", "addr", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.logger.Error("Server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.logger.Info("Stopping server")
			return srv.Shutdown(ctx)
		},
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.healthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(s.authenticate)

	api.HandleFunc("/conversations", s.limited(s.openConversation)).Methods(http.MethodPost)
	api.HandleFunc("/snaps", s.limited(s.sendSnap)).Methods(http.MethodPost)
	api.HandleFunc("/messages", s.limited(s.sendMessage)).Methods(http.MethodPost)
	api.HandleFunc("/stories/entries", s.limited(s.postStory)).Methods(http.MethodPost)

	api.HandleFunc("/scopes/{scopeID}/items", s.listScope).Methods(http.MethodGet)
	api.HandleFunc("/scopes/{scopeID}/leave", s.limited(s.leaveScope)).Methods(http.MethodPost)
	api.HandleFunc("/scopes/{scopeID}/events", s.streamScope).Methods(http.MethodGet)

	api.HandleFunc("/items/{itemID}/view", s.limited(s.markViewed)).Methods(http.MethodPost)
	api.HandleFunc("/items/{itemID}/save", s.limited(s.toggleSaved)).Methods(http.MethodPost)
	api.HandleFunc("/items/{itemID}/read", s.limited(s.markRead)).Methods(http.MethodPost)

	api.HandleFunc("/admin/sweep", s.sweep).Methods(http.MethodPost)

	return r
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}
