// Package api serves loop status, device inventory, LED control and live
// event and log streams over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/loopthru/internal/devices"
	"github.com/smazurov/loopthru/internal/events"
	"github.com/smazurov/loopthru/internal/logging"
	"github.com/smazurov/loopthru/internal/version"
)

// Server is the status API.
type Server struct {
	api      huma.API
	handler  http.Handler
	http     *http.Server
	eventBus *events.Bus
	options  *Options
	logger   *slog.Logger
}

// NewServer builds the API. Routes whose source is nil in opts are left out.
func NewServer(opts *Options) *Server {
	if opts.ListDevices == nil {
		opts.ListDevices = devices.List
	}

	cfg := huma.DefaultConfig("loopthru API", version.String())
	cfg.Info.Description = "Status of the video loop-through and audio pass-through"
	cfg.Servers = []*huma.Server{} // relative URLs in the OpenAPI document
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {Type: "http", Scheme: "basic"},
	}

	mux := http.NewServeMux()
	s := &Server{
		api:      humago.New(mux, cfg),
		eventBus: opts.EventBus,
		options:  opts,
		logger:   logging.GetLogger("api"),
	}
	s.handler = defaultCORS.wrap(mux)
	s.http = &http.Server{Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}

	s.api.UseMiddleware(requestLogger(s.logger))
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		s.api.UseMiddleware(newBasicAuth(s.api, opts.AuthUsername, opts.AuthPassword).middleware)
	}
	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	s.registerSystemRoutes()
	s.registerStatusRoutes()
	s.registerDeviceRoutes()
	s.registerLEDRoutes()
	s.registerSystemdRoutes()
	s.registerSSERoutes()
	s.registerLogRoutes()
	s.registerMetricsRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on addr and serves until Stop. It returns nil after Stop.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves the API on ln until Stop.
func (s *Server) Serve(ln net.Listener) error {
	addr := ln.Addr().String()
	s.logger.Info("API server listening", "addr", addr, "docs", "http://"+addr+"/docs")
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes the listener and every open connection, SSE streams included.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")
	return s.http.Close()
}

// withAuth is the security requirement of protected operations.
func withAuth() []map[string][]string {
	return []map[string][]string{{"basicAuth": {}}}
}

// public marks an operation as reachable without credentials.
func public() []map[string][]string {
	return []map[string][]string{}
}
