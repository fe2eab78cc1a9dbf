package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/penwyp/go-eld-planner/internal/analyzer"
	"github.com/penwyp/go-eld-planner/internal/application/planner"
	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/data/source"
	"github.com/penwyp/go-eld-planner/internal/export"
	"github.com/penwyp/go-eld-planner/internal/util"
)

//go:embed all:web
var webFS embed.FS

const (
	maxRequestBody  = 1 << 20
	shutdownTimeout = 5 * time.Second

	exportFailedMessage = "Failed to generate PDF. Please try again."
	exportBusyMessage   = "An export is already in progress for this trip"
)

// Backend is what the dashboard reads and drives
type Backend interface {
	Snapshot() *planner.Snapshot
	Status() (loading bool, message string, lastErr error)
	Trip(ctx context.Context, id int) (*model.Trip, error)
	Timelines(ctx context.Context, id int) ([]model.DailyTimeline, error)
	Analysis(ctx context.Context, id int) (analyzer.TripAnalysis, error)
	CycleOverview(ctx context.Context, id int) ([]analyzer.CycleDay, error)
	Logs(filter analyzer.LogFilter) []analyzer.LogRow
	Create(ctx context.Context, req model.TripRequest) (*model.Trip, error)
	Export(ctx context.Context, id int, saver export.Saver) (export.Result, error)
}

// Server holds the Gin engine and dependencies for the web dashboard.
type Server struct {
	engine  *gin.Engine
	backend Backend
	hub     *Hub
	addr    string
}

// New creates the dashboard server
func New(backend Backend, hub *Hub, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:  engine,
		backend: backend,
		hub:     hub,
		addr:    addr,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the engine, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	webContent, _ := fs.Sub(webFS, "web")
	s.engine.GET("/", serveEmbedded(webContent, "index.html", "text/html; charset=utf-8"))

	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	api.GET("/trips", s.handleListTrips)
	api.POST("/trips", s.handleCreateTrip)
	api.GET("/trips/:id", s.handleGetTrip)
	api.GET("/trips/:id/timeline", s.handleTimeline)
	api.GET("/trips/:id/analysis", s.handleAnalysis)
	api.GET("/trips/:id/export", s.handleExport)
	api.GET("/logs", s.handleLogs)

	s.engine.GET("/ws", s.handleWebSocket)
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		util.LogInfof("Dashboard listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve dashboard: %w", err)
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown dashboard: %w", err)
	}
	return nil
}

// Notify tells websocket clients that trips were reloaded
func (s *Server) Notify(snap *planner.Snapshot) {
	s.hub.Broadcast(Message{Type: MessageTripsUpdated, Trips: len(snap.Trips), LoadedAt: snap.LoadedAt})
}

// serveEmbedded reads a file from the embedded FS and writes it with the given content type.
func serveEmbedded(webContent fs.FS, name string, contentType string) gin.HandlerFunc {
	data, err := fs.ReadFile(webContent, name)
	return func(c *gin.Context) {
		if err != nil {
			c.String(http.StatusNotFound, "file not found: %s", name)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		util.LogDebug("http request",
			util.F("method", c.Request.Method),
			util.F("path", c.Request.URL.Path),
			util.F("status", c.Writer.Status()),
			util.F("took", time.Since(start).String()))
	}
}

// writeJSON encodes with sonic rather than gin's default encoder
func writeJSON(c *gin.Context, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		util.LogErrorf("encode response: %v", err)
		c.Data(http.StatusInternalServerError, "application/json; charset=utf-8", []byte(`{"error":"internal error"}`))
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

func writeError(c *gin.Context, status int, message string) {
	writeJSON(c, status, gin.H{"error": message})
}

// writeSourceError maps trip source errors onto HTTP statuses
func writeSourceError(c *gin.Context, err error) {
	var apiErr *source.APIError
	switch {
	case errors.Is(err, source.ErrTripNotFound):
		writeError(c, http.StatusNotFound, "trip not found")
	case errors.Is(err, source.ErrReadOnly):
		writeError(c, http.StatusMethodNotAllowed, err.Error())
	case errors.As(err, &apiErr):
		writeError(c, http.StatusBadGateway, apiErr.Error())
	default:
		util.LogErrorf("request %s failed: %v", c.Request.URL.Path, err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func tripID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("invalid trip id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.backend.Snapshot()
	loading, message, lastErr := s.backend.Status()

	body := gin.H{
		"status":      "ok",
		"trips":       len(snap.Trips),
		"loaded_at":   snap.LoadedAt,
		"loading":     loading,
		"subscribers": s.hub.Subscribers(),
		"dropped":     s.hub.Dropped(),
	}
	if message != "" {
		body["message"] = message
	}
	if lastErr != nil {
		body["last_error"] = lastErr.Error()
	}
	writeJSON(c, http.StatusOK, body)
}

func (s *Server) handleListTrips(c *gin.Context) {
	writeJSON(c, http.StatusOK, s.backend.Snapshot().Trips)
}

func (s *Server) handleGetTrip(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	trip, err := s.backend.Trip(c.Request.Context(), id)
	if err != nil {
		writeSourceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, trip)
}

func (s *Server) handleTimeline(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	days, err := s.backend.Timelines(ctx, id)
	if err != nil {
		writeSourceError(c, err)
		return
	}
	cycle, err := s.backend.CycleOverview(ctx, id)
	if err != nil {
		writeSourceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"trip_id": id, "days": days, "cycle": cycle})
}

func (s *Server) handleAnalysis(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	analysis, err := s.backend.Analysis(c.Request.Context(), id)
	if err != nil {
		writeSourceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, analysis)
}

func (s *Server) handleLogs(c *gin.Context) {
	filter := analyzer.LogFilter{Date: c.Query("date")}
	if trip := c.Query("trip"); trip != "" && trip != "all" {
		id, err := strconv.Atoi(trip)
		if err != nil {
			writeError(c, http.StatusBadRequest, fmt.Sprintf("invalid trip filter %q", trip))
			return
		}
		filter.TripID = id
	}

	rows := s.backend.Logs(filter)
	writeJSON(c, http.StatusOK, gin.H{
		"logs":   rows,
		"totals": analyzer.Totals(rows),
		"groups": analyzer.GroupByTrip(rows),
	})
}

func (s *Server) handleCreateTrip(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
	if err != nil {
		writeError(c, http.StatusBadRequest, "cannot read request body")
		return
	}

	var req model.TripRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := s.backend.Create(c.Request.Context(), req)
	if err != nil {
		writeSourceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, trip)
}

// handleExport streams the PDF as an attachment. Capture failures get a
// generic retryable message; the details only go to the log.
func (s *Server) handleExport(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}

	var pdf []byte
	saver := export.SaverFunc(func(filename string, data []byte) (string, error) {
		pdf = data
		return "attachment:" + filename, nil
	})

	result, err := s.backend.Export(c.Request.Context(), id, saver)
	if err != nil {
		var captureErr *export.CaptureError
		switch {
		case errors.Is(err, export.ErrExportInProgress):
			writeError(c, http.StatusConflict, exportBusyMessage)
		case errors.As(err, &captureErr):
			writeError(c, http.StatusInternalServerError, exportFailedMessage)
		case errors.Is(err, source.ErrTripNotFound):
			writeError(c, http.StatusNotFound, "trip not found")
		default:
			util.LogErrorf("export trip %d: %v", id, err)
			writeError(c, http.StatusInternalServerError, exportFailedMessage)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	c.Header("X-Export-Pages", strconv.Itoa(result.Pages))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
