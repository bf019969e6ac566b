// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package server

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/rsvp/internal/db"
	"github.com/quixsi/rsvp/internal/model"
)

// Identity is the session and sign-in surface the HTTP layer relies on.
type Identity interface {
	BeginLogin(http.ResponseWriter, *http.Request) (string, error)
	CompleteLogin(http.ResponseWriter, *http.Request) (*model.User, error)
	CurrentUser(*http.Request) (*model.User, error)
	Logout(http.ResponseWriter, *http.Request) error
}

func NewServer(
	serviceName string,
	staticDir string,
	gStore db.GuestStore,
	identity Identity,
) *Server {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		logger:      slog.Default().WithGroup("http"),
		serviceName: serviceName,
		staticDir:   staticDir,
		gStore:      gStore,
		identity:    identity,
	}
	s.mux = s.routes()
	return s
}

type Server struct {
	serviceName string
	staticDir   string
	logger      *slog.Logger
	gStore      db.GuestStore
	identity    Identity
	mux         *gin.Engine
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() *gin.Engine {
	mux := gin.New()

	middlewares := []gin.HandlerFunc{
		sloggin.NewWithConfig(s.logger,
			sloggin.Config{
				DefaultLevel:     slog.LevelInfo,
				ClientErrorLevel: slog.LevelWarn,
				ServerErrorLevel: slog.LevelError,
			},
		),
		gin.Recovery(), otelgin.Middleware(s.serviceName), slogAddTraceAttributes,
		cors.Default(),
	}
	mux.Use(middlewares...)

	guestHandler := NewGuestHandler(s.gStore)
	authHandler := NewAuthHandler(s.identity)

	api := mux.Group("/api")
	api.GET("/auth/google", authHandler.Login)
	api.GET("/auth/google/callback", authHandler.Callback)

	protected := api.Group("", requireAuth(s.identity))
	protected.GET("/guests", guestHandler.List)
	protected.POST("/guests", guestHandler.Create)
	protected.DELETE("/guests/:id", guestHandler.Delete)
	protected.GET("/auth/user", authHandler.User)
	protected.POST("/auth/logout", authHandler.Logout)

	mux.NoRoute(s.fallback)

	return mux
}

// fallback hands every non API GET to the single page app when a static
// directory is configured.
func (s *Server) fallback(c *gin.Context) {
	p := c.Request.URL.Path
	if s.staticDir == "" || p == "/api" || strings.HasPrefix(p, "/api/") ||
		(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		notFound(c)
		return
	}

	name := filepath.Join(s.staticDir, filepath.FromSlash(path.Clean("/"+p)))
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		c.File(name)
		return
	}
	c.File(filepath.Join(s.staticDir, "index.html"))
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Page not found"})
}

func slogAddTraceAttributes(c *gin.Context) {
	sloggin.AddCustomAttributes(c,
		slog.String("trace-id", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
	)
	sloggin.AddCustomAttributes(c,
		slog.String("span-id", trace.SpanFromContext(c.Request.Context()).SpanContext().SpanID().String()),
	)
	c.Next()
}
