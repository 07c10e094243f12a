// Package server implements the web attach point of SPEC_FULL.md §4.9: a
// Gin HTTP server exposing a read-only session snapshot and a WebSocket
// bridge into one Interaction's Job, adapted from the teacher's own
// PTY-over-WebSocket bridge.
package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"bite/internal/session"
	"bite/internal/system"
	appver "bite/internal/version"
)

// Server serves the debug web terminal attach point over a Session.
type Server struct {
	Addr    string
	Session *session.Session
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	mountAPI(r, s.Session)

	srv := &http.Server{Addr: s.Addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	system.Logger.Info("webui server listening", "addr", s.Addr)
	return srv.ListenAndServe()
}

// OpenBrowser tries to open a URL in the system browser.
func OpenBrowser(url string) error {
	var cmd string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}
	return runCmd(cmd, args...)
}

func mountAPI(r *gin.Engine, sess *session.Session) {
	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": appver.AppVersion})
	})
	api.GET("/session/interactions", func(c *gin.Context) {
		c.JSON(http.StatusOK, interactionsSnapshot(sess))
	})
	api.GET("/session/attach", func(c *gin.Context) {
		terminalWSHandler(sess, c.Writer, c.Request)
	})
}
