package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps net/http's server lifecycle the way cmd/server.go's
// wiring expects (server.NewHTTP / Run / Shutdown), a shape the retrieval
// pack referenced from internal/http/server but never carried a source
// file for, so authored fresh.
type Server struct {
	logs *zap.SugaredLogger
	http *http.Server
}

func NewServer(logger *zap.SugaredLogger, handler http.Handler, port string) *Server {
	return &Server{
		logs: logger,
		http: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Run starts the server in a background goroutine and returns a channel
// that receives its terminal error (http.ErrServerClosed on a clean
// Shutdown).
func (s *Server) Run() <-chan error {
	errChan := make(chan error, 1)
	go func() {
		s.logs.Infow("http server listening", "addr", s.http.Addr)
		errChan <- s.http.ListenAndServe()
	}()
	return errChan
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
