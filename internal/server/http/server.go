package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/wsauth/internal/logging"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewServer(address string, handler http.Handler, logger logging.Logger) *Server {
	return &Server{address: address, handler: handler, logger: logger.With("module", "http_server")}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
