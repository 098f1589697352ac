package server

import (
	"context"
	"errors"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tb0hdan/kmu-curator/pkg/cache"
	"github.com/tb0hdan/kmu-curator/pkg/metrics"
	"github.com/tb0hdan/kmu-curator/pkg/moderation"
	"github.com/tb0hdan/kmu-curator/pkg/ranking"
	"github.com/tb0hdan/kmu-curator/pkg/storage"
)

// Deps are the services exposed to registered tools. Closers are released on
// Shutdown before the storage.
type Deps struct {
	Storage   storage.Storage
	Workflow  *moderation.Workflow
	Responder *ranking.Responder
	Answers   *cache.Cache
	Metrics   *metrics.Metrics
	Closers   []io.Closer
}

type Server struct {
	mcp.Server
	deps Deps
}

func NewServer(impl *mcp.Implementation, deps Deps) *Server {
	return &Server{
		Server: *mcp.NewServer(impl, nil),
		deps:   deps,
	}
}

func (s *Server) Storage() storage.Storage {
	return s.deps.Storage
}

func (s *Server) Workflow() *moderation.Workflow {
	return s.deps.Workflow
}

func (s *Server) Responder() *ranking.Responder {
	return s.deps.Responder
}

func (s *Server) Answers() *cache.Cache {
	return s.deps.Answers
}

func (s *Server) Metrics() *metrics.Metrics {
	return s.deps.Metrics
}

func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	for _, c := range s.deps.Closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.deps.Storage != nil {
		if err := s.deps.Storage.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
