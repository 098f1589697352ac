// Package tooltest builds fully wired servers for tool handler tests.
package tooltest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/tb0hdan/kmu-curator/pkg/cache"
	"github.com/tb0hdan/kmu-curator/pkg/metrics"
	"github.com/tb0hdan/kmu-curator/pkg/moderation"
	"github.com/tb0hdan/kmu-curator/pkg/ranking"
	"github.com/tb0hdan/kmu-curator/pkg/relevance"
	"github.com/tb0hdan/kmu-curator/pkg/server"
	"github.com/tb0hdan/kmu-curator/pkg/storage"
)

// NewServer returns a server backed by a temp-file SQLite database. It is shut
// down when the test ends.
func NewServer(t *testing.T) *server.Server {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.Config{
		DatabasePath: filepath.Join(t.TempDir(), "tools-test.db"),
	})
	require.NoError(t, err)

	logger := zerolog.Nop()
	m := metrics.New(prometheus.NewRegistry())
	answers := cache.New(store, logger, m)
	workflow := moderation.NewWorkflow(store, logger, m).InvalidateOnChange(answers)
	responder := ranking.NewResponder(workflow, relevance.NewScorer(relevance.DefaultWeights()), answers, logger, m)

	srv := server.NewServer(&mcp.Implementation{Name: "test-server", Version: "1.0.0"}, server.Deps{
		Storage:   store,
		Workflow:  workflow,
		Responder: responder,
		Answers:   answers,
		Metrics:   m,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return srv
}

// Text returns the first text content of a tool result.
func Text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return text.Text
}
