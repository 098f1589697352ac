package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tb0hdan/kmu-curator/pkg/moderation"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

type recordingIngester struct {
	reqs []moderation.IngestRequest
}

func (r *recordingIngester) IngestAll(_ context.Context, reqs []moderation.IngestRequest) []string {
	r.reqs = append(r.reqs, reqs...)
	ids := make([]string, len(reqs))
	for i := range reqs {
		ids[i] = reqs[i].ToolName
	}
	return ids
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 96, c.Len())
	require.Len(t, c.Departments, len(types.Departments()))
	for _, section := range c.Departments {
		assert.True(t, section.Department.Valid(), "department %q", section.Department)
		assert.NotEmpty(t, section.Tools)
	}
}

func TestDefault_CustomerSuccessCanonical(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	found := false
	for _, section := range c.Departments {
		if section.Department == types.CustomerSuccess {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParse_InvalidDepartment(t *testing.T) {
	_, err := Parse([]byte("departments:\n  - department: Finance\n    tools: []\n"))
	assert.ErrorIs(t, err, types.ErrInvalidDepartment)
}

func TestParse_MissingName(t *testing.T) {
	_, err := Parse([]byte("departments:\n  - department: HR\n    tools:\n      - url: https://x\n"))
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("departments: [::"))
	assert.Error(t, err)
}

func TestParse_NormalizesDepartment(t *testing.T) {
	c, err := Parse([]byte("departments:\n  - department: customersuccess\n    tools:\n      - name: Ada\n"))
	require.NoError(t, err)
	assert.Equal(t, types.CustomerSuccess, c.Departments[0].Department)
}

func TestSeed(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	ingester := &recordingIngester{}

	ids := c.Seed(context.Background(), ingester)

	assert.Len(t, ids, 96)
	first := ingester.reqs[0]
	assert.Equal(t, "Jasper", first.ToolName)
	assert.Equal(t, "AI tools for Marketing", first.Query)
	assert.Equal(t, types.ProvenanceCuratedList, first.ProvenanceNote)
	assert.Equal(t, "https://www.jasper.ai", first.SourceURL)
}
