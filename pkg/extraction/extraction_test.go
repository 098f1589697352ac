package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

const sampleExtraction = `Here are the tools:
TOOL: Jasper | DESC: AI copywriting for marketing teams
TOOL: HubSpot AI | DESC: Marketing automation with AI assistance
Some commentary without a marker
TOOL: Copy.ai
TOOL:  | DESC: nameless
TOOL: Surfer SEO | optimizes content for search`

func TestParseToolLines(t *testing.T) {
	tools := ParseToolLines(sampleExtraction)

	require.Len(t, tools, 3)
	assert.Equal(t, ExtractedTool{ToolName: "Jasper", Description: "AI copywriting for marketing teams"}, tools[0])
	assert.Equal(t, "HubSpot AI", tools[1].ToolName)
	assert.Equal(t, "Surfer SEO", tools[2].ToolName)
	assert.Equal(t, "optimizes content for search", tools[2].Description)
}

func TestParseToolLines_DropsOverlongNames(t *testing.T) {
	text := "TOOL: " + strings.Repeat("n", 60) + " | DESC: too long\nTOOL: Ok | DESC: fine"

	tools := ParseToolLines(text)

	require.Len(t, tools, 1)
	assert.Equal(t, "Ok", tools[0].ToolName)
}

func TestParseToolLines_RepeatedMarkers(t *testing.T) {
	tools := ParseToolLines("TOOL: TOOL: Fireflies.ai | DESC: DESC: meeting notes")

	require.Len(t, tools, 1)
	assert.Equal(t, ExtractedTool{ToolName: "Fireflies.ai", Description: "meeting notes"}, tools[0])
}

func TestParseToolLines_CapsCount(t *testing.T) {
	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, "TOOL: Tool"+string(rune('A'+i))+" | DESC: d")
	}

	assert.Len(t, ParseToolLines(strings.Join(lines, "\n")), types.MaxExtractedTools)
}

func TestParseToolLines_Empty(t *testing.T) {
	assert.Empty(t, ParseToolLines(""))
	assert.Empty(t, ParseToolLines("no tools here"))
}

func TestPlan_FromExtraction(t *testing.T) {
	results := []SearchResult{
		{Title: "Top 10 marketing AI", URL: "https://example.com/top10"},
		{Title: "Other", URL: "https://example.com/other"},
	}

	reqs := Plan("best AI marketing tools", types.Marketing, sampleExtraction, results)

	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.Equal(t, "https://example.com/top10", r.SourceURL)
		assert.Equal(t, types.ProvenanceLLMExtracted, r.ProvenanceNote)
		assert.Equal(t, types.Marketing, r.Department)
		assert.Equal(t, "best AI marketing tools", r.Query)
	}
	assert.Equal(t, "Jasper", reqs[0].ToolName)
}

func TestPlan_FromExtractionWithoutResults(t *testing.T) {
	reqs := Plan("q", types.General, "TOOL: Claude | DESC: assistant", nil)

	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].SourceURL)
}

func TestPlan_Fallback(t *testing.T) {
	results := []SearchResult{
		{Title: strings.Repeat("Long Title ", 10), URL: "https://a.example", Snippet: "snippet a"},
		{Title: "", URL: "https://b.example", Snippet: "snippet b"},
		{Title: "C", URL: "https://c.example"},
		{Title: "D", URL: "https://d.example"},
	}

	reqs := Plan("q", types.HR, "the model said nothing useful", results)

	require.Len(t, reqs, types.MaxFallbackResults)
	assert.LessOrEqual(t, len([]rune(reqs[0].ToolName)), types.FallbackTitleLength)
	assert.Equal(t, "snippet a", reqs[0].Description)
	assert.Equal(t, "Unknown", reqs[1].ToolName)
	assert.Equal(t, types.ProvenanceDirectScrape, reqs[2].ProvenanceNote)
	assert.Equal(t, "https://c.example", reqs[2].SourceURL)
}

func TestPlan_Nothing(t *testing.T) {
	assert.Empty(t, Plan("q", types.HR, "", nil))
}

func TestCountMentions(t *testing.T) {
	pages := []SearchResult{
		{FullText: "ChatGPT and Jasper lead the market. Many teams use chatgpt daily."},
		{FullText: "Jasper, copy.ai and ChatGPT. Gemini is new; Geminis is not a tool."},
	}

	mentions := CountMentions(pages, nil)

	require.Len(t, mentions, 4)
	assert.Equal(t, Mention{ToolName: "ChatGPT", Count: 3}, mentions[0])
	assert.Equal(t, Mention{ToolName: "Jasper", Count: 2}, mentions[1])
	assert.Equal(t, Mention{ToolName: "Copy.ai", Count: 1}, mentions[2])
	assert.Equal(t, Mention{ToolName: "Gemini", Count: 1}, mentions[3])
}

func TestCountMentions_CustomList(t *testing.T) {
	pages := []SearchResult{{FullText: "Intercom beats Zendesk? Intercom!"}}

	mentions := CountMentions(pages, []string{"Zendesk", "Intercom", "Drift"})

	require.Len(t, mentions, 2)
	assert.Equal(t, "Intercom", mentions[0].ToolName)
	assert.Equal(t, 2, mentions[0].Count)
}

func TestKnownPatternsPrecompiled(t *testing.T) {
	require.Len(t, knownPatterns, len(KnownTools))
	for i, p := range knownPatterns {
		assert.Equal(t, KnownTools[i], p.name)
		assert.True(t, p.pattern.MatchString(strings.ToLower("try "+KnownTools[i]+" today")), p.name)
	}
}
