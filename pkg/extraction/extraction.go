// Package extraction turns search and language-model output into ingestion requests.
package extraction

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tb0hdan/kmu-curator/pkg/moderation"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

const (
	toolMarker = "TOOL:"
	descMarker = "DESC:"
)

// SearchResult is one fetched page from the search collaborator.
type SearchResult struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet,omitempty"`
	FullText string `json:"full_text,omitempty"`
}

// ExtractedTool is one tool named in an extraction response.
type ExtractedTool struct {
	ToolName    string `json:"tool_name"`
	Description string `json:"description"`
}

// ParseToolLines reads lines shaped "TOOL: <name> | DESC: <description>".
// Other lines, empty names and names of MaxToolNameLength runes or more are
// skipped; at most MaxExtractedTools are returned.
func ParseToolLines(text string) []ExtractedTool {
	var tools []ExtractedTool
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, toolMarker) || !strings.Contains(line, "|") {
			continue
		}
		parts := strings.Split(line, "|")
		name := strings.TrimSpace(strings.ReplaceAll(parts[0], toolMarker, ""))
		if name == "" || utf8.RuneCountInString(name) >= types.MaxToolNameLength {
			continue
		}
		desc := strings.TrimSpace(strings.ReplaceAll(parts[1], descMarker, ""))
		tools = append(tools, ExtractedTool{ToolName: name, Description: desc})
		if len(tools) == types.MaxExtractedTools {
			break
		}
	}
	return tools
}

// Plan builds the ingestion requests for one search run. Parsed tools win and
// cite the first result's URL; otherwise the top results are ingested as
// direct scrapes.
func Plan(query string, department types.Department, extractionText string, results []SearchResult) []moderation.IngestRequest {
	tools := ParseToolLines(extractionText)
	if len(tools) > 0 {
		sourceURL := ""
		if len(results) > 0 {
			sourceURL = results[0].URL
		}
		reqs := make([]moderation.IngestRequest, 0, len(tools))
		for _, tool := range tools {
			reqs = append(reqs, moderation.IngestRequest{
				Query:          query,
				Department:     department,
				Description:    tool.Description,
				ProvenanceNote: types.ProvenanceLLMExtracted,
				ToolName:       tool.ToolName,
				SourceURL:      sourceURL,
			})
		}
		return reqs
	}

	if len(results) > types.MaxFallbackResults {
		results = results[:types.MaxFallbackResults]
	}
	reqs := make([]moderation.IngestRequest, 0, len(results))
	for _, r := range results {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "Unknown"
		}
		reqs = append(reqs, moderation.IngestRequest{
			Query:          query,
			Department:     department,
			Description:    r.Snippet,
			ProvenanceNote: types.ProvenanceDirectScrape,
			ToolName:       types.Truncate(title, types.FallbackTitleLength),
			SourceURL:      r.URL,
		})
	}
	return reqs
}

// KnownTools are the names counted by CountMentions when no list is given.
var KnownTools = []string{
	"ChatGPT", "Jasper", "Copy.ai", "Midjourney", "DALL-E", "Stable Diffusion",
	"Claude", "Bard", "Gemini", "Llama", "Mistral", "Falcon", "Notion AI",
	"Grammarly", "Otter.ai", "Fireflies.ai", "Synthesia", "Descript", "Runway",
	"GitHub Copilot", "Tabnine", "Replit", "Hugging Face", "LangChain",
}

type mentionPattern struct {
	name    string
	pattern *regexp.Regexp
}

var knownPatterns = compileMentionPatterns(KnownTools)

func compileMentionPatterns(names []string) []mentionPattern {
	patterns := make([]mentionPattern, 0, len(names))
	for _, name := range names {
		patterns = append(patterns, mentionPattern{
			name:    name,
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(name)) + `\b`),
		})
	}
	return patterns
}

// Mention is how often a known tool is named across scraped pages.
type Mention struct {
	ToolName string `json:"tool_name"`
	Count    int    `json:"count"`
}

// CountMentions counts whole-word, case-insensitive mentions of known tools in
// the pages' full text. Results are ordered by count, then name.
func CountMentions(pages []SearchResult, known []string) []Mention {
	patterns := knownPatterns
	if len(known) > 0 {
		patterns = compileMentionPatterns(known)
	}

	var combined strings.Builder
	for _, p := range pages {
		combined.WriteString(p.FullText)
		combined.WriteString("\n")
	}
	text := strings.ToLower(combined.String())

	var mentions []Mention
	for _, p := range patterns {
		if n := len(p.pattern.FindAllStringIndex(text, -1)); n > 0 {
			mentions = append(mentions, Mention{ToolName: p.name, Count: n})
		}
	}

	sort.SliceStable(mentions, func(i, j int) bool {
		if mentions[i].Count != mentions[j].Count {
			return mentions[i].Count > mentions[j].Count
		}
		return mentions[i].ToolName < mentions[j].ToolName
	})
	return mentions
}
