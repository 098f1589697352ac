package ranking

import (
	"fmt"
	"strings"

	"github.com/tb0hdan/kmu-curator/pkg/types"
)

// Render formats ranked tools as the markdown answer shown to end users.
func Render(department types.Department, ranked []RankedTool, total int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## 🎯 Empfohlene KI-Tools für %s\n\n", department)
	b.WriteString("Basierend auf Ihrer Anfrage, hier die relevantesten Tools:\n\n")

	for _, tool := range ranked {
		name := tool.ToolName
		if name == "" {
			name = "Unbekannt"
		}
		fmt.Fprintf(&b, "### %d. %s%s\n", tool.Rank, name, Badge(tool.Rank, tool.Score))
		if tool.SourceURL != "" {
			fmt.Fprintf(&b, "🔗 **Website:** [%s](%s)\n", tool.SourceURL, tool.SourceURL)
		}
		if desc := types.Truncate(tool.Description, types.DescriptionPreviewLength); desc != "" {
			fmt.Fprintf(&b, "📝 %s\n", desc)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "*%d Tool(s) von unserem Team geprüft und empfohlen.*", total)

	return b.String()
}
