package export

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	h3Pattern     = regexp.MustCompile(`(?m)^### (.+)$`)
	h2Pattern     = regexp.MustCompile(`(?m)^## (.+)$`)
	h1Pattern     = regexp.MustCompile(`(?m)^# (.+)$`)
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.+?)\*`)
	listPattern   = regexp.MustCompile(`(?m)^- (.+)$`)
)

const htmlShell = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>TeachAssist Export</title>
<style>
  body { font-family: Arial, sans-serif; max-width: 800px; margin: 40px auto; padding: 0 20px; line-height: 1.6; }
  h1, h2, h3 { color: #333; }
  table { border-collapse: collapse; width: 100%%; }
  th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
</style>
</head>
<body>%s</body>
</html>`

// markdownToHTML is the lightweight conversion used for the google_doc
// medium: headings, emphasis, and list items, with remaining lines
// wrapped in paragraphs.
func markdownToHTML(markdown string) string {
	html := markdown
	html = h3Pattern.ReplaceAllString(html, "<h3>$1</h3>")
	html = h2Pattern.ReplaceAllString(html, "<h2>$1</h2>")
	html = h1Pattern.ReplaceAllString(html, "<h1>$1</h1>")
	html = boldPattern.ReplaceAllString(html, "<strong>$1</strong>")
	html = italicPattern.ReplaceAllString(html, "<em>$1</em>")
	html = listPattern.ReplaceAllString(html, "<li>$1</li>")

	var lines []string
	for _, line := range strings.Split(html, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "<h") || strings.HasPrefix(trimmed, "<li") {
			lines = append(lines, line)
			continue
		}
		lines = append(lines, "<p>"+line+"</p>")
	}
	return fmt.Sprintf(htmlShell, strings.Join(lines, "\n"))
}
