package journal

import (
	"fmt"
	"html"
	"strings"
)

// RenderHTML formats a journal as the HTML body of a blog post.
func RenderHTML(j Journal) string {
	var sb strings.Builder

	if j.Summary != "" {
		fmt.Fprintf(&sb, "<p><em>%s</em></p>\n", html.EscapeString(j.Summary))
	}

	for _, e := range j.Entries {
		if e.Date != "" {
			fmt.Fprintf(&sb, "<h2>%s</h2>\n", html.EscapeString(e.Date))
		}
		for _, para := range strings.Split(e.Content, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			text := strings.ReplaceAll(html.EscapeString(para), "\n", "<br>")
			fmt.Fprintf(&sb, "<p>%s</p>\n", text)
		}
	}

	return sb.String()
}
