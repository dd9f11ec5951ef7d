package itinerary

import (
	"fmt"
	"sort"
	"strings"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatMarkdownParts renders a result as two Telegram Markdown messages:
// the day-by-day plan and the tips/budget section. The second part is empty
// when there is nothing to add.
func FormatMarkdownParts(res Result) (string, string) {
	switch res.Shape {
	case ShapeRawString:
		return "📝 *Raw Itinerary Content*\n\n```\n" + fenceSafe(res.Content) + "\n```", ""
	case ShapeUnrecognized:
		return "🔍 *Unrecognized Itinerary Structure*\n\n```\n" + fenceSafe(res.Content) + "\n```", ""
	case ShapeEmptyDays:
		return "📭 *No Days Found*\nThe itinerary doesn't contain any daily plans.", ""
	}
	if res.Itinerary == nil {
		return "📭 *No Itinerary to Display*", ""
	}

	it := res.Itinerary
	var pb strings.Builder
	pb.WriteString(fmt.Sprintf("🗺 *%s*\n_%s_\n", esc(it.DisplayTitle()), esc(it.DisplayDescription())))
	pb.WriteString(fmt.Sprintf("📆 %d Day Adventure\n\n", len(it.Days)))

	for i, d := range it.Days {
		pb.WriteString(fmt.Sprintf("*Day %d", i+1))
		if d.Title != "" {
			pb.WriteString(": " + esc(d.Title))
		}
		pb.WriteString("*\n")
		if d.Overview != "" {
			pb.WriteString(fmt.Sprintf("_%s_\n", esc(d.Overview)))
		}
		for _, a := range d.Activities {
			pb.WriteString("• ")
			if a.Time != "" {
				pb.WriteString(esc(a.Time) + " ")
			}
			pb.WriteString(esc(a.Title))
			if a.Duration != "" {
				pb.WriteString(fmt.Sprintf(" (%s)", esc(a.Duration)))
			}
			if a.Location != "" {
				pb.WriteString(" 📍 " + esc(a.Location))
			}
			if a.EstimatedCost != "" {
				pb.WriteString(" 💰 " + esc(a.EstimatedCost))
			}
			pb.WriteString("\n")
		}
		pb.WriteString("\n")
	}

	var sb strings.Builder
	tips := append(append([]string{}, it.EssentialTips...), it.Tips...)
	if len(tips) > 0 {
		sb.WriteString("💡 *Travel Tips*\n\n")
		for _, tip := range tips {
			sb.WriteString(fmt.Sprintf("• %s\n", esc(tip)))
		}
	}
	if len(it.BudgetBreakdown) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("💵 *Budget Breakdown*\n\n")
		for _, k := range sortedKeys(it.BudgetBreakdown) {
			sb.WriteString(fmt.Sprintf("• *%s*: %s\n", esc(k), esc(it.BudgetBreakdown[k])))
		}
	}

	return strings.TrimRight(pb.String(), "\n"), sb.String()
}

func esc(s string) string {
	return markdownEscaper.Replace(s)
}

func fenceSafe(s string) string {
	return strings.ReplaceAll(s, "```", "'''")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
