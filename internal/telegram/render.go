package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLen stays below Telegram's 4096 character limit.
const maxMessageLen = 4000

const fence = "```"

// sendItinerary delivers a result as one or more Markdown messages. The
// first part replaces messageID when it is set; the action buttons go on
// the last part.
func (b *Bot) sendItinerary(chatID int64, messageID int, tripID int64, res itinerary.Result) {
	planText, tipsText := itinerary.FormatMarkdownParts(res)
	parts := append(splitMessage(planText, maxMessageLen), splitMessage(tipsText, maxMessageLen)...)
	kb := itineraryKeyboard(tripID)

	for i, part := range parts {
		last := i == len(parts)-1
		if i == 0 && messageID != 0 {
			var markup *tgbotapi.InlineKeyboardMarkup
			if last {
				markup = &kb
			}
			b.edit(chatID, messageID, part, markup)
			continue
		}
		msg := markdownMessage(chatID, part)
		if last {
			msg.ReplyMarkup = kb
		}
		b.send(msg)
	}
}

func itineraryKeyboard(tripID int64) tgbotapi.InlineKeyboardMarkup {
	id := strconv.FormatInt(tripID, 10)
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🌦 Adapt", callback(actionAdapt, id)),
		tgbotapi.NewInlineKeyboardButtonData("🔄 Regenerate", callback(actionRegenerate, id)),
	))
}

// splitMessage cuts text on line boundaries into chunks of at most limit
// bytes. A code block that spans a cut is closed and reopened.
func splitMessage(text string, limit int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}

	budget := limit - len(fence) - 2
	var (
		parts   []string
		cur     []string
		size    int
		inFence bool
	)
	flush := func() {
		chunk := strings.Join(cur, "\n")
		if inFence {
			chunk += "\n" + fence
		}
		parts = append(parts, chunk)
		cur, size = nil, 0
		if inFence {
			cur, size = []string{fence}, len(fence)+1
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for _, piece := range hardWrap(line, budget/2) {
			if size+len(piece)+1 > budget && len(cur) > 0 {
				flush()
			}
			cur = append(cur, piece)
			size += len(piece) + 1
			if strings.HasPrefix(strings.TrimSpace(piece), fence) {
				inFence = !inFence
			}
		}
	}
	if len(cur) > 0 {
		parts = append(parts, strings.Join(cur, "\n"))
	}
	return parts
}

func hardWrap(line string, max int) []string {
	var out []string
	for len(line) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		out = append(out, line[:cut])
		line = line[cut:]
	}
	return append(out, line)
}

func formatMetricsReport(daily []metrics.DailyUsage, agents []metrics.AgentUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(daily) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range daily {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	if len(agents) > 0 {
		sb.WriteString("\n🤖 *Agents*\n")
		for _, a := range agents {
			sb.WriteString(fmt.Sprintf("• *%s*: %d runs, %d prompt tokens, %dms avg\n", esc(a.AgentName), a.TotalExecution, a.TotalPrompt, a.AvgLatencyMS))
		}
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Database: %s\n", health.DatabaseSize))
	sb.WriteString(fmt.Sprintf("• Photos: %s\n", health.PhotosSize))

	return sb.String()
}
