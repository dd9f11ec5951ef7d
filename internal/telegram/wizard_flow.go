package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback actions. Callback data is "action|payload" and must stay under 64 bytes.
const (
	actionField      = "field"
	actionOption     = "opt"
	actionForm       = "form"
	actionNext       = "next"
	actionBack       = "back"
	actionGenerate   = "generate"
	actionCancel     = "cancel"
	actionShow       = "show"
	actionRegenerate = "regen"
	actionAdapt      = "adapt"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func esc(s string) string {
	return markdownEscaper.Replace(s)
}

func callback(action, payload string) string {
	return action + "|" + payload
}

func (b *Bot) startWizard(ctx context.Context, sess session.Session, chatID int64) {
	if err := b.sessions.DeleteForUser(ctx, sess.UserID); err != nil {
		b.log.Error().Err(err).Msg("failed to reset session")
	}

	w := wizard.New()
	text, keyboard := renderForm(w)
	msg := markdownMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	sent, err := b.send(msg)
	if err != nil {
		return
	}

	data := SessionContextData{Wizard: w.State(), MessageID: sent.MessageID}
	if _, err := b.sessions.Create(ctx, sess.UserID, SessionWizard, StateEditing, data, b.ttl); err != nil {
		b.log.Error().Err(err).Msg("failed to create wizard session")
	}
}

// handleWizardInput stores a free-text answer for the awaited field and
// shows the form again below the user's message.
func (b *Bot) handleWizardInput(ctx context.Context, active *Session, msg *tgbotapi.Message) {
	data, err := active.GetContextData()
	if err != nil {
		b.log.Error().Err(err).Msg("corrupt session data")
		return
	}
	if data.Awaiting == "" {
		b.reply(msg.Chat.ID, "Use the buttons above to pick what to fill in.")
		return
	}

	w := wizard.Restore(data.Wizard)
	if err := w.Set(data.Awaiting, msg.Text); err != nil {
		b.reply(msg.Chat.ID, "⚠️ "+esc(err.Error()))
		return
	}

	data.Wizard = w.State()
	data.Awaiting = ""
	text, keyboard := renderForm(w)
	reply := markdownMessage(msg.Chat.ID, text)
	reply.ReplyMarkup = keyboard
	sent, err := b.send(reply)
	if err == nil {
		data.MessageID = sent.MessageID
	}

	if err := b.sessions.Update(ctx, active.ID, StateEditing, data, b.ttl); err != nil {
		b.log.Error().Err(err).Msg("failed to save wizard state")
	}
}

func (b *Bot) handleWizardCallback(ctx context.Context, sess session.Session, chatID int64, messageID int, action, payload string) {
	active, err := b.sessions.GetActive(ctx, sess.UserID, time.Now())
	if err != nil {
		b.log.Error().Err(err).Msg("failed to load session")
		return
	}
	if active == nil || active.SessionType != SessionWizard {
		b.edit(chatID, messageID, "⌛ This form has expired. Send /plan to start again.", nil)
		return
	}
	data, err := active.GetContextData()
	if err != nil {
		b.log.Error().Err(err).Msg("corrupt session data")
		return
	}

	w := wizard.Restore(data.Wizard)
	state := StateEditing
	data.Awaiting = ""

	switch action {
	case actionField:
		field := wizard.Field(payload)
		if choices := wizard.Choices(field); choices != nil {
			b.edit(chatID, messageID, choicePrompt(field, w.Value(field)), choiceKeyboard(field, choices))
		} else {
			data.Awaiting = field
			state = StateAwaitingInput
			b.edit(chatID, messageID, inputPrompt(field, w.Value(field)), formBackKeyboard())
		}
		b.saveWizard(ctx, active.ID, state, data, w)
		return

	case actionOption:
		fieldName, idx, _ := strings.Cut(payload, "|")
		field := wizard.Field(fieldName)
		choices := wizard.Choices(field)
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 || i >= len(choices) {
			return
		}
		if err := w.Set(field, choices[i]); err != nil {
			b.log.Warn().Err(err).Str("field", fieldName).Msg("rejected option")
		}

	case actionNext:
		w.Next()

	case actionBack:
		w.Previous()

	case actionCancel:
		if err := b.sessions.Delete(ctx, active.ID); err != nil {
			b.log.Error().Err(err).Msg("failed to delete session")
		}
		b.edit(chatID, messageID, "👍 Trip planning cancelled.", nil)
		return

	case actionGenerate:
		req, ok := w.Submit()
		if !ok {
			return
		}
		t, err := b.trips.Create(ctx, sess, req)
		if err != nil {
			b.showError(chatID, 0, "saving trip", err)
			return
		}
		if err := b.sessions.Delete(ctx, active.ID); err != nil {
			b.log.Error().Err(err).Msg("failed to delete session")
		}
		b.edit(chatID, messageID, fmt.Sprintf("🧭 *Planning %s...*\n(Drafting your %d day itinerary)", esc(t.Destination), t.Days()), nil)
		b.generateAndSend(ctx, sess, chatID, messageID, t.ID)
		return
	}

	text, keyboard := renderForm(w)
	b.edit(chatID, messageID, text, &keyboard)
	b.saveWizard(ctx, active.ID, state, data, w)
}

func (b *Bot) saveWizard(ctx context.Context, id int64, state string, data SessionContextData, w *wizard.Wizard) {
	data.Wizard = w.State()
	if err := b.sessions.Update(ctx, id, state, data, b.ttl); err != nil {
		b.log.Error().Err(err).Msg("failed to save wizard state")
	}
}

// renderForm shows the current step with one button per input and the
// navigation that is currently allowed.
func renderForm(w *wizard.Wizard) (string, tgbotapi.InlineKeyboardMarkup) {
	step := w.Step()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧭 *Plan a trip* · Step %d/%d: *%s*\n\n", step, wizard.TotalSteps, wizard.StepTitle(step)))
	for _, f := range wizard.StepFields(step) {
		v := w.Value(f)
		if v == "" {
			v = "_not set_"
		} else {
			v = esc(v)
		}
		sb.WriteString(fmt.Sprintf("*%s:* %s\n", wizard.FieldLabels[f], v))
	}
	if step == 1 && !w.IsStepValid(1) {
		sb.WriteString("\nDestination, travelers and both dates are required.")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, f := range wizard.StepFields(step) {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✏️ "+wizard.FieldLabels[f], callback(actionField, string(f))))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var nav []tgbotapi.InlineKeyboardButton
	if step > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", callback(actionBack, "")))
	}
	if !w.IsFinalStep() && w.IsStepValid(step) {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", callback(actionNext, "")))
	}
	if w.CanSubmit() {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("✨ Generate", callback(actionGenerate, "")))
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", callback(actionCancel, "")))
	rows = append(rows, nav)

	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func choicePrompt(field wizard.Field, current string) string {
	text := fmt.Sprintf("Choose *%s*", wizard.FieldLabels[field])
	if current != "" {
		text += fmt.Sprintf(" (now: %s)", esc(current))
	}
	return text
}

func inputPrompt(field wizard.Field, current string) string {
	text := fmt.Sprintf("✍️ Send the *%s*", wizard.FieldLabels[field])
	switch field {
	case wizard.FieldStartDate, wizard.FieldEndDate:
		text += " as YYYY-MM-DD"
	}
	if current != "" {
		text += fmt.Sprintf("\nCurrent: %s", esc(current))
	}
	return text
}

func choiceKeyboard(field wizard.Field, choices []string) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, c := range choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c, callback(actionOption, string(field)+"|"+strconv.Itoa(i))),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("↩️ Back to form", callback(actionForm, "")),
	))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func formBackKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("↩️ Back to form", callback(actionForm, "")),
	))
	return &kb
}
