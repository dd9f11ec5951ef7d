package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/metrics"
	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/trip"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const updateTimeout = 3 * time.Minute

// sender is the part of *tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services are the domain services the bot talks to.
type Services struct {
	Trips       *trip.Service
	Itineraries *itinerary.Service
	Sessions    *SessionRepository
	Metrics     *metrics.Store
}

// Bot runs the trip wizard conversation over Telegram.
type Bot struct {
	api         sender
	cfg         *config.Config
	trips       *trip.Service
	itineraries *itinerary.Service
	sessions    *SessionRepository
	metrics     *metrics.Store
	ttl         time.Duration
	log         zerolog.Logger
	wg          sync.WaitGroup
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, svc Services, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info().Str("account", api.Self.UserName).Msg("telegram authorized")

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		log.Info().Str("description", resp.Description).Msg("webhook set")
	}

	return newBot(api, cfg, svc, log), nil
}

func newBot(api sender, cfg *config.Config, svc Services, log zerolog.Logger) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		trips:       svc.Trips,
		itineraries: svc.Itineraries,
		sessions:    svc.Sessions,
		metrics:     svc.Metrics,
		ttl:         time.Duration(cfg.SessionTTLMinutes) * time.Minute,
		log:         log.With().Str("component", "telegram").Logger(),
	}
}

// HandleWebhook accepts an update and processes it in the background.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.log.Warn().Err(err).Msg("error parsing update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		b.handleUpdate(ctx, update)
	}()
}

// Wait blocks until in-flight updates are done.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From == nil || q.Message == nil || !b.allowed(q.From.ID) {
			return
		}
		b.handleCallbackQuery(ctx, q)
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil {
			return
		}
		if !b.allowed(msg.From.ID) {
			b.log.Warn().Int64("user_id", msg.From.ID).Str("username", msg.From.UserName).Msg("unauthorized access attempt")
			return
		}
		b.processMessage(ctx, msg)
	}
}

func (b *Bot) allowed(id int64) bool {
	for _, allowed := range b.cfg.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

func sessionFor(u *tgbotapi.User) session.Session {
	return session.ForTelegram(u.ID, u.UserName)
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	sess := sessionFor(msg.From)

	switch command(msg.Text) {
	case "start", "help":
		b.reply(msg.Chat.ID, helpText)
		return
	case "plan":
		b.startWizard(ctx, sess, msg.Chat.ID)
		return
	case "trips":
		b.listTrips(ctx, sess, msg.Chat.ID)
		return
	case "cancel":
		if err := b.sessions.DeleteForUser(ctx, sess.UserID); err != nil {
			b.log.Error().Err(err).Msg("failed to cancel session")
		}
		b.reply(msg.Chat.ID, "👍 Cancelled.")
		return
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
		return
	}

	active, err := b.sessions.GetActive(ctx, sess.UserID, time.Now())
	if err != nil {
		b.log.Error().Err(err).Msg("failed to load session")
		return
	}
	if active == nil {
		b.reply(msg.Chat.ID, "Send /plan to plan a new trip or /trips to see your trips.")
		return
	}

	switch active.SessionType {
	case SessionWizard:
		b.handleWizardInput(ctx, active, msg)
	case SessionAdapt:
		b.handleAdaptInput(ctx, sess, active, msg)
	}
}

const helpText = `🧳 *AI Trip Planner*

/plan - plan a new trip step by step
/trips - list your trips
/cancel - abandon the current form`

// command returns the bot command of text without the slash and bot name, or "".
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name := strings.Fields(text)[0][1:]
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	b.request(tgbotapi.NewCallback(q.ID, ""))

	action, payload, _ := strings.Cut(q.Data, "|")
	sess := sessionFor(q.From)
	chatID, messageID := q.Message.Chat.ID, q.Message.MessageID

	switch action {
	case actionField, actionOption, actionForm, actionNext, actionBack, actionGenerate, actionCancel:
		b.handleWizardCallback(ctx, sess, chatID, messageID, action, payload)
	case actionShow, actionRegenerate, actionAdapt:
		tripID, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return
		}
		switch action {
		case actionShow:
			b.showItinerary(ctx, sess, chatID, tripID)
		case actionRegenerate:
			b.edit(chatID, messageID, "🧭 *Thinking...*\n(Drafting your itinerary)", nil)
			b.generateAndSend(ctx, sess, chatID, messageID, tripID)
		case actionAdapt:
			b.startAdapt(ctx, sess, chatID, tripID)
		}
	}
}

func (b *Bot) listTrips(ctx context.Context, sess session.Session, chatID int64) {
	trips, err := b.trips.List(ctx, sess)
	if err != nil {
		b.log.Error().Err(err).Msg("failed to list trips")
		b.reply(chatID, "❌ Error fetching your trips.")
		return
	}
	if len(trips) == 0 {
		b.reply(chatID, "You have no trips yet. Send /plan to start one.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🧳 *Your Trips*\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range trips {
		sb.WriteString(fmt.Sprintf("• *%s* (%s → %s)\n", esc(t.Destination), t.StartDate.Format("Jan 2"), t.EndDate.Format("Jan 2, 2006")))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 "+t.Destination, callback(actionShow, strconv.FormatInt(t.ID, 10))),
		))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(msg)
}

func (b *Bot) startAdapt(ctx context.Context, sess session.Session, chatID int64, tripID int64) {
	if _, err := b.trips.Get(ctx, sess, tripID); err != nil {
		b.reply(chatID, "❌ Trip not found.")
		return
	}
	if err := b.sessions.DeleteForUser(ctx, sess.UserID); err != nil {
		b.log.Error().Err(err).Msg("failed to reset session")
	}
	if _, err := b.sessions.Create(ctx, sess.UserID, SessionAdapt, StateAwaitingInput, SessionContextData{TripID: tripID}, b.ttl); err != nil {
		b.log.Error().Err(err).Msg("failed to create adapt session")
		return
	}
	b.reply(chatID, "🌦 *What changed?*\nTell me, e.g. _it's raining all day tomorrow_ or _we are too tired for hiking_.")
}

func (b *Bot) handleAdaptInput(ctx context.Context, sess session.Session, active *Session, msg *tgbotapi.Message) {
	data, err := active.GetContextData()
	if err != nil {
		b.log.Error().Err(err).Msg("corrupt session data")
		return
	}
	if err := b.sessions.Delete(ctx, active.ID); err != nil {
		b.log.Error().Err(err).Msg("failed to close adapt session")
	}

	sent, err := b.send(markdownMessage(msg.Chat.ID, "🔄 *Adapting your itinerary...*"))
	if err != nil {
		return
	}

	view, err := b.itineraries.Adapt(ctx, sess, data.TripID, msg.Text)
	if err != nil {
		b.showError(msg.Chat.ID, sent.MessageID, "adapting itinerary", err)
		return
	}
	b.alertOnBloat(view)
	b.sendItinerary(msg.Chat.ID, sent.MessageID, data.TripID, view.Result)
}

func (b *Bot) showItinerary(ctx context.Context, sess session.Session, chatID int64, tripID int64) {
	view, err := b.itineraries.Get(ctx, sess, tripID)
	if errors.Is(err, itinerary.ErrNotGenerated) {
		msg := tgbotapi.NewMessage(chatID, "No itinerary yet for this trip.")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✨ Generate", callback(actionRegenerate, strconv.FormatInt(tripID, 10))),
		))
		b.send(msg)
		return
	}
	if err != nil {
		b.showError(chatID, 0, "loading itinerary", err)
		return
	}
	b.sendItinerary(chatID, 0, tripID, view.Result)
}

func (b *Bot) generateAndSend(ctx context.Context, sess session.Session, chatID int64, messageID int, tripID int64) {
	view, err := b.itineraries.Generate(ctx, sess, tripID)
	if err != nil {
		b.log.Error().Err(err).Int64("trip_id", tripID).Msg("error generating itinerary")
		b.showError(chatID, messageID, "generating itinerary", err)
		return
	}
	b.alertOnBloat(view)
	b.sendItinerary(chatID, messageID, tripID, view.Result)
}

// alertOnBloat warns the admin about oversized prompts.
func (b *Bot) alertOnBloat(view *itinerary.View) {
	if view.Meta == nil || !view.Meta.Bloated() {
		return
	}
	b.sendAdminAlert(fmt.Sprintf("⚠️ *Context Bloat Alert*\nAgent: %s\nModel: %s\nPrompt Tokens: %d",
		view.Meta.AgentName, esc(view.Meta.Usage.Model), view.Meta.Usage.PromptTokens))
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	daily, err := b.metrics.GetDailyUsage(ctx, 7)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	agents, err := b.metrics.GetAgentUsage(ctx, 7)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	b.reply(msg.Chat.ID, formatMetricsReport(daily, agents, metrics.GetSysHealth(b.cfg.DatabasePath, b.cfg.PhotoDir)))
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.send(markdownMessage(b.cfg.AdminTelegramID, text))
}

func (b *Bot) showError(chatID int64, messageID int, doing string, err error) {
	msg := "something went wrong, please try again"
	if errors.Is(err, trip.ErrNotFound) || errors.Is(err, trip.ErrInvalid) ||
		errors.Is(err, itinerary.ErrEmptyFeedback) || errors.Is(err, itinerary.ErrNotGenerated) {
		msg = err.Error()
	}
	safeErr := strings.ReplaceAll(msg, "`", "'")
	text := fmt.Sprintf("❌ *Error %s:*\n```\n%s\n```", doing, safeErr)
	if messageID == 0 {
		b.send(markdownMessage(chatID, text))
		return
	}
	b.edit(chatID, messageID, text, nil)
}

func markdownMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(markdownMessage(chatID, text))
}

func (b *Bot) edit(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = keyboard
	b.send(edit)
}

func (b *Bot) send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	sent, err := b.api.Send(c)
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to send telegram message")
	}
	return sent, err
}

func (b *Bot) request(c tgbotapi.Chattable) {
	if _, err := b.api.Request(c); err != nil {
		b.log.Debug().Err(err).Msg("telegram request failed")
	}
}
