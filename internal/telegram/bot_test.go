package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/database"
	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/metrics"
	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/trip"
	"ai-trip-planner/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userID  int64 = 42
	adminID int64 = 99
)

type fakeAPI struct {
	sent   []tgbotapi.Chattable
	nextID int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: 100 + f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastText() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// lastButtons returns the callback data of the most recent keyboard.
func (f *fakeAPI) lastButtons() []string {
	for i := len(f.sent) - 1; i >= 0; i-- {
		var kb *tgbotapi.InlineKeyboardMarkup
		switch m := f.sent[i].(type) {
		case tgbotapi.MessageConfig:
			if k, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
				kb = &k
			}
		case tgbotapi.EditMessageTextConfig:
			kb = m.ReplyMarkup
		}
		if kb == nil {
			continue
		}
		var data []string
		for _, row := range kb.InlineKeyboard {
			for _, btn := range row {
				if btn.CallbackData != nil {
					data = append(data, *btn.CallbackData)
				}
			}
		}
		return data
	}
	return nil
}

func (f *fakeAPI) sentTo(chatID int64) []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeTextGen struct {
	response string
	usage    shared.TokenUsage
	prompts  []string
}

func (f *fakeTextGen) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	f.prompts = append(f.prompts, prompt)
	return llm.ContentResponse{Content: f.response, Usage: f.usage}, nil
}

type fixture struct {
	bot   *Bot
	api   *fakeAPI
	gen   *fakeTextGen
	trips *trip.Service
	repo  *SessionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "trips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	f := &fixture{
		api:  &fakeAPI{},
		gen:  &fakeTextGen{response: `{"title": "Lisbon Loops", "days": [{"day": 1, "title": "Alfama"}]}`},
		repo: NewSessionRepository(db.SQL),
	}
	f.trips = trip.NewService(trip.NewRepository(db.SQL), log)
	store := metrics.NewStore(db.SQL)
	itins := itinerary.NewService(f.trips, itinerary.NewRepository(db.SQL), itinerary.NewGenerator(f.gen), nil, store, log)

	cfg := &config.Config{
		TelegramAllowedUserIDs: []int64{userID, adminID},
		AdminTelegramID:        adminID,
		SessionTTLMinutes:      30,
	}
	f.bot = newBot(f.api, cfg, Services{Trips: f.trips, Itineraries: itins, Sessions: f.repo, Metrics: store}, log)
	return f
}

func textUpdate(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, UserName: "ana"},
		Chat:      &tgbotapi.Chat{ID: from},
		Text:      text,
	}}
}

func (f *fixture) text(from int64, text string) {
	f.bot.handleUpdate(context.Background(), textUpdate(from, text))
}

func (f *fixture) tap(data string) {
	f.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID, UserName: "ana"},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}})
}

func TestWizardConversation(t *testing.T) {
	f := newFixture(t)

	f.text(userID, "/plan")
	assert.Contains(t, f.api.lastText(), "Step 1/3: *Traveler Profile*")
	assert.NotContains(t, f.api.lastButtons(), "next|", "step 1 is not valid yet")
	assert.NotContains(t, f.api.lastButtons(), "generate|")

	f.tap("field|destination")
	assert.Contains(t, f.api.lastText(), "Send the *Destination*")
	f.text(userID, "  Lisbon ")

	f.tap("field|start_date")
	f.text(userID, "tomorrow")
	assert.Contains(t, f.api.lastText(), "dates must look like")
	f.text(userID, "2025-05-01")

	f.tap("field|end_date")
	f.text(userID, "2025-05-03")
	assert.Contains(t, f.api.lastText(), "*Destination:* Lisbon")
	assert.Contains(t, f.api.lastButtons(), "next|")

	f.tap("next|")
	assert.Contains(t, f.api.lastText(), "Step 2/3: *Preferences*")
	assert.Contains(t, f.api.lastButtons(), "back|")

	f.tap("field|budget_tier")
	assert.Contains(t, f.api.lastButtons(), "opt|budget_tier|1")
	f.tap("opt|budget_tier|1")
	assert.Contains(t, f.api.lastText(), "Standard")

	f.tap("back|")
	assert.Contains(t, f.api.lastText(), "Step 1/3")
	f.tap("next|")
	f.tap("next|")
	assert.Contains(t, f.api.lastText(), "Step 3/3: *Culinary Profile*")
	assert.Contains(t, f.api.lastButtons(), "generate|")
	assert.NotContains(t, f.api.lastButtons(), "next|")

	f.tap("generate|")
	require.Len(t, f.gen.prompts, 1)
	assert.Contains(t, f.gen.prompts[0], "Lisbon")
	assert.Contains(t, f.api.lastText(), "Lisbon Loops")

	owner := session.ForTelegram(userID, "ana")
	trips, err := f.trips.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "Lisbon", trips[0].Destination)
	assert.Equal(t, "Standard (₹10k-20k/day)", trips[0].BudgetTier)
	assert.Contains(t, f.api.lastButtons(), fmt.Sprintf("adapt|%d", trips[0].ID))

	active, err := f.repo.GetActive(context.Background(), owner.UserID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, active, "the wizard session ends after generation")
}

func TestExpiredFormAndCancel(t *testing.T) {
	f := newFixture(t)

	f.tap("next|")
	assert.Contains(t, f.api.lastText(), "expired")

	f.text(userID, "/plan")
	f.tap("cancel|")
	assert.Contains(t, f.api.lastText(), "cancelled")

	f.text(userID, "hello")
	assert.Contains(t, f.api.lastText(), "/plan")
}

func TestUnauthorizedUserIgnored(t *testing.T) {
	f := newFixture(t)
	f.text(7, "/plan")
	assert.Empty(t, f.api.sent)
}

func TestTripsAndAdapt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := session.ForTelegram(userID, "ana")

	f.text(userID, "/trips")
	assert.Contains(t, f.api.lastText(), "no trips yet")

	tr, err := f.trips.Create(ctx, owner, tripRequest())
	require.NoError(t, err)
	id := fmt.Sprintf("%d", tr.ID)

	f.text(userID, "/trips")
	assert.Contains(t, f.api.lastText(), "*Porto*")
	assert.Equal(t, []string{"show|" + id}, f.api.lastButtons())

	f.tap("show|" + id)
	assert.Equal(t, []string{"regen|" + id}, f.api.lastButtons())

	f.tap("regen|" + id)
	assert.Contains(t, f.api.lastText(), "Lisbon Loops")

	f.tap("adapt|" + id)
	assert.Contains(t, f.api.lastText(), "What changed?")

	f.gen.response = `{"title": "Rainy Porto", "days": [{"day": 1, "title": "Museums"}]}`
	f.text(userID, "it is pouring")
	require.Len(t, f.gen.prompts, 2)
	assert.Contains(t, f.gen.prompts[1], "it is pouring")
	assert.Contains(t, f.api.lastText(), "Rainy Porto")
}

func TestContextBloatAlert(t *testing.T) {
	f := newFixture(t)
	f.gen.usage = shared.TokenUsage{PromptTokens: 5000, CompletionTokens: 10, Model: "big"}

	tr, err := f.trips.Create(context.Background(), session.ForTelegram(userID, "ana"), tripRequest())
	require.NoError(t, err)

	f.tap(fmt.Sprintf("regen|%d", tr.ID))
	alerts := f.api.sentTo(adminID)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "Context Bloat Alert")
	assert.Contains(t, alerts[0], "5000")
}

func TestMetricsCommand(t *testing.T) {
	f := newFixture(t)

	f.text(userID, "/metrics")
	assert.Contains(t, f.api.lastText(), "Access Denied")

	f.text(adminID, "/metrics")
	assert.Contains(t, f.api.lastText(), "Usage & Health Report")
	assert.Contains(t, f.api.lastText(), "_No data yet_")
}

func TestCommand(t *testing.T) {
	assert.Equal(t, "plan", command("/plan"))
	assert.Equal(t, "plan", command("/Plan@TripBot now"))
	assert.Equal(t, "", command("plan"))
	assert.Equal(t, "", command(""))
}

func TestSplitMessage(t *testing.T) {
	assert.Nil(t, splitMessage("  ", 100))
	assert.Equal(t, []string{"short"}, splitMessage("short", 100))

	var sb strings.Builder
	sb.WriteString("header\n```\n")
	for i := 0; i < 60; i++ {
		sb.WriteString(fmt.Sprintf("line %02d of raw content\n", i))
	}
	sb.WriteString("```")

	parts := splitMessage(sb.String(), 200)
	require.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 200)
		assert.Equal(t, 0, strings.Count(p, fence)%2, "unbalanced fence in %q", p)
	}
}

func TestHardWrap(t *testing.T) {
	assert.Equal(t, []string{"abc"}, hardWrap("abc", 5))
	assert.Equal(t, []string{"ab", "cd", "e"}, hardWrap("abcde", 2))
	assert.Equal(t, []string{"a", "é"}, hardWrap("aé", 2))
}

func tripRequest() wizard.Request {
	return wizard.Request{
		Destination:       "Porto",
		NumberOfTravelers: 2,
		StartDate:         "2025-06-10",
		EndDate:           "2025-06-12",
	}
}
