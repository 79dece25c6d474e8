// Package bottest provides an in-memory Bot API and update builders for
// handler tests.
package bottest

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/teambots/teambots/src/brain"
)

// API records everything a bot sends.
type API struct {
	mu       sync.Mutex
	nextID   int
	Sent     []tgbotapi.Chattable
	Requests []tgbotapi.Chattable
	FileURL  string
	Updates  chan tgbotapi.Update
}

func NewAPI() *API {
	return &API{Updates: make(chan tgbotapi.Update, 16)}
}

func (a *API) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	a.Sent = append(a.Sent, c)
	return tgbotapi.Message{MessageID: a.nextID}, nil
}

func (a *API) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Requests = append(a.Requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (a *API) GetFileDirectURL(fileID string) (string, error) {
	return a.FileURL + "/" + fileID, nil
}

func (a *API) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return a.Updates
}

func (a *API) StopReceivingUpdates() {}

// Texts returns the text of every sent message, in order.
func (a *API) Texts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, c := range a.Sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

// Messages returns the sent text messages.
func (a *API) Messages() []tgbotapi.MessageConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range a.Sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

// Joined is Texts joined with newlines, handy for Contains checks.
func (a *API) Joined() string {
	return strings.Join(a.Texts(), "\n")
}

// Text builds a message update from user in a private chat.
func Text(user int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 100,
			From:      &tgbotapi.User{ID: user, FirstName: "Тест", UserName: "tester"},
			Chat:      &tgbotapi.Chat{ID: user, Type: "private"},
			Text:      text,
		},
	}
}

// Command builds a /command update with entity metadata.
func Command(user int64, text string) tgbotapi.Update {
	upd := Text(user, text)
	cmd, _, _ := strings.Cut(text, " ")
	upd.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len([]rune(cmd))}}
	return upd
}

// Callback builds an inline button press on a message with text.
func Callback(user int64, data, messageText string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			From: &tgbotapi.User{ID: user, FirstName: "Тест"},
			Data: data,
			Message: &tgbotapi.Message{
				MessageID: 200,
				Chat:      &tgbotapi.Chat{ID: user, Type: "private"},
				Text:      messageText,
			},
		},
	}
}

// Document builds a file upload update.
func Document(user int64, fileID, name string) tgbotapi.Update {
	upd := Text(user, "")
	upd.Message.Document = &tgbotapi.Document{FileID: fileID, FileName: name}
	return upd
}

// Voice builds a voice note update.
func Voice(user int64) tgbotapi.Update {
	upd := Text(user, "")
	upd.Message.Voice = &tgbotapi.Voice{FileID: "voice-1", Duration: 3}
	return upd
}

// Call is one recorded Brain Client call.
type Call struct {
	System string
	User   string
	Hint   string
}

// Brain answers from Reply and records calls.
type Brain struct {
	mu    sync.Mutex
	Calls []Call
	Reply func(system, user string) brain.Result
}

func (b *Brain) Complete(_ context.Context, system, user, hint string) brain.Result {
	b.mu.Lock()
	b.Calls = append(b.Calls, Call{System: system, User: user, Hint: hint})
	reply := b.Reply
	b.mu.Unlock()
	if reply == nil {
		return brain.Result{Content: "ответ", Model: "test-model", Source: brain.Gateway}
	}
	return reply(system, user)
}

// Recorded returns a copy of the calls so far.
func (b *Brain) Recorded() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.Calls...)
}

// Handler is the part of a bot module Run drives.
type Handler interface {
	HandleUpdate(upd tgbotapi.Update)
	Wait(ctx context.Context)
}

// Run feeds updates one at a time, waiting for each to finish.
func Run(h Handler, upds ...tgbotapi.Update) {
	for _, u := range upds {
		h.HandleUpdate(u)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		h.Wait(ctx)
		cancel()
	}
}
