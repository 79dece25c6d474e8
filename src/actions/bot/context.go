package bot

import (
	"context"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/teambots/teambots/src/fsm"
	"github.com/teambots/teambots/src/telegram"
)

// Context is everything a handler needs for one update.
type Context struct {
	Ctx       context.Context
	RequestID string
	Bot       string

	API    API
	HTTP   *http.Client
	States fsm.Store

	Update   tgbotapi.Update
	Message  *tgbotapi.Message
	Callback *tgbotapi.CallbackQuery
	From     *tgbotapi.User
	ChatID   int64
	UserID   int64
	Text     string
	State    fsm.State

	answered bool
}

func newContext(ctx context.Context, m *Module, reqID string, upd tgbotapi.Update) *Context {
	c := &Context{
		Ctx:       ctx,
		RequestID: reqID,
		Bot:       m.name,
		API:       m.api,
		HTTP:      m.http,
		States:    m.states,
		Update:    upd,
	}
	switch {
	case upd.CallbackQuery != nil:
		c.Callback = upd.CallbackQuery
		c.Message = upd.CallbackQuery.Message
		c.From = upd.CallbackQuery.From
	case upd.Message != nil:
		c.Message = upd.Message
		c.From = upd.Message.From
		c.Text = upd.Message.Text
		if c.Text == "" {
			c.Text = upd.Message.Caption
		}
	}
	if c.Message != nil && c.Message.Chat != nil {
		c.ChatID = c.Message.Chat.ID
	}
	if c.From != nil {
		c.UserID = c.From.ID
	}
	return c
}

// Args returns the text after a command.
func (c *Context) Args() string {
	if c.Message == nil {
		return ""
	}
	_, args := splitCommand(c.Message.Text)
	return args
}

// Reply sends plain service text, with an optional keyboard.
func (c *Context) Reply(text string, keyboard any) telegram.Report {
	return telegram.SendText(c.API, c.ChatID, text, keyboard)
}

// Send delivers a formatted answer.
func (c *Context) Send(header, body, footer string, keyboard any) telegram.Report {
	return telegram.Send(c.API, telegram.Reply{ChatID: c.ChatID, Header: header, Body: body, Footer: footer, Keyboard: keyboard})
}

// Status posts a progress line; a nil result is safe to use.
func (c *Context) Status(text string) *telegram.Status {
	st, err := telegram.NewStatus(c.API, c.ChatID, text)
	if err != nil {
		c.Logf("status message failed: %v", err)
	}
	return st
}

// StateKey addresses this user's dialog in this chat.
func (c *Context) StateKey() fsm.Key {
	return fsm.Key{Bot: c.Bot, Chat: c.ChatID, User: c.UserID}
}

// SetState moves the user's dialog forward.
func (c *Context) SetState(st fsm.State) error {
	c.State = st
	return c.States.Set(c.Ctx, c.StateKey(), st)
}

// ClearState ends the user's dialog.
func (c *Context) ClearState() error {
	c.State = fsm.State{}
	return c.States.Clear(c.Ctx, c.StateKey())
}

// AnswerCallback acknowledges the pressed button with an optional toast.
func (c *Context) AnswerCallback(text string) {
	if c.Callback == nil || c.answered {
		return
	}
	c.answered = true
	telegram.AnswerCallback(c.API, c.Callback.ID, text)
}

// Logf prefixes the bot name and request id.
func (c *Context) Logf(format string, args ...any) {
	log.Printf("%s[%s]: "+format, append([]any{c.Bot, c.RequestID}, args...)...)
}
